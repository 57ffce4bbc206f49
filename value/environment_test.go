package value

import "testing"

func TestLookupWalksChain(t *testing.T) {
	root := New()
	root.Define("x", NewInt(1))
	child := NewChild(root)
	grandchild := NewChild(child)

	if v, ok := grandchild.Get("x"); !ok || v.I != 1 {
		t.Fatal("lookup must walk the chain root-ward")
	}
	child.Define("x", NewInt(2))
	if v, _ := grandchild.Get("x"); v.I != 2 {
		t.Error("first hit must win")
	}
}

func TestAssignModifiesExistingBinding(t *testing.T) {
	root := New()
	root.Define("x", NewInt(1))
	child := NewChild(root)

	child.Assign("x", NewInt(5))
	if v, _ := root.Get("x"); v.I != 5 {
		t.Error("assign must modify the existing binding in the ancestor frame")
	}
	if child.Has("x") {
		t.Error("assign must not shadow in the child frame")
	}

	child.Assign("y", NewInt(7))
	if !child.Has("y") {
		t.Error("assign to an unbound name must create it in the current frame")
	}
	if root.Has("y") {
		t.Error("assign to an unbound name must not touch the root frame")
	}
}

func TestDefineIsLocalOnly(t *testing.T) {
	root := New()
	root.Define("x", NewInt(1))
	child := NewChild(root)

	child.Define("x", NewInt(2))
	if v, _ := root.Get("x"); v.I != 1 {
		t.Error("define must never modify an ancestor binding")
	}
	if v, _ := child.Get("x"); v.I != 2 {
		t.Error("define must shadow in the current frame")
	}
}

func TestDeleteWalksChain(t *testing.T) {
	root := New()
	root.Define("x", NewInt(1))
	child := NewChild(root)

	if !child.Delete("x") {
		t.Fatal("delete must find the binding in an ancestor frame")
	}
	if _, ok := root.Get("x"); ok {
		t.Error("binding not removed")
	}
	if child.Delete("x") {
		t.Error("second delete must report no binding")
	}
}

func TestPublicProjection(t *testing.T) {
	env := New()
	env.Define("a", NewInt(1))
	env.Define("_hidden", NewInt(2))
	env.Define("fn", NewCallable(&Func{IsReference: false}))
	env.Define("ref", NewCallable(&Func{IsReference: true}))
	env.Define(BreakName, TrueValue)

	pub := env.Public()
	if pub.Kind != Map {
		t.Fatalf("expected a map projection, got %v", pub.Kind)
	}
	if _, ok := pub.M.Get("a"); !ok {
		t.Error("plain binding missing from projection")
	}
	if _, ok := pub.M.Get("_hidden"); ok {
		t.Error("underscore-prefixed binding must be excluded")
	}
	if _, ok := pub.M.Get("fn"); ok {
		t.Error("non-reference callable must be excluded")
	}
	if _, ok := pub.M.Get("ref"); !ok {
		t.Error("reference callable must be included")
	}
	if _, ok := pub.M.Get(BreakName); ok {
		t.Error("reserved sentinel must be excluded")
	}
}

func TestResultValueReplacesProjection(t *testing.T) {
	env := New()
	env.Define("a", NewInt(1))
	env.Define(ResultName, NewInt(42))

	pub := env.Public()
	if pub.Kind != Int || pub.I != 42 {
		t.Fatalf("result slot must be returned instead of the projection, got %v", pub)
	}
}
