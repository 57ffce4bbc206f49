package value

import "strings"

// Reserved names are never visible to user iteration.
const (
	ResultName   = "___#RESULT#___"
	ReturnName   = "___#RETURN#___"
	BreakName    = "___#BREAK#___"
	ContinueName = "___#CONTINUE#___"
)

// Environment is one scope frame: a name→value mapping with an optional
// enclosing frame. Frames form a tree rooted at the interpreter's global
// frame; a closure retains a reference to its defining frame, keeping it
// alive for as long as any callable that captured it is reachable.
type Environment struct {
	vars   map[string]*Value
	order  []string // insertion order, for a deterministic public projection
	parent *Environment
}

// New creates a root frame with no parent.
func New() *Environment { return &Environment{vars: make(map[string]*Value)} }

// NewChild creates a frame enclosed by parent.
func NewChild(parent *Environment) *Environment {
	return &Environment{vars: make(map[string]*Value), parent: parent}
}

// Parent returns the enclosing frame, or nil at the root.
func (e *Environment) Parent() *Environment { return e.parent }

// Get walks the chain root-ward; the first hit wins.
func (e *Environment) Get(name string) (*Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Assign tries to modify an existing binding, walking root-ward from the
// current frame; if no binding is found anywhere in the chain, a new one is
// created in the current frame.
func (e *Environment) Assign(name string, v *Value) {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = v
			return
		}
	}
	e.Define(name, v)
}

// Define creates or updates a binding in the current frame only, never
// walking the chain. Used for parameters, `for` loop variables, and the
// reserved control-flow sentinels.
func (e *Environment) Define(name string, v *Value) {
	if _, exists := e.vars[name]; !exists {
		e.order = append(e.order, name)
	}
	e.vars[name] = v
}

// Has reports whether name is bound in the current frame only.
func (e *Environment) Has(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Delete removes name from the nearest frame in the chain that binds it,
// walking root-ward. Reports whether a binding was found and removed.
func (e *Environment) Delete(name string) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			delete(env.vars, name)
			for i, n := range env.order {
				if n == name {
					env.order = append(env.order[:i], env.order[i+1:]...)
					break
				}
			}
			return true
		}
	}
	return false
}

// Public computes the "public projection" of this frame: the
// subset of bindings visible to an outside reader, excluding underscore-
// prefixed names and non-reference callables. If the reserved result
// binding is present, it is returned instead of the projection.
func (e *Environment) Public() *Value {
	if result, ok := e.vars[ResultName]; ok {
		return result
	}
	obj := NewObject()
	for _, name := range e.order {
		if strings.HasPrefix(name, "_") {
			continue
		}
		v := e.vars[name]
		if v.Kind == Callable && !v.C.IsReference {
			continue
		}
		obj.Set(name, v)
	}
	return NewMap(obj)
}
