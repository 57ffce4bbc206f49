package value

// Object is an insertion-order-preserving mapping from string keys to
// Values. It backs both the Map runtime value kind and the
// "public projection" of an Environment frame.
type Object struct {
	keys   []string
	values map[string]*Value
}

// NewObject creates an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]*Value)}
}

// Get returns the value bound to key, if any.
func (o *Object) Get(key string) (*Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set inserts or updates key, preserving the original insertion position on
// update.
func (o *Object) Set(key string, v *Value) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Delete removes key, if present, and returns whether it existed.
func (o *Object) Delete(key string) bool {
	if _, ok := o.values[key]; !ok {
		return false
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string { return o.keys }

// Len returns the number of entries.
func (o *Object) Len() int { return len(o.keys) }

// Clone makes a shallow copy (new key/value storage, same Value pointers).
func (o *Object) Clone() *Object {
	n := NewObject()
	for _, k := range o.keys {
		n.Set(k, o.values[k])
	}
	return n
}

// Merge returns a new Object with b's entries written over a's: the `+`
// operator on two maps, where the right operand wins.
func Merge(a, b *Object) *Object {
	n := a.Clone()
	for _, k := range b.Keys() {
		v, _ := b.Get(k)
		n.Set(k, v)
	}
	return n
}

// Equal implements structural equality for two Objects: same key set, same
// values under DeepEqual, order does not matter.
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}
	if o.Len() != other.Len() {
		return false
	}
	for _, k := range o.keys {
		av, _ := o.Get(k)
		bv, ok := other.Get(k)
		if !ok || !DeepEqual(av, bv) {
			return false
		}
	}
	return true
}
