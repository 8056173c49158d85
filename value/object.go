package value

import "github.com/reoring/deepwatch/keypath"

// Object is a plain object: an ordered bag of own properties.
type Object struct {
	Props
}

// NewObject returns an empty object.
func NewObject() *Object { return &Object{} }

// ObjectOf builds an object from alternating name/value pairs.
//
//	value.ObjectOf("a", 1, "b", value.ObjectOf("c", true))
func ObjectOf(kv ...any) *Object {
	o := NewObject()
	for i := 0; i+1 < len(kv); i += 2 {
		o.SetOwn(keypath.KeyOf(kv[i]), kv[i+1])
	}
	return o
}

func (o *Object) Kind() Kind { return KindObject }

// Get returns the value of the named property, or nil.
func (o *Object) Get(name string) any {
	v, _ := o.GetOwn(keypath.K(name))
	return v
}

// Set writes the named property.
func (o *Object) Set(name string, v any) bool { return o.SetOwn(keypath.K(name), v) }

// Len returns the number of own properties.
func (o *Object) Len() int { return len(o.keys) }

// EnumerableKeys lists own enumerable keys.
func EnumerableKeys(c Container) []keypath.Key {
	var out []keypath.Key
	for _, k := range c.OwnKeys() {
		if d, ok := c.OwnDescriptor(k); ok && d.Enumerable {
			out = append(out, k)
		}
	}
	return out
}
