package value

import (
	"reflect"

	"github.com/reoring/deepwatch/keypath"
)

// Descriptor describes an own property. A descriptor with Get or Set is an
// accessor property; otherwise it is a data property holding Value.
type Descriptor struct {
	Value        any
	Get          func() any
	Set          func(v any)
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// Data returns a writable, enumerable, configurable data descriptor.
func Data(v any) Descriptor {
	return Descriptor{Value: v, Writable: true, Enumerable: true, Configurable: true}
}

// IsAccessor reports whether d describes an accessor property.
func (d Descriptor) IsAccessor() bool { return d.Get != nil || d.Set != nil }

// SameDescriptor compares two descriptors by value identity, flags and
// accessor identity.
func SameDescriptor(a, b Descriptor) bool {
	return SameValue(a.Value, b.Value) &&
		a.Writable == b.Writable &&
		a.Enumerable == b.Enumerable &&
		a.Configurable == b.Configurable &&
		sameFunc(a.Get, b.Get) &&
		sameFunc(a.Set, b.Set)
}

func sameFunc(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.IsNil() || vb.IsNil() {
		return va.IsNil() && vb.IsNil()
	}
	return va.Pointer() == vb.Pointer()
}

// props is the ordered property bag shared by every kind. Symbol keys are
// listed after string keys.
type props struct {
	keys   []keypath.Key
	descs  map[keypath.Key]*Descriptor
	sealed bool
}

func (p *props) lookup(k keypath.Key) (*Descriptor, bool) {
	if p.descs == nil {
		return nil, false
	}
	d, ok := p.descs[k]
	return d, ok
}

func (p *props) get(k keypath.Key) (any, bool) {
	d, ok := p.lookup(k)
	if !ok {
		return nil, false
	}
	if d.IsAccessor() {
		if d.Get == nil {
			return nil, true
		}
		return d.Get(), true
	}
	return d.Value, true
}

func (p *props) has(k keypath.Key) bool {
	_, ok := p.lookup(k)
	return ok
}

func (p *props) set(k keypath.Key, v any) bool {
	if d, ok := p.lookup(k); ok {
		if d.IsAccessor() {
			if d.Set == nil {
				return false
			}
			d.Set(v)
			return true
		}
		if !d.Writable {
			return false
		}
		d.Value = v
		return true
	}
	if p.sealed {
		return false
	}
	d := Data(v)
	p.insert(k, &d)
	return true
}

func (p *props) insert(k keypath.Key, d *Descriptor) {
	if p.descs == nil {
		p.descs = make(map[keypath.Key]*Descriptor)
	}
	p.descs[k] = d
	p.keys = append(p.keys, k)
}

func (p *props) remove(k keypath.Key) bool {
	d, ok := p.lookup(k)
	if !ok {
		return true
	}
	if !d.Configurable {
		return false
	}
	delete(p.descs, k)
	for i, key := range p.keys {
		if key == k {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
	return true
}

func (p *props) descriptor(k keypath.Key) (Descriptor, bool) {
	d, ok := p.lookup(k)
	if !ok {
		return Descriptor{}, false
	}
	return *d, true
}

func (p *props) define(k keypath.Key, nd Descriptor) bool {
	d, ok := p.lookup(k)
	if !ok {
		if p.sealed {
			return false
		}
		p.insert(k, &nd)
		return true
	}
	if !d.Configurable {
		if nd.Configurable || nd.Enumerable != d.Enumerable || nd.IsAccessor() != d.IsAccessor() {
			return false
		}
		if d.IsAccessor() {
			if !sameFunc(nd.Get, d.Get) || !sameFunc(nd.Set, d.Set) {
				return false
			}
		} else if !d.Writable && (nd.Writable || !SameValue(nd.Value, d.Value)) {
			return false
		}
	}
	*d = nd
	return true
}

func (p *props) ownKeys() []keypath.Key {
	out := make([]keypath.Key, 0, len(p.keys))
	for _, k := range p.keys {
		if !k.IsSymbol() {
			out = append(out, k)
		}
	}
	for _, k := range p.keys {
		if k.IsSymbol() {
			out = append(out, k)
		}
	}
	return out
}

// freeze makes every property non-configurable and every data property
// read-only, and forbids new properties.
func (p *props) freeze() {
	p.sealed = true
	for _, d := range p.descs {
		d.Configurable = false
		if !d.IsAccessor() {
			d.Writable = false
		}
	}
}

// Props exposes the non-indexed property bag shared by the collection kinds.
type Props struct{ props }

func (p *Props) GetOwn(k keypath.Key) (any, bool)               { return p.get(k) }
func (p *Props) HasOwn(k keypath.Key) bool                      { return p.has(k) }
func (p *Props) SetOwn(k keypath.Key, v any) bool               { return p.set(k, v) }
func (p *Props) DeleteOwn(k keypath.Key) bool                   { return p.remove(k) }
func (p *Props) OwnDescriptor(k keypath.Key) (Descriptor, bool) { return p.descriptor(k) }
func (p *Props) DefineOwn(k keypath.Key, d Descriptor) bool     { return p.define(k, d) }
func (p *Props) OwnKeys() []keypath.Key                         { return p.ownKeys() }
func (p *Props) Child(k keypath.Key) (any, bool)                { return p.get(k) }

// Freeze makes all own properties read-only and non-configurable.
func (p *Props) Freeze() { p.freeze() }
