package deepwatch

import (
	"iter"

	"github.com/reoring/deepwatch/internal/cache"
	"github.com/reoring/deepwatch/keypath"
	"github.com/reoring/deepwatch/value"
)

// Proxy stands in for one observed container. Reads return nested
// containers as their own Proxy; writes, definitions, deletions and method
// calls are reported to the observer's ChangeFunc.
//
// Proxy implements value.Container, so it can be passed wherever a
// container is read, for example as the receiver of array callbacks.
type Proxy struct {
	obs    *observer
	handle cache.Handle
	target value.Container
}

var _ value.Container = (*Proxy)(nil)

// Unwrap returns the raw container.
func (p *Proxy) Unwrap() value.Container { return p.target }

// Kind returns the kind of the raw container.
func (p *Proxy) Kind() value.Kind { return p.target.Kind() }

// Path returns the path the container was last read at.
func (p *Proxy) Path() keypath.Path { return p.obs.pathOf(p.target) }

func own(c value.Container, k keypath.Key) any {
	if v, ok := c.GetOwn(k); ok {
		return v
	}
	return value.Undefined
}

// Get reads a property. Missing properties read as value.Undefined.
func (p *Proxy) Get(key any) any {
	k := keyFor(key)
	switch k.Symbol() {
	case TargetToken:
		return p.target
	case UnsubscribeToken:
		if p.target == p.obs.root {
			p.obs.unsubscribe()
			return p.target
		}
	}
	v, ok := p.GetOwn(k)
	if !ok {
		return value.Undefined
	}
	return v
}

// Index reads element i of an array or byte view.
func (p *Proxy) Index(i int) any { return p.Get(keypath.Idx(i)) }

// Set writes a property and reports false when the write was rejected by
// validation or not permitted by the container.
func (p *Proxy) Set(key any, v any) bool {
	o, t, k := p.obs, p.target, keyFor(key)
	v = value.Raw(v)
	previous := own(t, k)
	if o.opts.Equals(previous, v) && t.HasOwn(k) {
		return true
	}
	if o.suppressed(t, k) {
		return o.cache.SetProperty(t, k, v, previous)
	}
	base := o.pathOf(t)
	if !o.validate(OpSet, base, k, v, previous, nil) {
		return false
	}
	if !o.cache.SetProperty(t, k, v, previous) {
		return false
	}
	o.route(OpSet, base, k, own(t, k), previous, nil)
	return true
}

// Define defines a property from a descriptor. Redefining a property with
// an identical descriptor is silent.
func (p *Proxy) Define(key any, d value.Descriptor) bool {
	o, t, k := p.obs, p.target, keyFor(key)
	d.Value = value.Raw(d.Value)
	if o.cache.IsSameDescriptor(t, k, d) {
		return true
	}
	previous := own(t, k)
	if o.suppressed(t, k) {
		return o.cache.DefineProperty(t, k, d)
	}
	base := o.pathOf(t)
	if !o.validate(OpDefine, base, k, d.Value, previous, nil) {
		return false
	}
	if !o.cache.DefineProperty(t, k, d) {
		return false
	}
	o.route(OpDefine, base, k, d.Value, previous, nil)
	return true
}

// Delete removes a property. Deleting a missing property succeeds
// silently.
func (p *Proxy) Delete(key any) bool {
	o, t, k := p.obs, p.target, keyFor(key)
	if !t.HasOwn(k) {
		return true
	}
	previous := own(t, k)
	if o.suppressed(t, k) {
		return o.cache.DeleteProperty(t, k, previous)
	}
	base := o.pathOf(t)
	if !o.validate(OpDelete, base, k, value.Undefined, previous, nil) {
		return false
	}
	if !o.cache.DeleteProperty(t, k, previous) {
		return false
	}
	o.route(OpDelete, base, k, value.Undefined, previous, nil)
	return true
}

// Has reports whether the container has the own property key.
func (p *Proxy) Has(key any) bool { return p.target.HasOwn(keyFor(key)) }

// Keys lists the enumerable own keys.
func (p *Proxy) Keys() []keypath.Key { return value.EnumerableKeys(p.target) }

// Len returns the element count of arrays and byte views, the size of sets
// and maps, and the number of enumerable keys otherwise.
func (p *Proxy) Len() int {
	switch t := p.target.(type) {
	case *value.Array:
		return t.Len()
	case *value.Bytes:
		return t.Len()
	case *value.Set:
		return t.Size()
	case *value.Map:
		return t.Size()
	}
	return len(p.Keys())
}

// All iterates the enumerable own properties, wrapping nested containers.
func (p *Proxy) All() iter.Seq2[keypath.Key, any] {
	return func(yield func(keypath.Key, any) bool) {
		for _, k := range p.Keys() {
			v, ok := p.GetOwn(k)
			if !ok {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

// MarshalJSON encodes the raw container.
func (p *Proxy) MarshalJSON() ([]byte, error) { return value.Encode(p.target) }

func (p *Proxy) String() string { return value.ToString(p.target) }

func (p *Proxy) GetOwn(k keypath.Key) (any, bool) {
	v, ok := p.target.GetOwn(k)
	if !ok {
		return nil, false
	}
	return p.obs.prepare(v, p.target, k, nil), true
}

func (p *Proxy) HasOwn(k keypath.Key) bool { return p.target.HasOwn(k) }

func (p *Proxy) Child(k keypath.Key) (any, bool) { return p.GetOwn(k) }

func (p *Proxy) SetOwn(k keypath.Key, v any) bool { return p.Set(k, v) }

func (p *Proxy) DeleteOwn(k keypath.Key) bool { return p.Delete(k) }

func (p *Proxy) OwnDescriptor(k keypath.Key) (value.Descriptor, bool) {
	return p.target.OwnDescriptor(k)
}

func (p *Proxy) DefineOwn(k keypath.Key, d value.Descriptor) bool { return p.Define(k, d) }

func (p *Proxy) OwnKeys() []keypath.Key { return p.target.OwnKeys() }
