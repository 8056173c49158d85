package deepwatch

import (
	"iter"

	"github.com/reoring/deepwatch/keypath"
	"github.com/reoring/deepwatch/value"
)

// Iterator is a set or map iterator whose elements are wrapped as they are
// delivered. Elements are addressed by their collection key: set members
// by themselves, map values by the key they are stored under.
type Iterator struct {
	inner *value.Iterator
	keys  *value.Iterator
	wrap  func(v, key any) any
}

func (p *Proxy) wrapIterator(it *value.Iterator, applyPath keypath.Path) *Iterator {
	o, t := p.obs, p.target
	w := &Iterator{
		inner: it,
		wrap: func(v, key any) any {
			return o.prepare(v, t, keyFor(key), applyPath)
		},
	}
	if it.Name() == "values" {
		w.keys, _ = mustIterator(value.Invoke(t, t, "keys", nil))
	}
	return w
}

func mustIterator(v any, ok bool) (*value.Iterator, bool) {
	it, isIt := v.(*value.Iterator)
	return it, ok && isIt
}

// Name returns the producing method name.
func (it *Iterator) Name() string { return it.inner.Name() }

// Next advances the iterator.
func (it *Iterator) Next() (any, bool) {
	v, ok := it.inner.Next()
	if !ok {
		return nil, false
	}
	switch it.inner.Name() {
	case "entries":
		e, _ := v.(value.Entry)
		return value.Entry{Key: it.wrap(e.Key, e.Key), Value: it.wrap(e.Value, e.Key)}, true
	case "values":
		k, _ := it.keys.Next()
		return it.wrap(v, k), true
	}
	return it.wrap(v, v), true
}

// All drains the iterator as a sequence.
func (it *Iterator) All() iter.Seq[any] {
	return func(yield func(any) bool) {
		for {
			v, ok := it.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}
