package value

import "iter"

// Iterator is a pull iterator returned by the keys, values and entries
// methods. Entries iterators yield Entry values.
type Iterator struct {
	name string
	next func() (any, bool)
}

// NewIterator returns an iterator named after the method that produced it.
func NewIterator(name string, next func() (any, bool)) *Iterator {
	return &Iterator{name: name, next: next}
}

// Name returns the producing method name: keys, values or entries.
func (it *Iterator) Name() string { return it.name }

// Next advances the iterator; ok is false once it is exhausted.
func (it *Iterator) Next() (v any, ok bool) {
	if it == nil || it.next == nil {
		return nil, false
	}
	v, ok = it.next()
	if !ok {
		it.next = nil
	}
	return v, ok
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

func sliceIterator(name string, n func() int, at func(i int) any) *Iterator {
	i := 0
	return NewIterator(name, func() (any, bool) {
		if i >= n() {
			return nil, false
		}
		idx := i
		i++
		switch name {
		case "keys":
			return idx, true
		case "entries":
			return Entry{Key: idx, Value: at(idx)}, true
		}
		return at(idx), true
	})
}
