package value

import "github.com/reoring/deepwatch/keypath"

// Map is an insertion-ordered key/value collection with keys compared using
// SameValueZero.
type Map struct {
	Props
	order   []any
	entries map[any]*Entry
}

// NewMap returns a map holding the given entries.
func NewMap(entries ...Entry) *Map {
	m := &Map{}
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

func (m *Map) Kind() Kind { return KindMap }

// Size returns the number of entries.
func (m *Map) Size() int { return len(m.order) }

// Get returns the value stored under k.
func (m *Map) Get(k any) (any, bool) {
	e, ok := m.entries[memberKey(k)]
	if !ok {
		return nil, false
	}
	return e.Value, true
}

// Has reports whether k is present.
func (m *Map) Has(k any) bool {
	_, ok := m.entries[memberKey(k)]
	return ok
}

// Set stores v under k.
func (m *Map) Set(k, v any) *Map {
	mk := memberKey(k)
	if e, ok := m.entries[mk]; ok {
		e.Value = v
		return m
	}
	if m.entries == nil {
		m.entries = make(map[any]*Entry)
	}
	m.entries[mk] = &Entry{Key: k, Value: v}
	m.order = append(m.order, k)
	return m
}

// Delete removes k and reports whether it was present.
func (m *Map) Delete(k any) bool {
	mk := memberKey(k)
	if _, ok := m.entries[mk]; !ok {
		return false
	}
	delete(m.entries, mk)
	for i, key := range m.order {
		if memberKey(key) == mk {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear removes every entry.
func (m *Map) Clear() {
	m.order = nil
	m.entries = nil
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []any { return append([]any(nil), m.order...) }

// Entries returns the entries in insertion order.
func (m *Map) Entries() []Entry {
	out := make([]Entry, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, *m.entries[memberKey(k)])
	}
	return out
}

func (m *Map) GetOwn(k keypath.Key) (any, bool) {
	if k == sizeKey {
		return len(m.order), true
	}
	return m.Props.GetOwn(k)
}

func (m *Map) HasOwn(k keypath.Key) bool {
	_, ok := m.GetOwn(k)
	return ok
}

// Child resolves own properties first, then entries whose key renders as k.
func (m *Map) Child(k keypath.Key) (any, bool) {
	if v, ok := m.GetOwn(k); ok {
		return v, ok
	}
	if k.IsSymbol() {
		return m.Get(k.Symbol())
	}
	if v, ok := m.Get(k.Name()); ok {
		return v, ok
	}
	for _, key := range m.order {
		if keypath.KeyOf(key).Name() == k.Name() {
			return m.Get(key)
		}
	}
	return nil, false
}

func (m *Map) SetOwn(k keypath.Key, v any) bool {
	if k == sizeKey {
		return false
	}
	return m.Props.SetOwn(k, v)
}

func (m *Map) OwnDescriptor(k keypath.Key) (Descriptor, bool) {
	if k == sizeKey {
		return Descriptor{Value: len(m.order)}, true
	}
	return m.Props.OwnDescriptor(k)
}

func (m *Map) DefineOwn(k keypath.Key, d Descriptor) bool {
	if k == sizeKey {
		return false
	}
	return m.Props.DefineOwn(k, d)
}

func (m *Map) DeleteOwn(k keypath.Key) bool {
	if k == sizeKey {
		return false
	}
	return m.Props.DeleteOwn(k)
}

func (m *Map) String() string { return "[object Map]" }

func (m *Map) iterate(name string) *Iterator {
	i := 0
	return &Iterator{name: name, next: func() (any, bool) {
		if i >= len(m.order) {
			return nil, false
		}
		k := m.order[i]
		i++
		switch name {
		case "keys":
			return k, true
		case "values":
			v, _ := m.Get(k)
			return v, true
		}
		v, _ := m.Get(k)
		return Entry{Key: k, Value: v}, true
	}}
}
