package value

// WeakSet holds object members without exposing iteration. Only observable
// values may be members.
type WeakSet struct {
	Props
	members map[any]struct{}
}

// NewWeakSet returns a weak set holding vs; non-object values are skipped.
func NewWeakSet(vs ...any) *WeakSet {
	s := &WeakSet{}
	for _, v := range vs {
		s.Add(v)
	}
	return s
}

func (s *WeakSet) Kind() Kind { return KindWeakSet }

// Add inserts v when it is an object.
func (s *WeakSet) Add(v any) *WeakSet {
	if !IsObservable(v) {
		return s
	}
	if s.members == nil {
		s.members = make(map[any]struct{})
	}
	s.members[memberKey(v)] = struct{}{}
	return s
}

// Has reports membership.
func (s *WeakSet) Has(v any) bool {
	if !IsObservable(v) {
		return false
	}
	_, ok := s.members[memberKey(v)]
	return ok
}

// Delete removes v and reports whether it was present.
func (s *WeakSet) Delete(v any) bool {
	if !s.Has(v) {
		return false
	}
	delete(s.members, memberKey(v))
	return true
}

func (s *WeakSet) String() string { return "[object WeakSet]" }

// WeakMap maps object keys to values without exposing iteration.
type WeakMap struct {
	Props
	entries map[any]any
}

// NewWeakMap returns a weak map holding the entries with object keys.
func NewWeakMap(entries ...Entry) *WeakMap {
	m := &WeakMap{}
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

func (m *WeakMap) Kind() Kind { return KindWeakMap }

// Set stores v under an object key k.
func (m *WeakMap) Set(k, v any) *WeakMap {
	if !IsObservable(k) {
		return m
	}
	if m.entries == nil {
		m.entries = make(map[any]any)
	}
	m.entries[memberKey(k)] = v
	return m
}

// Get returns the value stored under k.
func (m *WeakMap) Get(k any) (any, bool) {
	if !IsObservable(k) {
		return nil, false
	}
	v, ok := m.entries[memberKey(k)]
	return v, ok
}

// Has reports whether k is present.
func (m *WeakMap) Has(k any) bool {
	_, ok := m.Get(k)
	return ok
}

// Delete removes k and reports whether it was present.
func (m *WeakMap) Delete(k any) bool {
	if !m.Has(k) {
		return false
	}
	delete(m.entries, memberKey(k))
	return true
}

func (m *WeakMap) String() string { return "[object WeakMap]" }
