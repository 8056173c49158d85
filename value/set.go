package value

import "github.com/reoring/deepwatch/keypath"

var sizeKey = keypath.K("size")

// Set is an insertion-ordered collection of distinct values compared with
// SameValueZero.
type Set struct {
	Props
	order   []any
	members map[any]struct{}
}

// NewSet returns a set holding vs.
func NewSet(vs ...any) *Set {
	s := &Set{}
	for _, v := range vs {
		s.Add(v)
	}
	return s
}

func (s *Set) Kind() Kind { return KindSet }

// Size returns the number of members.
func (s *Set) Size() int { return len(s.order) }

// Has reports membership.
func (s *Set) Has(v any) bool {
	_, ok := s.members[memberKey(v)]
	return ok
}

// Add inserts v when absent.
func (s *Set) Add(v any) *Set {
	k := memberKey(v)
	if _, ok := s.members[k]; ok {
		return s
	}
	if s.members == nil {
		s.members = make(map[any]struct{})
	}
	s.members[k] = struct{}{}
	s.order = append(s.order, v)
	return s
}

// Delete removes v and reports whether it was present.
func (s *Set) Delete(v any) bool {
	k := memberKey(v)
	if _, ok := s.members[k]; !ok {
		return false
	}
	delete(s.members, k)
	for i, m := range s.order {
		if memberKey(m) == k {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear removes every member.
func (s *Set) Clear() {
	s.order = nil
	s.members = nil
}

// Values returns the members in insertion order.
func (s *Set) Values() []any { return append([]any(nil), s.order...) }

func (s *Set) GetOwn(k keypath.Key) (any, bool) {
	if k == sizeKey {
		return len(s.order), true
	}
	return s.Props.GetOwn(k)
}

func (s *Set) HasOwn(k keypath.Key) bool {
	_, ok := s.GetOwn(k)
	return ok
}

func (s *Set) Child(k keypath.Key) (any, bool) { return s.GetOwn(k) }

func (s *Set) SetOwn(k keypath.Key, v any) bool {
	if k == sizeKey {
		return false
	}
	return s.Props.SetOwn(k, v)
}

func (s *Set) OwnDescriptor(k keypath.Key) (Descriptor, bool) {
	if k == sizeKey {
		return Descriptor{Value: len(s.order)}, true
	}
	return s.Props.OwnDescriptor(k)
}

func (s *Set) DefineOwn(k keypath.Key, d Descriptor) bool {
	if k == sizeKey {
		return false
	}
	return s.Props.DefineOwn(k, d)
}

func (s *Set) DeleteOwn(k keypath.Key) bool {
	if k == sizeKey {
		return false
	}
	return s.Props.DeleteOwn(k)
}

func (s *Set) String() string { return "[object Set]" }

// iterate returns an iterator over a snapshot-free view of the members:
// members added during iteration are visited, deleted ones are skipped.
func (s *Set) iterate(name string) *Iterator {
	i := 0
	return &Iterator{name: name, next: func() (any, bool) {
		if i >= len(s.order) {
			return nil, false
		}
		v := s.order[i]
		i++
		if name == "entries" {
			return Entry{Key: v, Value: v}, true
		}
		return v, true
	}}
}
