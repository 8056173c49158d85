package keypath

import "strings"

// Segments is a path kept as a slice of keys.
type Segments []Key

func (p Segments) Concat(k Key) Path {
	out := make(Segments, len(p), len(p)+1)
	copy(out, p)
	if !k.IsZero() {
		out = append(out, k)
	}
	return out
}

func (p Segments) Initial() Path {
	if len(p) == 0 {
		return p
	}
	return append(Segments{}, p[:len(p)-1]...)
}

func (p Segments) Last() Key {
	if len(p) == 0 {
		return Key{}
	}
	return p[len(p)-1]
}

func (p Segments) After(sub Path) Path {
	n := sub.Len()
	if n >= len(p) {
		return Segments{}
	}
	return append(Segments{}, p[n:]...)
}

func (p Segments) IsSubPath(sub Path) bool {
	if len(p) < sub.Len() {
		return false
	}
	for i, k := range sub.Keys() {
		if !sameSegment(p[i], k) {
			return false
		}
	}
	return true
}

func (p Segments) IsRoot() bool { return len(p) == 0 }

func (p Segments) Walk(visit func(Key)) {
	for _, k := range p {
		visit(k)
	}
}

func (p Segments) Len() int { return len(p) }

func (p Segments) Keys() []Key { return append([]Key(nil), p...) }

func (p Segments) String() string {
	names := make([]string, len(p))
	for i, k := range p {
		names[i] = k.Name()
	}
	return strings.Join(names, Separator)
}
