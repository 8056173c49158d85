// Package keypath implements the path algebra used to address values inside
// an observed graph.
//
// A path is an ordered sequence of keys from the observed root to a value.
// Two representations are provided and behave identically: Segments keeps
// the keys as a slice (symbols keep their identity), Dotted joins them with
// Separator (symbols render as their display name). The root path is empty
// in both.
package keypath

import "strings"

// Separator delimits segments of a Dotted path.
const Separator = "."

// Path is the common surface of Segments and Dotted.
type Path interface {
	// Concat appends one key. Appending the zero key returns the path unchanged.
	Concat(k Key) Path
	// Initial returns all but the last segment; the root is returned as is.
	Initial() Path
	// Last returns the last segment, or the zero key on the root.
	Last() Key
	// After returns the suffix of the path beyond sub's length.
	After(sub Path) Path
	// IsSubPath reports whether sub is the path itself or one of its ancestors.
	IsSubPath(sub Path) bool
	// IsRoot reports whether the path is empty.
	IsRoot() bool
	// Walk calls visit once per segment, left to right.
	Walk(visit func(Key))
	// Len returns the number of segments.
	Len() int
	// Keys returns a copy of the segments.
	Keys() []Key
	String() string
}

// Root returns the empty path in the requested representation.
func Root(asArray bool) Path {
	if asArray {
		return Segments{}
	}
	return Dotted("")
}

// Parse builds a path from its dotted form.
func Parse(s string, asArray bool) Path {
	if !asArray {
		return Dotted(s)
	}
	seg := Segments{}
	Dotted(s).Walk(func(k Key) { seg = append(seg, k) })
	return seg
}

// Of builds a path in the requested representation from keys.
func Of(asArray bool, keys ...Key) Path {
	p := Root(asArray)
	for _, k := range keys {
		p = p.Concat(k)
	}
	return p
}

// IsSameTree reports whether child is a strict descendant of existing: it is
// longer and shares all of existing's leading segments. The empty path never
// qualifies as existing.
func IsSameTree(child, existing Path) bool {
	if child == nil || existing == nil {
		return false
	}
	el := existing.Len()
	if el == 0 || child.Len() <= el {
		return false
	}
	ck, ek := child.Keys(), existing.Keys()
	for i := range ek {
		if !sameSegment(ck[i], ek[i]) {
			return false
		}
	}
	return true
}

// Equal reports whether a and b address the same location.
func Equal(a, b Path) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Len() != b.Len() {
		return false
	}
	ak, bk := a.Keys(), b.Keys()
	for i := range ak {
		if !sameSegment(ak[i], bk[i]) {
			return false
		}
	}
	return true
}

// Pointer renders p as an RFC 6901 JSON Pointer. The root renders as "/".
func Pointer(p Path) string {
	if p == nil || p.IsRoot() {
		return "/"
	}
	b := &strings.Builder{}
	p.Walk(func(k Key) {
		b.WriteByte('/')
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(k.Name(), "~", "~0"), "/", "~1"))
	})
	return b.String()
}

func sameSegment(a, b Key) bool {
	if a.sym != nil && b.sym != nil {
		return a.sym == b.sym
	}
	return a.Name() == b.Name()
}
