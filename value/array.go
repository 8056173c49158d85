package value

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reoring/deepwatch/keypath"
)

var lengthKey = keypath.K("length")

// MaxLength bounds the length of an Array. Arrays are stored densely, so
// index and length writes that would grow one past MaxLength are rejected.
const MaxLength = 1 << 24

// Array is an ordered list of elements addressed by index keys, plus a
// writable, non-configurable length.
type Array struct {
	Props
	elems []any
}

// NewArray returns an array holding elems. The slice is owned by the array.
func NewArray(elems ...any) *Array { return &Array{elems: elems} }

func (a *Array) Kind() Kind { return KindArray }

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.elems) }

// At returns element i, or nil when out of range or a hole.
func (a *Array) At(i int) any {
	if i < 0 || i >= len(a.elems) || IsUndefined(a.elems[i]) {
		return nil
	}
	return a.elems[i]
}

// Elements returns a copy of the elements.
func (a *Array) Elements() []any { return append([]any(nil), a.elems...) }

// Replace overwrites the elements with a copy of elems.
func (a *Array) Replace(elems []any) { a.elems = append(a.elems[:0:0], elems...) }

func (a *Array) GetOwn(k keypath.Key) (any, bool) {
	if i, ok := k.Index(); ok {
		if i >= len(a.elems) || IsUndefined(a.elems[i]) {
			return nil, false
		}
		return a.elems[i], true
	}
	if k == lengthKey {
		return len(a.elems), true
	}
	return a.Props.GetOwn(k)
}

func (a *Array) HasOwn(k keypath.Key) bool {
	_, ok := a.GetOwn(k)
	return ok
}

func (a *Array) Child(k keypath.Key) (any, bool) { return a.GetOwn(k) }

func (a *Array) SetOwn(k keypath.Key, v any) bool {
	if i, ok := k.Index(); ok {
		if i >= MaxLength {
			return false
		}
		a.grow(i + 1)
		a.elems[i] = v
		return true
	}
	if k == lengthKey {
		return a.setLength(v)
	}
	return a.Props.SetOwn(k, v)
}

// grow pads the array with holes up to n elements.
func (a *Array) grow(n int) {
	for len(a.elems) < n {
		a.elems = append(a.elems, Undefined)
	}
}

func (a *Array) setLength(v any) bool {
	n := ToInt(v, -1)
	if n < 0 || n > MaxLength {
		return false
	}
	if n <= len(a.elems) {
		clear(a.elems[n:])
		a.elems = a.elems[:n]
		return true
	}
	a.grow(n)
	return true
}

func (a *Array) DeleteOwn(k keypath.Key) bool {
	if i, ok := k.Index(); ok {
		if i < len(a.elems) {
			a.elems[i] = Undefined
		}
		return true
	}
	if k == lengthKey {
		return false
	}
	return a.Props.DeleteOwn(k)
}

func (a *Array) OwnDescriptor(k keypath.Key) (Descriptor, bool) {
	if i, ok := k.Index(); ok {
		v, has := a.GetOwn(keypath.Idx(i))
		if !has {
			return Descriptor{}, false
		}
		return Data(v), true
	}
	if k == lengthKey {
		return Descriptor{Value: len(a.elems), Writable: true}, true
	}
	return a.Props.OwnDescriptor(k)
}

func (a *Array) DefineOwn(k keypath.Key, d Descriptor) bool {
	if _, ok := k.Index(); ok {
		if d.IsAccessor() {
			return false
		}
		return a.SetOwn(k, d.Value)
	}
	if k == lengthKey {
		if d.IsAccessor() || d.Configurable || d.Enumerable {
			return false
		}
		return a.setLength(d.Value)
	}
	return a.Props.DefineOwn(k, d)
}

func (a *Array) OwnKeys() []keypath.Key {
	out := make([]keypath.Key, 0, len(a.elems)+1)
	for i, e := range a.elems {
		if !IsUndefined(e) {
			out = append(out, keypath.Idx(i))
		}
	}
	out = append(out, lengthKey)
	return append(out, a.Props.OwnKeys()...)
}

// Push appends elements and returns the new length.
func (a *Array) Push(vs ...any) int {
	a.elems = append(a.elems, vs...)
	return len(a.elems)
}

// Pop removes and returns the last element.
func (a *Array) Pop() any {
	if len(a.elems) == 0 {
		return Undefined
	}
	v := a.elems[len(a.elems)-1]
	a.elems[len(a.elems)-1] = nil
	a.elems = a.elems[:len(a.elems)-1]
	return v
}

// Shift removes and returns the first element.
func (a *Array) Shift() any {
	if len(a.elems) == 0 {
		return Undefined
	}
	v := a.elems[0]
	a.elems = append(a.elems[:0:0], a.elems[1:]...)
	return v
}

// Unshift prepends elements and returns the new length.
func (a *Array) Unshift(vs ...any) int {
	a.elems = append(append(make([]any, 0, len(vs)+len(a.elems)), vs...), a.elems...)
	return len(a.elems)
}

// Splice removes deleteCount elements at start, inserts items there and
// returns the removed elements. A negative deleteCount removes everything
// from start.
func (a *Array) Splice(start, deleteCount int, items ...any) *Array {
	start = relIndex(start, len(a.elems))
	if deleteCount < 0 || deleteCount > len(a.elems)-start {
		deleteCount = len(a.elems) - start
	}
	removed := append([]any(nil), a.elems[start:start+deleteCount]...)
	tail := append([]any(nil), a.elems[start+deleteCount:]...)
	a.elems = append(append(a.elems[:start], items...), tail...)
	return NewArray(removed...)
}

// Reverse reverses the elements in place.
func (a *Array) Reverse() *Array {
	for i, j := 0, len(a.elems)-1; i < j; i, j = i+1, j-1 {
		a.elems[i], a.elems[j] = a.elems[j], a.elems[i]
	}
	return a
}

// Sort sorts in place. With a nil compare, elements are ordered by their
// string form and undefined elements go last.
func (a *Array) Sort(compare func(x, y any) int) *Array {
	sort.SliceStable(a.elems, func(i, j int) bool {
		x, y := a.elems[i], a.elems[j]
		if IsUndefined(x) || IsUndefined(y) {
			return !IsUndefined(x) && IsUndefined(y)
		}
		if compare != nil {
			return compare(x, y) < 0
		}
		return ToString(x) < ToString(y)
	})
	return a
}

// Fill sets elements in [start, end) to v.
func (a *Array) Fill(v any, start, end int) *Array {
	start, end = relIndex(start, len(a.elems)), relIndex(end, len(a.elems))
	for i := start; i < end; i++ {
		a.elems[i] = v
	}
	return a
}

// CopyWithin copies [start, end) to position target.
func (a *Array) CopyWithin(target, start, end int) *Array {
	n := len(a.elems)
	target, start, end = relIndex(target, n), relIndex(start, n), relIndex(end, n)
	if end > start {
		src := append([]any(nil), a.elems[start:end]...)
		copy(a.elems[target:], src)
	}
	return a
}

// Flat returns a new array with nested arrays flattened to depth.
func (a *Array) Flat(depth int) *Array {
	return NewArray(flatten(a.elems, depth)...)
}

func flatten(elems []any, depth int) []any {
	var out []any
	for _, e := range elems {
		if IsUndefined(e) {
			continue
		}
		if inner, ok := e.(*Array); ok && depth > 0 {
			out = append(out, flatten(inner.elems, depth-1)...)
			continue
		}
		out = append(out, e)
	}
	return out
}

// Concat returns a new array with the elements of a followed by vs; array
// arguments are spread.
func (a *Array) Concat(vs ...any) *Array {
	out := a.Elements()
	for _, v := range vs {
		if inner, ok := v.(*Array); ok {
			out = append(out, inner.elems...)
			continue
		}
		out = append(out, v)
	}
	return NewArray(out...)
}

// IndexOf returns the first index of v using strict equality, or -1.
func (a *Array) IndexOf(v any, from int) int {
	for i := relIndex(from, len(a.elems)); i < len(a.elems); i++ {
		if StrictEqual(a.elems[i], v) {
			return i
		}
	}
	return -1
}

// LastIndexOf returns the last index of v using strict equality, or -1.
func (a *Array) LastIndexOf(v any) int {
	for i := len(a.elems) - 1; i >= 0; i-- {
		if StrictEqual(a.elems[i], v) {
			return i
		}
	}
	return -1
}

// Includes reports membership using SameValueZero.
func (a *Array) Includes(v any) bool {
	for _, e := range a.elems {
		if SameValueZero(e, v) {
			return true
		}
	}
	return false
}

// Join renders the elements separated by sep.
func (a *Array) Join(sep string) string {
	parts := make([]string, len(a.elems))
	for i, e := range a.elems {
		if e == nil || IsUndefined(e) {
			continue
		}
		parts[i] = ToString(e)
	}
	return strings.Join(parts, sep)
}

func (a *Array) String() string { return a.Join(",") }

// relIndex clamps a possibly negative relative index into [0, n].
func relIndex(i, n int) int {
	if i < 0 {
		i += n
		if i < 0 {
			return 0
		}
	}
	if i > n {
		return n
	}
	return i
}

// ToString renders v the way string conversion of a property value does.
func ToString(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case *Object:
		return "[object Object]"
	}
	if f, ok := toNumber(v); ok {
		return formatNumber(f)
	}
	return fmt.Sprint(v)
}
