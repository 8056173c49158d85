package value

import (
	"bytes"
	"slices"
	"strconv"
	"strings"

	"github.com/reoring/deepwatch/keypath"
)

// Bytes is a fixed-length view over a byte buffer with Uint8Array
// semantics: elements are integers in [0, 255] and writes wrap modulo 256.
type Bytes struct {
	Props
	buf []byte
}

// NewBytes returns a view over buf; the buffer is shared, not copied.
func NewBytes(buf []byte) *Bytes { return &Bytes{buf: buf} }

func (b *Bytes) Kind() Kind { return KindBytes }

// Len returns the view length.
func (b *Bytes) Len() int { return len(b.buf) }

// Bytes returns the underlying buffer.
func (b *Bytes) Bytes() []byte { return b.buf }

func (b *Bytes) GetOwn(k keypath.Key) (any, bool) {
	if i, ok := k.Index(); ok {
		if i >= len(b.buf) {
			return nil, false
		}
		return int(b.buf[i]), true
	}
	if k == lengthKey {
		return len(b.buf), true
	}
	return b.Props.GetOwn(k)
}

func (b *Bytes) HasOwn(k keypath.Key) bool {
	_, ok := b.GetOwn(k)
	return ok
}

func (b *Bytes) Child(k keypath.Key) (any, bool) { return b.GetOwn(k) }

func (b *Bytes) SetOwn(k keypath.Key, v any) bool {
	if i, ok := k.Index(); ok {
		if i >= len(b.buf) {
			return false
		}
		b.buf[i] = byte(ToInt(v, 0))
		return true
	}
	if k == lengthKey {
		return false
	}
	return b.Props.SetOwn(k, v)
}

func (b *Bytes) DeleteOwn(k keypath.Key) bool {
	if i, ok := k.Index(); ok {
		return i >= len(b.buf)
	}
	if k == lengthKey {
		return false
	}
	return b.Props.DeleteOwn(k)
}

func (b *Bytes) OwnDescriptor(k keypath.Key) (Descriptor, bool) {
	if i, ok := k.Index(); ok {
		if i >= len(b.buf) {
			return Descriptor{}, false
		}
		return Data(int(b.buf[i])), true
	}
	if k == lengthKey {
		return Descriptor{Value: len(b.buf)}, true
	}
	return b.Props.OwnDescriptor(k)
}

func (b *Bytes) DefineOwn(k keypath.Key, d Descriptor) bool {
	if _, ok := k.Index(); ok {
		if d.IsAccessor() || !d.Writable || !d.Enumerable || !d.Configurable {
			return false
		}
		return b.SetOwn(k, d.Value)
	}
	if k == lengthKey {
		return false
	}
	return b.Props.DefineOwn(k, d)
}

func (b *Bytes) OwnKeys() []keypath.Key {
	out := make([]keypath.Key, 0, len(b.buf))
	for i := range b.buf {
		out = append(out, keypath.Idx(i))
	}
	return append(out, b.Props.OwnKeys()...)
}

// Fill sets bytes in [start, end) to v.
func (b *Bytes) Fill(v any, start, end int) *Bytes {
	start, end = relIndex(start, len(b.buf)), relIndex(end, len(b.buf))
	for i := start; i < end; i++ {
		b.buf[i] = byte(ToInt(v, 0))
	}
	return b
}

// SetFrom copies src into the view starting at offset.
func (b *Bytes) SetFrom(src any, offset int) bool {
	var in []byte
	switch t := src.(type) {
	case *Bytes:
		in = t.buf
	case *Array:
		for _, e := range t.elems {
			in = append(in, byte(ToInt(e, 0)))
		}
	case []byte:
		in = t
	default:
		return false
	}
	if offset < 0 || offset > len(b.buf)-len(in) {
		return false
	}
	copy(b.buf[offset:], in)
	return true
}

// CopyWithin copies [start, end) to position target.
func (b *Bytes) CopyWithin(target, start, end int) *Bytes {
	n := len(b.buf)
	target, start, end = relIndex(target, n), relIndex(start, n), relIndex(end, n)
	if end > start {
		copy(b.buf[target:], b.buf[start:end])
	}
	return b
}

// Reverse reverses the view in place.
func (b *Bytes) Reverse() *Bytes {
	slices.Reverse(b.buf)
	return b
}

// Sort sorts the view numerically in place.
func (b *Bytes) Sort() *Bytes {
	slices.Sort(b.buf)
	return b
}

// Subarray returns a view sharing the buffer for [start, end).
func (b *Bytes) Subarray(start, end int) *Bytes {
	start, end = relIndex(start, len(b.buf)), relIndex(end, len(b.buf))
	if end < start {
		end = start
	}
	return NewBytes(b.buf[start:end:end])
}

// Slice returns a copy of [start, end).
func (b *Bytes) Slice(start, end int) *Bytes {
	v := b.Subarray(start, end)
	return NewBytes(bytes.Clone(v.buf))
}

// IndexOf returns the first index of v, or -1.
func (b *Bytes) IndexOf(v any) int {
	n, ok := toNumber(v)
	if !ok || n < 0 || n > 255 || n != float64(int(n)) {
		return -1
	}
	return bytes.IndexByte(b.buf, byte(n))
}

// Join renders the bytes as decimal numbers separated by sep.
func (b *Bytes) Join(sep string) string {
	parts := make([]string, len(b.buf))
	for i, c := range b.buf {
		parts[i] = strconv.Itoa(int(c))
	}
	return strings.Join(parts, sep)
}

func (b *Bytes) String() string { return b.Join(",") }
