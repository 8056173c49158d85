package value

import (
	"bytes"
	"encoding/base64"
	"math"
	"regexp"
	"slices"
	"sort"

	j "github.com/goccy/go-json"

	"github.com/reoring/deepwatch/keypath"
)

// Circular replaces a container that is already being encoded further up
// the current branch.
const Circular = "[Circular]"

// Encode renders v as JSON. Objects keep their property order and skip
// non-enumerable, symbol-keyed, undefined and function-valued properties.
// Dates, sets, maps, weak collections and byte views use the tag forms
// understood by Untag. Back-references render as Circular.
func Encode(v any) ([]byte, error) {
	var e encoder
	if err := e.encode(v); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

type encoder struct {
	buf   bytes.Buffer
	stack []any
}

func (e *encoder) encode(v any) error {
	v = Raw(v)
	c, ok := v.(Container)
	if !ok {
		return e.scalar(v)
	}
	if slices.Contains(e.stack, v) {
		return e.scalar(Circular)
	}
	e.stack = append(e.stack, v)
	defer func() { e.stack = e.stack[:len(e.stack)-1] }()

	switch t := c.(type) {
	case *Array:
		return e.list(t.elems)
	case *Date:
		if !t.Valid() {
			return e.tag(TagDate, nil)
		}
		return e.tag(TagDate, t.ISOString())
	case *Set:
		return e.tag(TagSet, NewArray(t.Values()...))
	case *Map:
		return e.tag(TagMap, pairs(t.Entries()))
	case *WeakSet:
		return e.tag(TagWeakSet, NewArray())
	case *WeakMap:
		return e.tag(TagWeakMap, NewArray())
	case *Bytes:
		return e.tag(TagBytes, base64.StdEncoding.EncodeToString(t.buf))
	}
	return e.object(c)
}

func pairs(entries []Entry) *Array {
	out := NewArray()
	for _, en := range entries {
		out.Push(NewArray(en.Key, en.Value))
	}
	return out
}

func (e *encoder) tag(name string, body any) error {
	e.buf.WriteByte('{')
	if err := e.scalar(name); err != nil {
		return err
	}
	e.buf.WriteByte(':')
	if err := e.encode(body); err != nil {
		return err
	}
	e.buf.WriteByte('}')
	return nil
}

func (e *encoder) list(elems []any) error {
	e.buf.WriteByte('[')
	for i, el := range elems {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		if _, isFunc := AsFunc(el); isFunc || IsUndefined(el) {
			el = nil
		}
		if err := e.encode(el); err != nil {
			return err
		}
	}
	e.buf.WriteByte(']')
	return nil
}

func (e *encoder) object(c Container) error {
	e.buf.WriteByte('{')
	first := true
	for _, k := range EnumerableKeys(c) {
		if k.IsSymbol() {
			continue
		}
		v, _ := c.GetOwn(k)
		if _, isFunc := AsFunc(v); isFunc || IsUndefined(v) {
			continue
		}
		if !first {
			e.buf.WriteByte(',')
		}
		first = false
		if err := e.scalar(k.Name()); err != nil {
			return err
		}
		e.buf.WriteByte(':')
		if err := e.encode(v); err != nil {
			return err
		}
	}
	e.buf.WriteByte('}')
	return nil
}

func (e *encoder) scalar(v any) error {
	switch t := v.(type) {
	case UndefinedType:
		v = nil
	case *keypath.Symbol:
		v = t.String()
	case *regexp.Regexp:
		v = t.String()
	}
	if f, ok := toNumber(v); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		v = nil
	}
	if _, isFunc := AsFunc(v); isFunc {
		v = nil
	}
	b, err := j.Marshal(v)
	if err != nil {
		return err
	}
	e.buf.Write(b)
	return nil
}

func (o *Object) MarshalJSON() ([]byte, error)  { return Encode(o) }
func (a *Array) MarshalJSON() ([]byte, error)   { return Encode(a) }
func (d *Date) MarshalJSON() ([]byte, error)    { return Encode(d) }
func (s *Set) MarshalJSON() ([]byte, error)     { return Encode(s) }
func (m *Map) MarshalJSON() ([]byte, error)     { return Encode(m) }
func (s *WeakSet) MarshalJSON() ([]byte, error) { return Encode(s) }
func (m *WeakMap) MarshalJSON() ([]byte, error) { return Encode(m) }
func (b *Bytes) MarshalJSON() ([]byte, error)   { return Encode(b) }

// FromNative converts decoded Go data (map[string]any, []any, numbers,
// strings, bools, nil) into value kinds. Map keys are sorted; tag objects
// are converted as by Untag.
func FromNative(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		o := NewObject()
		for _, k := range keys {
			cv, err := FromNative(t[k])
			if err != nil {
				return nil, err
			}
			o.SetOwn(keypath.K(k), cv)
		}
		return Untag(o)
	case []any:
		a := NewArray()
		for _, e := range t {
			cv, err := FromNative(e)
			if err != nil {
				return nil, err
			}
			a.Push(cv)
		}
		return a, nil
	case []byte:
		return NewBytes(t), nil
	}
	if f, ok := toNumber(v); ok {
		return f, nil
	}
	return v, nil
}

// ToNative converts v into plain Go data suitable for generic encoders.
// Back-references become Circular.
func ToNative(v any) any {
	return toNative(v, nil)
}

func toNative(v any, stack []any) any {
	v = Raw(v)
	c, ok := v.(Container)
	if !ok {
		if IsUndefined(v) {
			return nil
		}
		return v
	}
	if slices.Contains(stack, v) {
		return Circular
	}
	stack = append(stack, v)
	switch t := c.(type) {
	case *Array:
		out := make([]any, len(t.elems))
		for i, e := range t.elems {
			out[i] = toNative(e, stack)
		}
		return out
	case *Date:
		if !t.Valid() {
			return map[string]any{TagDate: nil}
		}
		return map[string]any{TagDate: t.ISOString()}
	case *Set:
		return map[string]any{TagSet: toNative(NewArray(t.Values()...), stack)}
	case *Map:
		return map[string]any{TagMap: toNative(pairs(t.Entries()), stack)}
	case *WeakSet:
		return map[string]any{TagWeakSet: []any{}}
	case *WeakMap:
		return map[string]any{TagWeakMap: []any{}}
	case *Bytes:
		return map[string]any{TagBytes: base64.StdEncoding.EncodeToString(t.buf)}
	}
	out := make(map[string]any)
	for _, k := range EnumerableKeys(c) {
		if k.IsSymbol() {
			continue
		}
		cv, _ := c.GetOwn(k)
		if _, isFunc := AsFunc(cv); isFunc || IsUndefined(cv) {
			continue
		}
		out[k.Name()] = toNative(cv, stack)
	}
	return out
}
