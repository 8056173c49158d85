// Package txn implements the transaction log that batches the field writes
// of one mutating call into a single change. Each call pushes a transaction
// holding a shallow clone of its receiver; writes recorded while the call
// runs deepen the clone copy-on-write so it keeps describing the pre-call
// state; popping yields that clone as the change's previous value, and a
// rejected change is rolled back from it.
package txn

import (
	"github.com/reoring/deepwatch/keypath"
	"github.com/reoring/deepwatch/value"
)

type change struct {
	path     keypath.Path
	key      keypath.Key
	previous any
}

type transaction interface {
	base() *objectTxn
	isChanged(current value.Container, equals func(a, b any) bool) bool
	undo(current value.Container)
}

// objectTxn covers plain objects and is embedded by the other kinds.
type objectTxn struct {
	at         keypath.Path
	clone      any
	cloned     map[value.Container]bool
	written    map[string]bool
	changes    []change
	validating bool
	changed    bool
	diff       DiffFunc
}

func newObjectTxn(v value.Container, at keypath.Path, validating bool) *objectTxn {
	t := &objectTxn{
		at:         at,
		cloned:     make(map[value.Container]bool),
		written:    make(map[string]bool),
		validating: validating,
	}
	if c := ShallowClone(v); c != nil {
		t.cloned[c] = true
		t.clone = c
	} else {
		t.clone = value.Undefined
	}
	return t
}

func (t *objectTxn) base() *objectTxn { return t }

func (t *objectTxn) shallowClone(v value.Container) value.Container {
	c := ShallowClone(v)
	if c != nil {
		t.cloned[c] = true
	}
	return c
}

// update records that key under fullPath held previous before a write made
// during the call.
func (t *objectTxn) update(fullPath keypath.Path, key keypath.Key, previous any) {
	t.changed = true
	if key.IsZero() || (key.Name() == "length" && !key.IsSymbol()) {
		return
	}
	rel := fullPath.After(t.at)
	obj, _ := t.clone.(value.Container)
	rel.Walk(func(k keypath.Key) {
		if obj == nil {
			return
		}
		child, ok := obj.Child(k)
		cc, isContainer := child.(value.Container)
		if !ok || !isContainer {
			obj = nil
			return
		}
		if !t.cloned[cc] {
			if cc = t.shallowClone(cc); cc == nil {
				obj = nil
				return
			}
			setChild(obj, k, cc)
		}
		obj = cc
	})
	if t.validating {
		t.changes = append(t.changes, change{path: rel, key: key, previous: previous})
	}
	id := rel.String() + "\x00" + key.String()
	if obj == nil || t.written[id] {
		return
	}
	t.written[id] = true
	if value.IsUndefined(previous) {
		obj.DeleteOwn(key)
		return
	}
	obj.SetOwn(key, previous)
}

// setChild writes a copied child back into its cloned parent. Map entries
// are addressed by the rendered form of their key.
func setChild(parent value.Container, k keypath.Key, v any) {
	m, ok := parent.(*value.Map)
	if !ok || m.HasOwn(k) {
		parent.SetOwn(k, v)
		return
	}
	for _, mk := range m.Keys() {
		if keypath.KeyOf(mk) == k {
			m.Set(mk, v)
			return
		}
	}
}

func (t *objectTxn) isChanged(current value.Container, equals func(a, b any) bool) bool {
	if t.diff != nil {
		c, _ := t.clone.(value.Container)
		return t.diff(c, current, equals)
	}
	return t.changed
}

// undo replays the recorded writes in reverse.
func (t *objectTxn) undo(current value.Container) {
	for i := len(t.changes) - 1; i >= 0; i-- {
		ch := t.changes[i]
		got, ok := keypath.Resolve(current, ch.path)
		if !ok {
			continue
		}
		c, ok := got.(value.Container)
		if !ok {
			continue
		}
		if value.IsUndefined(ch.previous) {
			c.DeleteOwn(ch.key)
		} else {
			c.SetOwn(ch.key, ch.previous)
		}
	}
}

func (t *objectTxn) isPartOf(p keypath.Path) bool {
	return t.at.IsRoot() || p.IsSubPath(t.at)
}

type arrayTxn struct {
	*objectTxn
	elems []any
}

func (t *arrayTxn) undo(current value.Container) {
	t.objectTxn.undo(current)
	if a, ok := current.(*value.Array); ok {
		a.Replace(t.elems)
	}
}

type bytesTxn struct {
	*objectTxn
	buf []byte
}

func (t *bytesTxn) undo(current value.Container) {
	t.objectTxn.undo(current)
	if b, ok := current.(*value.Bytes); ok {
		copy(b.Bytes(), t.buf)
	}
}

type dateTxn struct {
	*objectTxn
	ms float64
}

func (t *dateTxn) isChanged(current value.Container, equals func(a, b any) bool) bool {
	d, ok := current.(*value.Date)
	return !ok || !equals(t.ms, d.Millis())
}

func (t *dateTxn) undo(current value.Container) {
	if d, ok := current.(*value.Date); ok {
		d.SetMillis(t.ms)
	}
}

type setTxn struct {
	*objectTxn
	members []any
}

func (t *setTxn) undo(current value.Container) {
	t.objectTxn.undo(current)
	if s, ok := current.(*value.Set); ok {
		s.Clear()
		for _, m := range t.members {
			s.Add(m)
		}
	}
}

type mapTxn struct {
	*objectTxn
	entries []value.Entry
}

func (t *mapTxn) undo(current value.Container) {
	t.objectTxn.undo(current)
	if m, ok := current.(*value.Map); ok {
		m.Clear()
		for _, e := range t.entries {
			m.Set(e.Key, e.Value)
		}
	}
}

// weakSetTxn tracks the membership of the call's first argument only.
type weakSetTxn struct {
	*objectTxn
	arg any
	had bool
}

func (t *weakSetTxn) isChanged(current value.Container, _ func(a, b any) bool) bool {
	s, ok := current.(*value.WeakSet)
	return !ok || s.Has(t.arg) != t.had
}

func (t *weakSetTxn) undo(current value.Container) {
	s, ok := current.(*value.WeakSet)
	if !ok {
		return
	}
	switch has := s.Has(t.arg); {
	case t.had && !has:
		s.Add(t.arg)
	case !t.had && has:
		s.Delete(t.arg)
	}
}

// weakMapTxn tracks the entry under the call's first argument only.
type weakMapTxn struct {
	*objectTxn
	key any
	had bool
	val any
}

func (t *weakMapTxn) isChanged(current value.Container, _ func(a, b any) bool) bool {
	m, ok := current.(*value.WeakMap)
	if !ok {
		return true
	}
	v, has := m.Get(t.key)
	return has != t.had || !value.StrictEqual(v, t.val)
}

func (t *weakMapTxn) undo(current value.Container) {
	m, ok := current.(*value.WeakMap)
	if !ok {
		return
	}
	v, has := m.Get(t.key)
	switch {
	case t.had && (!has || !value.StrictEqual(v, t.val)):
		m.Set(t.key, t.val)
	case !t.had && has:
		m.Delete(t.key)
	}
}

// ShallowClone copies the top level of v: own properties of objects,
// elements of arrays, the buffer of byte views, the timestamp of dates and
// the members or entries of sets and maps. Nested containers are shared.
// Weak collections cannot be enumerated and clone to nil.
func ShallowClone(v value.Container) value.Container {
	switch t := v.(type) {
	case *value.Array:
		return value.NewArray(t.Elements()...)
	case *value.Bytes:
		return value.NewBytes(append([]byte(nil), t.Bytes()...))
	case *value.Date:
		return value.DateFromMillis(t.Millis())
	case *value.Set:
		return value.NewSet(t.Values()...)
	case *value.Map:
		return value.NewMap(t.Entries()...)
	case *value.WeakSet, *value.WeakMap:
		return nil
	}
	o := value.NewObject()
	for _, k := range value.EnumerableKeys(v) {
		cv, _ := v.GetOwn(k)
		o.SetOwn(k, cv)
	}
	return o
}
