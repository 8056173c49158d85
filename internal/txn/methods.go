package txn

import (
	"bytes"

	"github.com/reoring/deepwatch/value"
)

// DiffFunc reports whether current differs from the pre-call clone.
type DiffFunc func(clone, current value.Container, equals func(a, b any) bool) bool

func names(ns ...string) map[string]bool {
	m := make(map[string]bool, len(ns))
	for _, n := range ns {
		m[n] = true
	}
	return m
}

func union(sets ...map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for _, s := range sets {
		for n := range s {
			out[n] = true
		}
	}
	return out
}

func keysOf(m map[string]DiffFunc) map[string]bool {
	out := make(map[string]bool, len(m))
	for n := range m {
		out[n] = true
	}
	return out
}

var (
	immutableObjectMethods = names("hasOwnProperty", "isPrototypeOf", "propertyIsEnumerable", "toLocaleString", "toString", "valueOf")
	immutableArrayMethods  = names("concat", "includes", "indexOf", "join", "keys", "lastIndexOf")
	immutableSetMethods    = names("has", "toString")
	immutableMapMethods    = union(immutableSetMethods, names("get"))
	iteratorMethods        = names("keys", "values", "entries")

	mutableArrayMethods = map[string]DiffFunc{
		"push":       diffCertain,
		"pop":        diffCertain,
		"shift":      diffCertain,
		"unshift":    diffCertain,
		"copyWithin": diffArrays,
		"reverse":    diffArrays,
		"sort":       diffArrays,
		"splice":     diffArrays,
		"flat":       diffArrays,
		"fill":       diffArrays,
	}
	mutableSetMethods = map[string]DiffFunc{
		"add":     diffSets,
		"clear":   diffSets,
		"delete":  diffSets,
		"forEach": diffSets,
	}
	mutableMapMethods = map[string]DiffFunc{
		"set":     diffMaps,
		"clear":   diffMaps,
		"delete":  diffMaps,
		"forEach": diffMaps,
	}

	handledArrayMethods = union(immutableObjectMethods, immutableArrayMethods, keysOf(mutableArrayMethods))
	handledSetMethods   = union(immutableSetMethods, keysOf(mutableSetMethods), iteratorMethods)
	handledMapMethods   = union(immutableMapMethods, keysOf(mutableMapMethods), iteratorMethods)
)

// IsHandledType reports whether calls on v run inside a transaction.
func IsHandledType(v any) bool {
	switch v.(type) {
	case *value.Object, *value.Array, *value.Date, *value.Set, *value.Map,
		*value.WeakSet, *value.WeakMap, *value.Bytes:
		return true
	}
	return false
}

// IsHandledMethod reports whether name is a built-in method of target the
// log knows how to diff. Handled methods run against the raw receiver with
// unwrapped arguments; anything else runs against the wrapper so its
// writes are recorded field by field.
func IsHandledMethod(target value.Container, name string) bool {
	switch target.(type) {
	case *value.Object:
		return immutableObjectMethods[name]
	case *value.Array:
		return handledArrayMethods[name]
	case *value.Set:
		return handledSetMethods[name]
	case *value.Map:
		return handledMapMethods[name]
	case *value.Date, *value.WeakSet, *value.WeakMap, *value.Bytes:
		return true
	}
	return false
}

// IsMutating reports whether name is a mutating built-in of target.
func IsMutating(target value.Container, name string) bool {
	switch target.(type) {
	case *value.Array:
		return mutableArrayMethods[name] != nil
	case *value.Set:
		return mutableSetMethods[name] != nil
	case *value.Map:
		return mutableMapMethods[name] != nil
	case *value.Date, *value.WeakSet, *value.WeakMap, *value.Bytes:
		return true
	}
	return false
}

// IsIteratorMethod reports whether name returns a collection iterator.
func IsIteratorMethod(name string) bool { return iteratorMethods[name] }

func diffFor(target value.Container, name string) DiffFunc {
	switch target.(type) {
	case *value.Array:
		return mutableArrayMethods[name]
	case *value.Set:
		return mutableSetMethods[name]
	case *value.Map:
		return mutableMapMethods[name]
	}
	return nil
}

func diffCertain(value.Container, value.Container, func(a, b any) bool) bool { return true }

func diffArrays(clone, current value.Container, _ func(a, b any) bool) bool {
	a, ok1 := clone.(*value.Array)
	b, ok2 := current.(*value.Array)
	if !ok1 || !ok2 {
		return true
	}
	if a.Len() != b.Len() {
		return true
	}
	ae, be := a.Elements(), b.Elements()
	for i := range ae {
		if !value.StrictEqual(ae[i], be[i]) {
			return true
		}
	}
	return false
}

func diffBytes(clone, current value.Container, _ func(a, b any) bool) bool {
	a, ok1 := clone.(*value.Bytes)
	b, ok2 := current.(*value.Bytes)
	return !ok1 || !ok2 || !bytes.Equal(a.Bytes(), b.Bytes())
}

func diffSets(clone, current value.Container, _ func(a, b any) bool) bool {
	a, ok1 := clone.(*value.Set)
	b, ok2 := current.(*value.Set)
	if !ok1 || !ok2 || a.Size() != b.Size() {
		return true
	}
	for _, m := range a.Values() {
		if !b.Has(m) {
			return true
		}
	}
	return false
}

func diffMaps(clone, current value.Container, _ func(a, b any) bool) bool {
	a, ok1 := clone.(*value.Map)
	b, ok2 := current.(*value.Map)
	if !ok1 || !ok2 || a.Size() != b.Size() {
		return true
	}
	for _, e := range a.Entries() {
		v, ok := b.Get(e.Key)
		if !ok || !value.StrictEqual(v, e.Value) {
			return true
		}
	}
	return false
}
