// Package value defines the observable value kinds: plain objects, arrays,
// dates, sets, maps, weak sets, weak maps and byte views. Every kind is a
// reference type with pointer identity and implements Container, so a single
// interception layer can read, write, define, delete and invoke methods on
// any of them.
package value

import (
	"regexp"

	"github.com/reoring/deepwatch/keypath"
)

// Kind identifies a value kind.
type Kind int

const (
	KindPrimitive Kind = iota
	KindObject
	KindArray
	KindDate
	KindSet
	KindMap
	KindWeakSet
	KindWeakMap
	KindBytes
	KindFunc
	KindRegExp
)

var kindNames = [...]string{
	KindPrimitive: "primitive",
	KindObject:    "object",
	KindArray:     "array",
	KindDate:      "date",
	KindSet:       "set",
	KindMap:       "map",
	KindWeakSet:   "weakset",
	KindWeakMap:   "weakmap",
	KindBytes:     "bytes",
	KindFunc:      "function",
	KindRegExp:    "regexp",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Container is implemented by every observable kind.
type Container interface {
	keypath.Parent
	Kind() Kind
	// GetOwn reads an own property, invoking accessor getters.
	GetOwn(k keypath.Key) (any, bool)
	HasOwn(k keypath.Key) bool
	// SetOwn writes an own property, invoking accessor setters. It reports
	// false when the write is not permitted.
	SetOwn(k keypath.Key, v any) bool
	DeleteOwn(k keypath.Key) bool
	OwnDescriptor(k keypath.Key) (Descriptor, bool)
	DefineOwn(k keypath.Key, d Descriptor) bool
	// OwnKeys lists own property keys, enumerable or not.
	OwnKeys() []keypath.Key
}

// Unwrapper is implemented by wrappers that stand in for a container.
type Unwrapper interface {
	Unwrap() Container
}

// Raw returns the container behind a wrapper, or v itself.
func Raw(v any) any {
	if w, ok := v.(Unwrapper); ok {
		if c := w.Unwrap(); c != nil {
			return c
		}
	}
	return v
}

// KindOf reports the kind of v.
func KindOf(v any) Kind {
	switch t := v.(type) {
	case Container:
		return t.Kind()
	case Func, func(any, []any) any:
		return KindFunc
	case *regexp.Regexp:
		return KindRegExp
	}
	return KindPrimitive
}

// IsObservable reports whether v is a container that can be wrapped.
// Primitives, functions and regular expressions are not.
func IsObservable(v any) bool {
	c, ok := v.(Container)
	if !ok {
		return false
	}
	switch c.(type) {
	case *Object, *Array, *Date, *Set, *Map, *WeakSet, *WeakMap, *Bytes:
		return true
	}
	return c != nil
}

// UndefinedType is the type of Undefined.
type UndefinedType struct{}

func (UndefinedType) String() string { return "undefined" }

// Undefined marks the absence of a value: the previous value of a newly
// created property or the new value of a deleted one.
var Undefined = UndefinedType{}

// IsUndefined reports whether v is Undefined.
func IsUndefined(v any) bool {
	_, ok := v.(UndefinedType)
	return ok
}

// Func is a callable stored as a property. this is the receiver the call
// was made through: the wrapper when invoked via an observed value.
type Func func(this any, args []any) any

// Entry is produced by entries iterators.
type Entry struct {
	Key   any
	Value any
}
