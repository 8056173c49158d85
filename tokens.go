package deepwatch

import (
	"github.com/reoring/deepwatch/keypath"
	"github.com/reoring/deepwatch/value"
)

// Control tokens understood by Proxy.Get.
var (
	// TargetToken reads the raw value behind a Proxy.
	TargetToken = keypath.NewSymbol("deepwatch.target")
	// UnsubscribeToken tears the observer down when read from the root
	// Proxy; on any other Proxy it is an ordinary property read.
	UnsubscribeToken = keypath.NewSymbol("deepwatch.unsubscribe")
)

// Target returns the raw value behind v, or v when it is not a Proxy.
func Target(v any) any {
	if p, ok := v.(*Proxy); ok {
		return p.Get(TargetToken)
	}
	return v
}

// Unsubscribe tears down the observer of the root Proxy v and returns the
// raw root. Later calls are no-ops.
func Unsubscribe(v any) any {
	if p, ok := v.(*Proxy); ok {
		return p.Get(UnsubscribeToken)
	}
	return v
}

// IsProxy reports whether v is a Proxy.
func IsProxy(v any) bool {
	_, ok := v.(*Proxy)
	return ok
}

// keyFor converts a property name, index, symbol or collection key into a
// path key.
func keyFor(v any) keypath.Key {
	switch t := v.(type) {
	case keypath.Key:
		return t
	case *Proxy:
		return keypath.K(value.ToString(t.target))
	case value.Container:
		return keypath.K(value.ToString(t))
	}
	return keypath.KeyOf(v)
}
