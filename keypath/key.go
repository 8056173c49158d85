package keypath

import (
	"fmt"
	"strconv"
)

// Symbol is a unique, non-string property key. Two symbols with the same
// description are distinct keys.
type Symbol struct {
	desc string
}

// NewSymbol allocates a new symbol with the given description.
func NewSymbol(desc string) *Symbol { return &Symbol{desc: desc} }

// Description returns the description the symbol was created with.
func (s *Symbol) Description() string { return s.desc }

// String renders the display name used by dotted paths.
func (s *Symbol) String() string { return "Symbol(" + s.desc + ")" }

// Key is a single path segment: either a string name or a symbol.
// The zero Key is the empty key.
type Key struct {
	name string
	sym  *Symbol
}

// K returns a string key.
func K(name string) Key { return Key{name: name} }

// Idx returns the key addressing index i of an array-like value.
func Idx(i int) Key { return Key{name: strconv.Itoa(i)} }

// Sym returns the key for symbol s.
func Sym(s *Symbol) Key { return Key{sym: s} }

// Keys converts names into string keys.
func Keys(names ...string) []Key {
	out := make([]Key, len(names))
	for i, n := range names {
		out[i] = K(n)
	}
	return out
}

// KeyOf converts an arbitrary Go value into a Key. Strings, integers,
// symbols and Keys are converted directly; anything else is rendered
// with fmt.Sprint.
func KeyOf(v any) Key {
	switch t := v.(type) {
	case Key:
		return t
	case string:
		return K(t)
	case *Symbol:
		if t == nil {
			return Key{}
		}
		return Sym(t)
	case int:
		return Idx(t)
	case int64:
		return K(strconv.FormatInt(t, 10))
	case uint64:
		return K(strconv.FormatUint(t, 10))
	case float64:
		if t == float64(int64(t)) {
			return K(strconv.FormatInt(int64(t), 10))
		}
		return K(strconv.FormatFloat(t, 'g', -1, 64))
	case fmt.Stringer:
		return K(t.String())
	case nil:
		return Key{}
	}
	return K(fmt.Sprint(v))
}

// IsZero reports whether k is the empty key.
func (k Key) IsZero() bool { return k.sym == nil && k.name == "" }

// IsSymbol reports whether k is a symbol key.
func (k Key) IsSymbol() bool { return k.sym != nil }

// Symbol returns the symbol of a symbol key, or nil.
func (k Key) Symbol() *Symbol { return k.sym }

// Name returns the string name of k; for symbols it is the display name.
func (k Key) Name() string {
	if k.sym != nil {
		return k.sym.String()
	}
	return k.name
}

// String implements fmt.Stringer.
func (k Key) String() string { return k.Name() }

// Index parses k as a non-negative array index.
func (k Key) Index() (int, bool) {
	if k.sym != nil || k.name == "" {
		return 0, false
	}
	if len(k.name) > 1 && k.name[0] == '0' {
		return 0, false
	}
	n, err := strconv.Atoi(k.name)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
