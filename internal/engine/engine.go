// Package engine tokenizes JSON documents for the value decoders. A
// TokenSource yields a flat stream of structural and scalar tokens; the
// limits wrapper enforces nesting depth and duplicate-key policy while
// tracking the JSON Pointer of the current token.
package engine

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

var kindNames = [...]string{
	KindBeginObject: "begin-object",
	KindEndObject:   "end-object",
	KindBeginArray:  "begin-array",
	KindEndArray:    "end-array",
	KindKey:         "key",
	KindString:      "string",
	KindNumber:      "number",
	KindBool:        "bool",
	KindNull:        "null",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsScalar reports whether k is a leaf value token.
func (k Kind) IsScalar() bool { return k >= KindString }

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the decoders.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

// frame tracks whether the enclosing object expects a key next.
type frame struct {
	kind         containerKind
	expectingKey bool
}

// valueDone flips the enclosing object back to expecting a key once a
// complete member value has been produced.
func valueDone(stack []frame) {
	if n := len(stack); n > 0 {
		top := &stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}
