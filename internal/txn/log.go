package txn

import (
	"github.com/reoring/deepwatch/keypath"
	"github.com/reoring/deepwatch/value"
)

// Log is the transaction stack of one observer. Only the innermost
// transaction receives writes. A Log is not safe for concurrent use.
type Log struct {
	stack      []transaction
	validating bool
}

// NewLog returns an empty log. When validating is false the per-write
// change records needed for undo are not kept.
func NewLog(validating bool) *Log { return &Log{validating: validating} }

// Start pushes a transaction for a call on v wrapped at path at.
func (l *Log) Start(v value.Container, at keypath.Path, args []any) {
	base := newObjectTxn(v, at, l.validating)
	var t transaction = base
	switch c := v.(type) {
	case *value.Array:
		t = &arrayTxn{objectTxn: base, elems: c.Elements()}
	case *value.Bytes:
		base.diff = diffBytes
		t = &bytesTxn{objectTxn: base, buf: append([]byte(nil), c.Bytes()...)}
	case *value.Date:
		t = &dateTxn{objectTxn: base, ms: c.Millis()}
	case *value.Set:
		t = &setTxn{objectTxn: base, members: c.Values()}
	case *value.Map:
		t = &mapTxn{objectTxn: base, entries: c.Entries()}
	case *value.WeakSet:
		arg := argAt(args, 0)
		t = &weakSetTxn{objectTxn: base, arg: arg, had: c.Has(arg)}
	case *value.WeakMap:
		key := argAt(args, 0)
		val, had := c.Get(key)
		t = &weakMapTxn{objectTxn: base, key: key, had: had, val: val}
	}
	l.stack = append(l.stack, t)
}

func argAt(args []any, i int) any {
	if i < len(args) {
		return value.Raw(args[i])
	}
	return value.Undefined
}

func (l *Log) top() transaction {
	if len(l.stack) == 0 {
		return nil
	}
	return l.stack[len(l.stack)-1]
}

// UseMethodDiff selects the change predicate of the built-in method name
// for the innermost transaction. Methods without one fall back to whether
// any write was recorded.
func (l *Log) UseMethodDiff(v value.Container, name string) {
	t := l.top()
	if t == nil {
		return
	}
	if d := diffFor(v, name); d != nil {
		t.base().diff = d
	}
}

// Update records a write of key under fullPath whose prior value was
// previous into the innermost transaction.
func (l *Log) Update(fullPath keypath.Path, key keypath.Key, previous any) {
	if t := l.top(); t != nil {
		t.base().update(fullPath, key, previous)
	}
}

// IsChanged reports whether v differs from the innermost transaction's
// clone.
func (l *Log) IsChanged(v value.Container, equals func(a, b any) bool) bool {
	t := l.top()
	if t == nil {
		return false
	}
	if equals == nil {
		equals = value.SameValue
	}
	return t.isChanged(v, equals)
}

// Popped is a stopped transaction.
type Popped struct{ t transaction }

// Previous returns the receiver as it was before the call.
func (p Popped) Previous() any {
	if p.t == nil {
		return value.Undefined
	}
	return p.t.base().clone
}

// Undo rolls v back to its state before the call.
func (p Popped) Undo(v value.Container) {
	if p.t != nil {
		p.t.undo(v)
	}
}

// Stop pops the innermost transaction.
func (l *Log) Stop() Popped {
	t := l.top()
	if t == nil {
		return Popped{}
	}
	l.stack = l.stack[:len(l.stack)-1]
	return Popped{t: t}
}

// IsCloning reports whether a transaction is open.
func (l *Log) IsCloning() bool { return len(l.stack) > 0 }

// IsPartOfClone reports whether a write under p falls inside the innermost
// transaction's receiver.
func (l *Log) IsPartOfClone(p keypath.Path) bool {
	t := l.top()
	return t != nil && t.base().isPartOf(p)
}

// Depth returns the number of open transactions.
func (l *Log) Depth() int { return len(l.stack) }
