package deepwatch

import (
	"github.com/reoring/deepwatch/internal/txn"
	"github.com/reoring/deepwatch/keypath"
	"github.com/reoring/deepwatch/value"
)

var lengthKey = keypath.K("length")

func rawArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = value.Raw(a)
	}
	return out
}

// Call invokes a method on the container. Built-in mutators and
// function-valued properties run inside a transaction, so all the writes
// they make are reported as one change carrying ApplyData. Unknown methods
// return nil.
func (p *Proxy) Call(method string, args ...any) any {
	o, t := p.obs, p.target
	raw := rawArgs(args)
	if o.torn() {
		r, _ := value.Invoke(t, t, method, raw)
		return r
	}
	if !value.HasMethod(t, method) {
		o.logger.Debug("unknown method", "method", method, "kind", t.Kind().String())
		return nil
	}
	detailed := o.opts.Details.Includes(method)
	switch {
	case !txn.IsHandledType(t):
		r, _ := value.Invoke(t, p, method, args)
		return p.wrapReceiver(r)
	case detailed && isIndexed(t) && txn.IsMutating(t, method):
		return p.callIndexed(method, raw)
	case detailed && !txn.IsHandledMethod(t, method):
		r, _ := value.Invoke(t, p, method, args)
		return p.wrapReceiver(r)
	}
	return p.batch(method, args, raw, !detailed)
}

func isIndexed(c value.Container) bool {
	switch c.(type) {
	case *value.Array, *value.Bytes:
		return true
	}
	return false
}

func (p *Proxy) wrapReceiver(result any) any {
	if c, ok := result.(value.Container); ok && c == p.target {
		return p
	}
	return result
}

// batch runs one call inside a transaction and reports the call as a
// single change when the receiver differs afterwards.
func (p *Proxy) batch(method string, args, raw []any, withApply bool) any {
	o, t := p.obs, p.target
	applyPath := o.pathOf(t)
	handled := txn.IsHandledMethod(t, method)

	depth := o.log.Depth()
	defer func() {
		// a panicking method must not leave its transaction open
		for o.log.Depth() > depth {
			o.log.Stop()
		}
	}()

	o.log.Start(t, applyPath, raw)
	var this any = p
	callArgs := args
	if handled {
		this, callArgs = t, raw
		o.log.UseMethodDiff(t, method)
	}
	result, _ := value.Invoke(t, this, method, callArgs)
	o.cache.ForgetDescriptors(t)
	changed := o.log.IsChanged(t, o.opts.Equals)
	popped := o.log.Stop()

	result = p.wrapResult(method, raw, result, applyPath, handled)
	if changed {
		var apply *ApplyData
		if withApply {
			apply = &ApplyData{Name: method, Args: args, Result: result}
		}
		p.commit(method, applyPath, popped, apply)
	}
	return result
}

// commit validates and routes the change made by a finished call. A call
// nested in another call's transaction is folded into it at its path
// relative to the outer receiver.
func (p *Proxy) commit(method string, applyPath keypath.Path, popped txn.Popped, apply *ApplyData) {
	o, t := p.obs, p.target
	nested := o.log.IsCloning()
	base, k := applyPath, keypath.Key{}
	if nested {
		base, k = applyPath.Initial(), applyPath.Last()
	}
	if !(nested && o.log.IsPartOfClone(base)) && o.suppressed(t, applyPath.Last()) {
		return
	}
	previous := popped.Previous()
	if !o.validate(OpApply, base, k, t, previous, apply) {
		popped.Undo(t)
		o.cache.ForgetDescriptors(t)
		o.rec.RolledBack(method)
		o.logger.Debug("call rolled back", "method", method, "path", applyPath.String(), "handle", uint64(p.handle))
		return
	}
	o.route(OpApply, base, k, t, previous, apply)
}

// wrapResult wraps what a call returned: the receiver comes back as its
// Proxy, a map lookup is wrapped below the looked-up key and collection
// iterators wrap what they deliver. Anything else is returned as is.
func (p *Proxy) wrapResult(method string, raw []any, result any, applyPath keypath.Path, handled bool) any {
	o, t := p.obs, p.target
	if c, ok := result.(value.Container); ok && c == t {
		return p
	}
	if !handled {
		return result
	}
	switch t.(type) {
	case *value.Map:
		if method == "get" && len(raw) > 0 {
			return o.prepare(result, t, keyFor(raw[0]), applyPath)
		}
	case *value.Set:
	default:
		return result
	}
	it, ok := result.(*value.Iterator)
	if !ok || !txn.IsIteratorMethod(method) {
		return result
	}
	return p.wrapIterator(it, applyPath)
}

// callIndexed runs a mutator of an array or byte view without batching and
// reports every changed index in ascending order, followed by length when
// the array shrank. A rejected index is restored and rejected slots at the
// end of a grown array are cut off again.
func (p *Proxy) callIndexed(method string, raw []any) any {
	t := p.target
	before := elements(t)
	result, _ := value.Invoke(t, t, method, raw)
	p.obs.cache.ForgetDescriptors(t)
	after := elements(t)
	keep := len(before)
	for i := range max(len(before), len(after)) {
		prev, cur := at(before, i), at(after, i)
		k := keypath.Idx(i)
		if !p.obs.opts.Equals(prev, cur) && !p.settle(indexOp(cur), k, cur, prev) {
			t.SetOwn(k, prev)
			continue
		}
		if i >= len(before) {
			keep = i + 1
		}
	}
	a, ok := t.(*value.Array)
	switch {
	case !ok:
	case a.Len() < len(before):
		if !p.settle(OpSet, lengthKey, a.Len(), len(before)) {
			a.SetOwn(lengthKey, len(before))
		}
	case a.Len() > keep:
		a.SetOwn(lengthKey, keep)
	}
	return p.wrapReceiver(result)
}

func indexOp(cur any) string {
	if value.IsUndefined(cur) {
		return OpDelete
	}
	return OpSet
}

// settle routes a field change that has already been applied and reports
// whether it stands.
func (p *Proxy) settle(op string, k keypath.Key, v, previous any) bool {
	o, t := p.obs, p.target
	if o.suppressed(t, k) {
		return true
	}
	base := o.pathOf(t)
	if !o.validate(op, base, k, v, previous, nil) {
		return false
	}
	o.route(op, base, k, v, previous, nil)
	return true
}

func elements(c value.Container) []any {
	switch t := c.(type) {
	case *value.Array:
		return t.Elements()
	case *value.Bytes:
		out := make([]any, t.Len())
		for i, b := range t.Bytes() {
			out[i] = int(b)
		}
		return out
	}
	return nil
}

func at(elems []any, i int) any {
	if i < len(elems) {
		return elems[i]
	}
	return value.Undefined
}
