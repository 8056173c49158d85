package script

import (
	"fmt"

	"github.com/reoring/deepwatch"
	"github.com/reoring/deepwatch/i18n"
	"github.com/reoring/deepwatch/keypath"
	"github.com/reoring/deepwatch/value"
)

// Result is the outcome of one operation. Value holds what a call
// returned.
type Result struct {
	Index int
	Op    string
	Path  string
	OK    bool
	Value any
}

// Run applies ops through root in order. Every operation is attempted;
// failures are collected and returned as Issues alongside the results.
func Run(root *deepwatch.Proxy, ops []Op) ([]Result, error) {
	var iss Issues
	out := make([]Result, 0, len(ops))
	for i, op := range ops {
		r, issue := step(root, i, op)
		out = append(out, r)
		if issue != nil {
			iss = AppendIssues(iss, *issue)
		}
	}
	if len(iss) > 0 {
		return out, iss
	}
	return out, nil
}

func step(root *deepwatch.Proxy, i int, op Op) (Result, *Issue) {
	res := Result{Index: i, Op: op.Kind, Path: op.Path}
	p := keypath.Parse(op.Path, true)
	fail := func(code string, at keypath.Path, data map[string]string, cause error) (Result, *Issue) {
		return res, &Issue{Index: i, Path: keypath.Pointer(at), Code: code, Message: i18n.T(code, data), Cause: cause}
	}

	switch op.Kind {
	case OpUnsubscribe:
		deepwatch.Unsubscribe(root)
		res.OK = true
		return res, nil

	case OpCall:
		recv, ok := locate(root, p)
		if !ok {
			return fail(CodeNotContainer, p, map[string]string{"path": op.Path}, nil)
		}
		raw := deepwatch.Target(recv).(value.Container)
		if !value.HasMethod(raw, op.Method) {
			return fail(CodeUnknownMethod, p, map[string]string{"kind": raw.Kind().String(), "method": op.Method}, nil)
		}
		args := make([]any, len(op.Args))
		for j, a := range op.Args {
			v, err := resolveRefs(root, a)
			if err != nil {
				return fail(CodeInvalidValue, p, nil, err)
			}
			args[j] = v
		}
		res.Value = call(recv, op.Method, args)
		res.OK = true
		return res, nil

	case OpSet, OpDelete, OpDefine:
		if p.IsRoot() {
			return fail(CodeInvalidValue, p, nil, fmt.Errorf("%s needs a property path", op.Kind))
		}
		recv, ok := locate(root, p.Initial())
		if !ok {
			return fail(CodeNotContainer, p.Initial(), map[string]string{"path": p.Initial().String()}, nil)
		}
		k := p.Last()
		var v any
		if op.Kind != OpDelete {
			var err error
			if v, err = resolveRefs(root, op.Value); err != nil {
				return fail(CodeInvalidValue, p, nil, err)
			}
		}
		switch op.Kind {
		case OpSet:
			ok = recv.SetOwn(k, v)
		case OpDelete:
			ok = recv.DeleteOwn(k)
		default:
			ok = recv.DefineOwn(k, value.Descriptor{
				Value:        v,
				Writable:     op.Writable,
				Enumerable:   op.Enumerable,
				Configurable: op.Configurable,
			})
		}
		if !ok {
			return fail(CodeRejected, p, nil, nil)
		}
		res.OK = true
		return res, nil
	}
	return fail(CodeUnknownOp, p, map[string]string{"op": op.Kind}, nil)
}

func call(recv value.Container, method string, args []any) any {
	if px, ok := recv.(*deepwatch.Proxy); ok {
		return px.Call(method, args...)
	}
	r, _ := value.Invoke(recv, recv, method, args)
	return r
}

// lookup walks p from root. Own properties are read through the Proxy so
// nested values stay observed; map entries are read with the map's get
// method.
func lookup(root *deepwatch.Proxy, p keypath.Path) (any, bool) {
	var cur any = root
	ok := true
	p.Walk(func(k keypath.Key) {
		if !ok {
			return
		}
		c, isContainer := cur.(value.Container)
		if !isContainer {
			ok = false
			return
		}
		if c.HasOwn(k) {
			cur, _ = c.GetOwn(k)
			return
		}
		m, isMap := deepwatch.Target(c).(*value.Map)
		if !isMap {
			ok = false
			return
		}
		mk, found := mapKey(m, k)
		if !found {
			ok = false
			return
		}
		cur = call(c, "get", []any{mk})
	})
	return cur, ok
}

func locate(root *deepwatch.Proxy, p keypath.Path) (value.Container, bool) {
	v, ok := lookup(root, p)
	if !ok {
		return nil, false
	}
	c, ok := v.(value.Container)
	return c, ok
}

func mapKey(m *value.Map, k keypath.Key) (any, bool) {
	for _, mk := range m.Keys() {
		if keypath.KeyOf(mk).Name() == k.Name() {
			return mk, true
		}
	}
	return nil, false
}

// resolveRefs replaces {$ref: path} objects inside v with the raw values
// they name. v is freshly decoded, so it is rewritten in place.
func resolveRefs(root *deepwatch.Proxy, v any) (any, error) {
	switch t := v.(type) {
	case *value.Object:
		if ref, ok := t.GetOwn(keypath.K(RefTag)); ok && t.Len() == 1 {
			s, isString := ref.(string)
			if !isString {
				return nil, fmt.Errorf("%s: expected path string", RefTag)
			}
			target, found := lookup(root, keypath.Parse(s, true))
			if !found {
				return nil, fmt.Errorf("%s: %q does not resolve", RefTag, s)
			}
			return value.Raw(target), nil
		}
		for _, k := range t.OwnKeys() {
			cv, _ := t.GetOwn(k)
			nv, err := resolveRefs(root, cv)
			if err != nil {
				return nil, err
			}
			t.SetOwn(k, nv)
		}
	case *value.Array:
		for i, e := range t.Elements() {
			nv, err := resolveRefs(root, e)
			if err != nil {
				return nil, err
			}
			t.SetOwn(keypath.Idx(i), nv)
		}
	}
	return v, nil
}
