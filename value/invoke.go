package value

import (
	"math"
	"strings"

	"github.com/reoring/deepwatch/keypath"
)

// Invoke calls the method name on target. Function-valued own properties
// take precedence over built-in methods and receive this as their receiver;
// built-in methods run against target, except the array iteration methods
// (forEach, map, filter, ...) which read elements through this when it is an
// array-kinded Container. ok is false when target has no such method.
func Invoke(target Container, this any, name string, args []any) (result any, ok bool) {
	if fn, ok := Method(target, name); ok {
		return fn(this, args), true
	}
	switch t := target.(type) {
	case *Array:
		result, ok = invokeArray(t, this, name, args)
	case *Date:
		result, ok = invokeDate(t, name, args)
	case *Set:
		result, ok = invokeSet(t, name, args)
	case *Map:
		result, ok = invokeMap(t, name, args)
	case *WeakSet:
		result, ok = invokeWeakSet(t, name, args)
	case *WeakMap:
		result, ok = invokeWeakMap(t, name, args)
	case *Bytes:
		result, ok = invokeBytes(t, name, args)
	}
	if ok {
		return result, true
	}
	return invokeObject(target, name, args)
}

// Method returns the function stored under the own property name.
func Method(target Container, name string) (Func, bool) {
	v, ok := target.GetOwn(keypath.K(name))
	if !ok {
		return nil, false
	}
	return AsFunc(v)
}

// HasMethod reports whether Invoke would find name on target.
func HasMethod(target Container, name string) bool {
	if _, ok := Method(target, name); ok {
		return true
	}
	return builtinMethods[target.Kind()][name] || objectMethods[name]
}

// AsFunc converts a callable value to a Func.
func AsFunc(v any) (Func, bool) {
	switch f := v.(type) {
	case Func:
		return f, f != nil
	case func(any, []any) any:
		return Func(f), f != nil
	}
	return nil, false
}

// Truthy reports JavaScript truthiness.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil, UndefinedType:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if f, ok := toNumber(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

func nameSet(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

var objectMethods = nameSet("hasOwnProperty", "isPrototypeOf", "propertyIsEnumerable", "toLocaleString", "toString", "valueOf")

var builtinMethods = map[Kind]map[string]bool{
	KindArray: nameSet("push", "pop", "shift", "unshift", "splice", "reverse", "sort", "fill", "copyWithin", "flat",
		"concat", "includes", "indexOf", "lastIndexOf", "join", "keys", "values", "entries", "slice", "at",
		"forEach", "map", "filter", "find", "findIndex", "some", "every", "reduce"),
	KindDate: nameSet("getTime", "setTime", "getFullYear", "setFullYear", "getMonth", "setMonth", "getDate", "setDate",
		"getDay", "getHours", "setHours", "getMinutes", "setMinutes", "getSeconds", "setSeconds",
		"getMilliseconds", "setMilliseconds", "toISOString", "toJSON"),
	KindSet:     nameSet("add", "has", "delete", "clear", "forEach", "keys", "values", "entries"),
	KindMap:     nameSet("get", "set", "has", "delete", "clear", "forEach", "keys", "values", "entries"),
	KindWeakSet: nameSet("add", "has", "delete"),
	KindWeakMap: nameSet("get", "set", "has", "delete"),
	KindBytes: nameSet("fill", "set", "copyWithin", "reverse", "sort", "subarray", "slice", "join", "includes",
		"indexOf", "at", "keys", "values", "entries"),
}

func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return Undefined
}

func intArg(args []any, i, def int) int {
	if i >= len(args) || IsUndefined(args[i]) {
		return def
	}
	return ToInt(args[i], def)
}

func invokeObject(target Container, name string, args []any) (any, bool) {
	switch name {
	case "hasOwnProperty":
		return target.HasOwn(keypath.KeyOf(arg(args, 0))), true
	case "propertyIsEnumerable":
		d, ok := target.OwnDescriptor(keypath.KeyOf(arg(args, 0)))
		return ok && d.Enumerable, true
	case "isPrototypeOf":
		return false, true
	case "toString", "toLocaleString":
		return ToString(target), true
	case "valueOf":
		if d, ok := target.(*Date); ok {
			return d.Millis(), true
		}
		return target, true
	}
	return nil, false
}

// arrayView returns the container array elements are read through.
func arrayView(a *Array, this any) Container {
	if c, ok := this.(Container); ok && c.Kind() == KindArray {
		return c
	}
	return a
}

func viewLen(c Container) int {
	n, _ := c.GetOwn(lengthKey)
	return ToInt(n, 0)
}

func invokeArray(a *Array, this any, name string, args []any) (any, bool) {
	n := len(a.elems)
	switch name {
	case "push":
		return a.Push(args...), true
	case "pop":
		return a.Pop(), true
	case "shift":
		return a.Shift(), true
	case "unshift":
		return a.Unshift(args...), true
	case "splice":
		if len(args) == 0 {
			return NewArray(), true
		}
		count := -1
		if len(args) > 1 {
			count = max(ToInt(args[1], 0), 0)
		}
		var items []any
		if len(args) > 2 {
			items = args[2:]
		}
		return a.Splice(ToInt(args[0], 0), count, items...), true
	case "reverse":
		return a.Reverse(), true
	case "sort":
		var compare func(x, y any) int
		if fn, ok := AsFunc(arg(args, 0)); ok {
			compare = func(x, y any) int {
				f, _ := toNumber(fn(nil, []any{x, y}))
				switch {
				case f < 0:
					return -1
				case f > 0:
					return 1
				}
				return 0
			}
		}
		return a.Sort(compare), true
	case "fill":
		return a.Fill(arg(args, 0), intArg(args, 1, 0), intArg(args, 2, n)), true
	case "copyWithin":
		return a.CopyWithin(intArg(args, 0, 0), intArg(args, 1, 0), intArg(args, 2, n)), true
	case "flat":
		return a.Flat(intArg(args, 0, 1)), true
	case "concat":
		return a.Concat(args...), true
	case "includes":
		return a.Includes(arg(args, 0)), true
	case "indexOf":
		return a.IndexOf(arg(args, 0), intArg(args, 1, 0)), true
	case "lastIndexOf":
		return a.LastIndexOf(arg(args, 0)), true
	case "join":
		sep := ","
		if s, ok := arg(args, 0).(string); ok {
			sep = s
		}
		return a.Join(sep), true
	case "slice":
		start, end := relIndex(intArg(args, 0, 0), n), relIndex(intArg(args, 1, n), n)
		if end < start {
			end = start
		}
		return NewArray(append([]any(nil), a.elems[start:end]...)...), true
	}
	view := arrayView(a, this)
	at := func(i int) any {
		v, _ := view.GetOwn(keypath.Idx(i))
		return v
	}
	switch name {
	case "keys", "values", "entries":
		return sliceIterator(name, func() int { return viewLen(view) }, at), true
	case "at":
		i := intArg(args, 0, 0)
		if i < 0 {
			i += viewLen(view)
		}
		if i < 0 || i >= viewLen(view) {
			return Undefined, true
		}
		return at(i), true
	case "reduce":
		fn, ok := AsFunc(arg(args, 0))
		if !ok {
			return nil, false
		}
		i, acc := 0, arg(args, 1)
		if len(args) < 2 {
			if viewLen(view) == 0 {
				return Undefined, true
			}
			i, acc = 1, at(0)
		}
		for ; i < viewLen(view); i++ {
			if view.HasOwn(keypath.Idx(i)) {
				acc = fn(nil, []any{acc, at(i), i, view})
			}
		}
		return acc, true
	}
	fn, ok := AsFunc(arg(args, 0))
	if !ok {
		return nil, false
	}
	thisArg := arg(args, 1)
	each := func(visit func(i int, v, r any) bool) {
		for i := 0; i < viewLen(view); i++ {
			if !view.HasOwn(keypath.Idx(i)) {
				continue
			}
			v := at(i)
			if !visit(i, v, fn(thisArg, []any{v, i, view})) {
				return
			}
		}
	}
	switch name {
	case "forEach":
		each(func(int, any, any) bool { return true })
		return Undefined, true
	case "map":
		out := NewArray()
		each(func(i int, _, r any) bool { out.SetOwn(keypath.Idx(i), r); return true })
		return out, true
	case "filter":
		out := NewArray()
		each(func(_ int, v, r any) bool {
			if Truthy(r) {
				out.Push(v)
			}
			return true
		})
		return out, true
	case "find", "findIndex":
		var found any = Undefined
		idx := -1
		each(func(i int, v, r any) bool {
			if Truthy(r) {
				found, idx = v, i
				return false
			}
			return true
		})
		if name == "findIndex" {
			return idx, true
		}
		return found, true
	case "some":
		hit := false
		each(func(_ int, _, r any) bool { hit = Truthy(r); return !hit })
		return hit, true
	case "every":
		all := true
		each(func(_ int, _, r any) bool { all = Truthy(r); return all })
		return all, true
	}
	return nil, false
}

func dateField(args []any, i int) *int {
	if i >= len(args) || IsUndefined(args[i]) {
		return nil
	}
	v := ToInt(args[i], 0)
	return &v
}

func invokeDate(d *Date, name string, args []any) (any, bool) {
	if strings.HasPrefix(name, "get") && name != "getTime" && !d.Valid() {
		if builtinMethods[KindDate][name] {
			return math.NaN(), true
		}
		return nil, false
	}
	t := d.Time()
	switch name {
	case "getTime":
		return d.Millis(), true
	case "setTime":
		f, ok := toNumber(arg(args, 0))
		if !ok {
			f = math.NaN()
		}
		return d.SetMillis(f), true
	case "getFullYear":
		return t.Year(), true
	case "getMonth":
		return int(t.Month()) - 1, true
	case "getDate":
		return t.Day(), true
	case "getDay":
		return int(t.Weekday()), true
	case "getHours":
		return t.Hour(), true
	case "getMinutes":
		return t.Minute(), true
	case "getSeconds":
		return t.Second(), true
	case "getMilliseconds":
		return t.Nanosecond() / 1e6, true
	case "setFullYear":
		return d.setFields(dateField(args, 0), dateField(args, 1), dateField(args, 2), nil, nil, nil, nil), true
	case "setMonth":
		return d.setFields(nil, dateField(args, 0), dateField(args, 1), nil, nil, nil, nil), true
	case "setDate":
		return d.setFields(nil, nil, dateField(args, 0), nil, nil, nil, nil), true
	case "setHours":
		return d.setFields(nil, nil, nil, dateField(args, 0), dateField(args, 1), dateField(args, 2), dateField(args, 3)), true
	case "setMinutes":
		return d.setFields(nil, nil, nil, nil, dateField(args, 0), dateField(args, 1), dateField(args, 2)), true
	case "setSeconds":
		return d.setFields(nil, nil, nil, nil, nil, dateField(args, 0), dateField(args, 1)), true
	case "setMilliseconds":
		return d.setFields(nil, nil, nil, nil, nil, nil, dateField(args, 0)), true
	case "toISOString", "toJSON":
		return d.ISOString(), true
	}
	return nil, false
}

func forEachEntry(fn Func, thisArg any, coll Container, entries func(yield func(k, v any))) {
	entries(func(k, v any) { fn(thisArg, []any{v, k, coll}) })
}

func invokeSet(s *Set, name string, args []any) (any, bool) {
	switch name {
	case "add":
		return s.Add(arg(args, 0)), true
	case "has":
		return s.Has(arg(args, 0)), true
	case "delete":
		return s.Delete(arg(args, 0)), true
	case "clear":
		s.Clear()
		return Undefined, true
	case "forEach":
		fn, ok := AsFunc(arg(args, 0))
		if !ok {
			return nil, false
		}
		forEachEntry(fn, arg(args, 1), s, func(yield func(k, v any)) {
			it := s.iterate("values")
			for v, ok := it.Next(); ok; v, ok = it.Next() {
				yield(v, v)
			}
		})
		return Undefined, true
	case "keys", "values", "entries":
		return s.iterate(name), true
	}
	return nil, false
}

func invokeMap(m *Map, name string, args []any) (any, bool) {
	switch name {
	case "get":
		v, ok := m.Get(arg(args, 0))
		if !ok {
			return Undefined, true
		}
		return v, true
	case "set":
		return m.Set(arg(args, 0), arg(args, 1)), true
	case "has":
		return m.Has(arg(args, 0)), true
	case "delete":
		return m.Delete(arg(args, 0)), true
	case "clear":
		m.Clear()
		return Undefined, true
	case "forEach":
		fn, ok := AsFunc(arg(args, 0))
		if !ok {
			return nil, false
		}
		forEachEntry(fn, arg(args, 1), m, func(yield func(k, v any)) {
			it := m.iterate("entries")
			for e, ok := it.Next(); ok; e, ok = it.Next() {
				yield(e.(Entry).Key, e.(Entry).Value)
			}
		})
		return Undefined, true
	case "keys", "values", "entries":
		return m.iterate(name), true
	}
	return nil, false
}

func invokeWeakSet(s *WeakSet, name string, args []any) (any, bool) {
	switch name {
	case "add":
		return s.Add(arg(args, 0)), true
	case "has":
		return s.Has(arg(args, 0)), true
	case "delete":
		return s.Delete(arg(args, 0)), true
	}
	return nil, false
}

func invokeWeakMap(m *WeakMap, name string, args []any) (any, bool) {
	switch name {
	case "get":
		v, ok := m.Get(arg(args, 0))
		if !ok {
			return Undefined, true
		}
		return v, true
	case "set":
		return m.Set(arg(args, 0), arg(args, 1)), true
	case "has":
		return m.Has(arg(args, 0)), true
	case "delete":
		return m.Delete(arg(args, 0)), true
	}
	return nil, false
}

func invokeBytes(b *Bytes, name string, args []any) (any, bool) {
	n := len(b.buf)
	switch name {
	case "fill":
		return b.Fill(arg(args, 0), intArg(args, 1, 0), intArg(args, 2, n)), true
	case "set":
		return Undefined, b.SetFrom(arg(args, 0), intArg(args, 1, 0))
	case "copyWithin":
		return b.CopyWithin(intArg(args, 0, 0), intArg(args, 1, 0), intArg(args, 2, n)), true
	case "reverse":
		return b.Reverse(), true
	case "sort":
		return b.Sort(), true
	case "subarray":
		return b.Subarray(intArg(args, 0, 0), intArg(args, 1, n)), true
	case "slice":
		return b.Slice(intArg(args, 0, 0), intArg(args, 1, n)), true
	case "join":
		sep := ","
		if s, ok := arg(args, 0).(string); ok {
			sep = s
		}
		return b.Join(sep), true
	case "includes":
		return b.IndexOf(arg(args, 0)) >= 0, true
	case "indexOf":
		return b.IndexOf(arg(args, 0)), true
	case "at":
		i := intArg(args, 0, 0)
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return Undefined, true
		}
		return int(b.buf[i]), true
	case "keys", "values", "entries":
		return sliceIterator(name, func() int { return len(b.buf) }, func(i int) any { return int(b.buf[i]) }), true
	}
	return nil, false
}
