package deepwatch_test

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/deepwatch"
	"github.com/reoring/deepwatch/keypath"
	"github.com/reoring/deepwatch/value"
)

type event struct {
	path     string
	value    any
	previous any
	apply    *deepwatch.ApplyData
}

type sink struct{ events []event }

func (s *sink) onChange(p keypath.Path, v, prev any, apply *deepwatch.ApplyData) {
	s.events = append(s.events, event{path: p.String(), value: v, previous: prev, apply: apply})
}

func observe(t *testing.T, root value.Container, opts deepwatch.Options) (*deepwatch.Proxy, *sink) {
	t.Helper()
	s := &sink{}
	obj := deepwatch.Observe(root, s.onChange, opts)
	require.NotNil(t, obj)
	return obj, s
}

func proxy(t *testing.T, v any) *deepwatch.Proxy {
	t.Helper()
	p, ok := v.(*deepwatch.Proxy)
	require.Truef(t, ok, "expected *deepwatch.Proxy, got %T", v)
	return p
}

func TestNestedWriteReportsFullPath(t *testing.T) {
	obj, s := observe(t, value.ObjectOf("a", value.ObjectOf("b", 1.0)), deepwatch.Options{})

	require.True(t, proxy(t, obj.Get("a")).Set("b", 2.0))

	require.Len(t, s.events, 1)
	assert.Equal(t, "a.b", s.events[0].path)
	assert.Equal(t, 2.0, s.events[0].value)
	assert.Equal(t, 1.0, s.events[0].previous)
	assert.Nil(t, s.events[0].apply)
}

func TestPushIsOneChange(t *testing.T) {
	list := value.NewArray(1.0, 2.0, 3.0)
	obj, s := observe(t, value.ObjectOf("list", list), deepwatch.Options{})

	got := proxy(t, obj.Get("list")).Call("push", 4.0)
	assert.Equal(t, 4, got)

	require.Len(t, s.events, 1)
	ev := s.events[0]
	assert.Equal(t, "list", ev.path)
	assert.Same(t, list, ev.value)
	assert.Equal(t, []any{1.0, 2.0, 3.0, 4.0}, list.Elements())
	prev, ok := ev.previous.(*value.Array)
	require.True(t, ok)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, prev.Elements())
	require.NotNil(t, ev.apply)
	assert.Equal(t, "push", ev.apply.Name)
	assert.Equal(t, []any{4.0}, ev.apply.Args)
	assert.Equal(t, 4, ev.apply.Result)
}

func TestRejectedPushIsRolledBack(t *testing.T) {
	list := value.NewArray(1.0, 2.0, 3.0)
	obj, s := observe(t, value.ObjectOf("list", list), deepwatch.Options{
		OnValidate: func(_ keypath.Path, _, _ any, apply *deepwatch.ApplyData) bool {
			return apply == nil || apply.Name != "push"
		},
	})

	proxy(t, obj.Get("list")).Call("push", 4.0)

	assert.Empty(t, s.events)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, list.Elements())
}

func TestMapSetSameValueIsSilent(t *testing.T) {
	m := value.NewMap(value.Entry{Key: "k", Value: "v"})
	obj, s := observe(t, value.ObjectOf("m", m), deepwatch.Options{})

	mp := proxy(t, obj.Get("m"))
	got := mp.Call("set", "k", "v")

	assert.Empty(t, s.events)
	assert.Same(t, mp, got)

	mp.Call("set", "k", "w")
	require.Len(t, s.events, 1)
	assert.Equal(t, "m", s.events[0].path)
	assert.Equal(t, "set", s.events[0].apply.Name)
}

func TestCycleResolvesToRootWrapper(t *testing.T) {
	obj, s := observe(t, value.ObjectOf("x", value.NewObject()), deepwatch.Options{})

	x := proxy(t, obj.Get("x"))
	require.True(t, x.Set("y", obj))
	require.Len(t, s.events, 1)
	assert.Equal(t, "x.y", s.events[0].path)

	cur := any(obj)
	for range 50 {
		cur = proxy(t, proxy(t, cur).Get("x")).Get("y")
		assert.LessOrEqual(t, proxy(t, cur).Path().Len(), 2)
	}
	y := proxy(t, cur)
	assert.Same(t, obj, y)
	assert.Zero(t, y.Path().Len())
	assert.Same(t, x, y.Get("x"))
	assert.Equal(t, "x", x.Path().String())

	require.True(t, obj.Set("z", 1.0))
	require.Len(t, s.events, 2)
	assert.Equal(t, "z", s.events[1].path)
}

func TestRootPathSurvivesBackReferenceReads(t *testing.T) {
	root := value.ObjectOf("x", value.NewObject())
	obj, s := observe(t, root, deepwatch.Options{})

	x := proxy(t, obj.Get("x"))
	require.True(t, x.Set("y", root))
	back := proxy(t, x.Get("y"))
	assert.Same(t, obj, back)
	assert.Zero(t, obj.Path().Len())

	require.True(t, back.Set("z", 1.0))
	x.Set("w", 2.0)
	require.Len(t, s.events, 3)
	assert.Equal(t, "z", s.events[1].path)
	assert.Equal(t, "x.w", s.events[2].path)
}

func TestDeletedSubtreeKeepsItsLastPath(t *testing.T) {
	root := value.ObjectOf("a", value.ObjectOf("b", 1.0), "b", 5.0)
	obj, s := observe(t, root, deepwatch.Options{})

	a := proxy(t, obj.Get("a"))
	require.True(t, obj.Delete("a"))
	require.True(t, a.Set("b", 2.0))

	require.Len(t, s.events, 2)
	assert.Equal(t, "a", s.events[0].path)
	assert.Equal(t, "a.b", s.events[1].path)
	assert.Equal(t, 2.0, s.events[1].value)
	assert.Equal(t, 1.0, s.events[1].previous)
	assert.Equal(t, "a", a.Path().String())
	assert.Equal(t, 5.0, root.Get("b"))

	obj, s = observe(t, value.ObjectOf("a", value.ObjectOf("b", 1.0)), deepwatch.Options{IgnoreDetached: true})
	a = proxy(t, obj.Get("a"))
	obj.Delete("a")
	a.Set("b", 2.0)
	assert.Len(t, s.events, 1)
}

func TestIdentityStability(t *testing.T) {
	obj, _ := observe(t, value.ObjectOf("a", value.ObjectOf("b", value.NewArray())), deepwatch.Options{})

	a1 := obj.Get("a")
	a2 := obj.Get("a")
	assert.Same(t, a1, a2)
	assert.Same(t, proxy(t, a1).Get("b"), proxy(t, a2).Get("b"))
}

func TestConcurrentReadsShareOneWrapper(t *testing.T) {
	obj, _ := observe(t, value.ObjectOf("a", value.NewObject()), deepwatch.Options{})

	const n = 16
	got := make([]any, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = obj.Get("a")
		}()
	}
	wg.Wait()
	for _, g := range got {
		assert.Same(t, got[0], g)
	}
}

func TestEqualWriteIsSilent(t *testing.T) {
	obj, s := observe(t, value.ObjectOf("a", 1.0), deepwatch.Options{})

	assert.True(t, obj.Set("a", 1.0))
	assert.Empty(t, s.events)

	assert.True(t, obj.Set("b", value.Undefined))
	require.Len(t, s.events, 1, "creating a property is a change even when the value matches")
	assert.True(t, value.IsUndefined(s.events[0].previous))
}

func TestCustomEquals(t *testing.T) {
	obj, s := observe(t, value.ObjectOf("a", 0.0), deepwatch.Options{Equals: value.StrictEqual})

	obj.Set("a", math.Copysign(0, -1))
	assert.Empty(t, s.events)

	obj, s = observe(t, value.ObjectOf("a", 0.0), deepwatch.Options{})
	obj.Set("a", math.Copysign(0, -1))
	assert.Len(t, s.events, 1)
}

func TestBatchedMutatorsReportArgsAndSnapshot(t *testing.T) {
	list := value.NewArray(1.0, 2.0, 3.0)
	obj, s := observe(t, value.ObjectOf("list", list), deepwatch.Options{})

	proxy(t, obj.Get("list")).Call("push", 4.0, 5.0, 6.0)

	require.Len(t, s.events, 1)
	assert.Equal(t, []any{4.0, 5.0, 6.0}, s.events[0].apply.Args)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, s.events[0].previous.(*value.Array).Elements())
}

func TestRejectedSpliceRestoresArray(t *testing.T) {
	list := value.NewArray("a", "b", "c")
	obj, s := observe(t, value.ObjectOf("list", list), deepwatch.Options{
		OnValidate: func(keypath.Path, any, any, *deepwatch.ApplyData) bool { return false },
	})

	proxy(t, obj.Get("list")).Call("splice", 0.0, 2.0, "z")

	assert.Empty(t, s.events)
	assert.Equal(t, []any{"a", "b", "c"}, list.Elements())
}

func TestSpliceClampsOutOfRangeArguments(t *testing.T) {
	list := value.NewArray(1.0, 2.0, 3.0)
	obj, s := observe(t, value.ObjectOf("list", list), deepwatch.Options{})
	l := proxy(t, obj.Get("list"))

	removed := l.Call("splice", 1.0, math.Inf(1))
	assert.Equal(t, []any{2.0, 3.0}, removed.(*value.Array).Elements())
	assert.Equal(t, []any{1.0}, list.Elements())
	require.Len(t, s.events, 1)
	assert.Equal(t, "splice", s.events[0].apply.Name)

	list.Replace([]any{1.0, 2.0, 3.0})
	l.Call("splice", 0.0, 1e300)
	assert.Zero(t, list.Len())

	list.Replace([]any{1.0, 2.0, 3.0})
	l.Call("splice", -1e300, -5.0, "x")
	assert.Equal(t, []any{"x", 1.0, 2.0, 3.0}, list.Elements())

	l.Call("fill", 0.0, math.Inf(-1), 1e300)
	assert.Equal(t, []any{0.0, 0.0, 0.0, 0.0}, list.Elements())

	list.Replace([]any{1.0, 2.0, 3.0, 4.0})
	l.Call("copyWithin", 1e300, -2.0)
	l.Call("copyWithin", -10.0, 2.0, math.Inf(1))
	assert.Equal(t, []any{3.0, 4.0, 3.0, 4.0}, list.Elements())
}

func TestSortWithoutChangeIsSilent(t *testing.T) {
	obj, s := observe(t, value.ObjectOf("list", value.NewArray(1.0, 2.0, 3.0)), deepwatch.Options{})
	l := proxy(t, obj.Get("list"))

	assert.Same(t, l, l.Call("sort"))
	assert.Empty(t, s.events)

	desc := value.Func(func(_ any, args []any) any { return args[1].(float64) - args[0].(float64) })
	l.Call("sort", desc)
	require.Len(t, s.events, 1)
	assert.Equal(t, "sort", s.events[0].apply.Name)
	assert.Equal(t, []any{3.0, 2.0, 1.0}, deepwatch.Target(l).(*value.Array).Elements())
}

func TestUnknownMethodReturnsNil(t *testing.T) {
	obj, s := observe(t, value.ObjectOf("a", 1.0), deepwatch.Options{})

	assert.Nil(t, obj.Call("nope"))
	assert.Equal(t, true, obj.Call("hasOwnProperty", "a"))
	assert.Empty(t, s.events)
}

func TestDefineAndDelete(t *testing.T) {
	root := value.NewObject()
	obj, s := observe(t, root, deepwatch.Options{})

	require.True(t, obj.Define("a", value.Data(1.0)))
	require.True(t, obj.Define("a", value.Data(1.0)))
	require.Len(t, s.events, 1)
	assert.Equal(t, "a", s.events[0].path)
	assert.True(t, value.IsUndefined(s.events[0].previous))

	d := value.Data(1.0)
	d.Enumerable = false
	require.True(t, obj.Define("a", d))
	require.Len(t, s.events, 2)

	require.True(t, obj.Delete("missing"))
	require.Len(t, s.events, 2)

	require.True(t, obj.Delete("a"))
	require.Len(t, s.events, 3)
	assert.True(t, value.IsUndefined(s.events[2].value))
	assert.Equal(t, 1.0, s.events[2].previous)
	assert.False(t, root.HasOwn(keypath.K("a")))
}

func TestRejectedWritesLeaveValueUntouched(t *testing.T) {
	root := value.ObjectOf("a", 1.0, "b", 2.0)
	obj, s := observe(t, root, deepwatch.Options{
		OnValidate: func(p keypath.Path, _, _ any, _ *deepwatch.ApplyData) bool { return p.String() != "a" },
	})

	assert.False(t, obj.Set("a", 5.0))
	assert.False(t, obj.Delete("a"))
	assert.False(t, obj.Define("a", value.Data(7.0)))
	assert.Equal(t, 1.0, root.Get("a"))

	assert.True(t, obj.Set("b", 3.0))
	require.Len(t, s.events, 1)
	assert.Equal(t, "b", s.events[0].path)
}

func TestInvariantPropertiesReadRaw(t *testing.T) {
	inner := value.NewObject()
	root := value.NewObject()
	require.True(t, root.DefineOwn(keypath.K("fixed"), value.Descriptor{Value: inner, Enumerable: true}))
	obj, _ := observe(t, root, deepwatch.Options{})

	assert.Same(t, inner, obj.Get("fixed"))
}

func TestShallowReadsAreRaw(t *testing.T) {
	inner := value.NewObject()
	obj, s := observe(t, value.ObjectOf("a", inner), deepwatch.Options{IsShallow: true})

	assert.Same(t, inner, obj.Get("a"))
	obj.Set("b", 1.0)
	assert.Len(t, s.events, 1)
}

func TestPathAsArray(t *testing.T) {
	var got keypath.Path
	obj := deepwatch.Observe(value.ObjectOf("a.b", value.NewObject()), func(p keypath.Path, _, _ any, _ *deepwatch.ApplyData) {
		got = p
	}, deepwatch.Options{PathAsArray: true})

	proxy(t, obj.Get("a.b")).Set("c", 1.0)

	require.NotNil(t, got)
	assert.Equal(t, keypath.Keys("a.b", "c"), got.Keys())
}

func TestIgnoreRules(t *testing.T) {
	sym := keypath.NewSymbol("meta")
	inner := value.NewObject()
	root := value.ObjectOf("_hidden", inner)
	obj, s := observe(t, root, deepwatch.Options{
		IgnoreSymbols:     true,
		IgnoreUnderscores: true,
		IgnoreKeys:        keypath.Keys("secret"),
	})

	assert.True(t, obj.Set("_private", 1.0))
	assert.True(t, obj.Set("secret", 2.0))
	assert.True(t, obj.Set(sym, 3.0))
	assert.Empty(t, s.events)
	assert.Equal(t, 1.0, root.Get("_private"))
	assert.Equal(t, 2.0, root.Get("secret"))

	assert.Same(t, inner, obj.Get("_hidden"))

	obj.Set("visible", 4.0)
	require.Len(t, s.events, 1)
}

func TestIgnoreDetached(t *testing.T) {
	build := func() value.Container {
		return value.ObjectOf("list", value.NewArray(value.ObjectOf("n", 1.0), value.ObjectOf("n", 2.0)))
	}

	obj, s := observe(t, build(), deepwatch.Options{IgnoreDetached: true})
	list := proxy(t, obj.Get("list"))
	first := proxy(t, list.Index(0))
	list.Call("shift")
	require.Len(t, s.events, 1)
	first.Set("n", 5.0)
	assert.Len(t, s.events, 1)

	obj, s = observe(t, build(), deepwatch.Options{})
	list = proxy(t, obj.Get("list"))
	first = proxy(t, list.Index(0))
	list.Call("shift")
	first.Set("n", 5.0)
	require.Len(t, s.events, 2)
	assert.Equal(t, "list.0.n", s.events[1].path)
}

func TestNestedCallsFoldIntoOuterChange(t *testing.T) {
	add := value.Func(func(this any, args []any) any {
		p := this.(*deepwatch.Proxy)
		p.Get("items").(*deepwatch.Proxy).Call("push", args[0])
		p.Set("count", p.Get("count").(float64)+1)
		return nil
	})
	root := value.ObjectOf("items", value.NewArray(), "count", 0.0, "add", add)
	obj, s := observe(t, root, deepwatch.Options{})

	obj.Call("add", "x")

	require.Len(t, s.events, 1)
	ev := s.events[0]
	assert.Equal(t, "", ev.path)
	assert.Equal(t, "add", ev.apply.Name)
	prev := ev.previous.(*value.Object)
	assert.Equal(t, 0.0, prev.Get("count"))
	assert.Equal(t, 0, prev.Get("items").(*value.Array).Len())
	assert.Equal(t, 1.0, root.Get("count"))
	assert.Equal(t, 1, root.Get("items").(*value.Array).Len())
}

func TestArrayCallbacksSeeWrappedElements(t *testing.T) {
	list := value.NewArray(value.ObjectOf("n", 1.0), value.ObjectOf("n", 2.0))
	obj, s := observe(t, value.ObjectOf("list", list), deepwatch.Options{})

	reset := value.Func(func(_ any, args []any) any {
		return args[0].(*deepwatch.Proxy).Set("n", 0.0)
	})
	proxy(t, obj.Get("list")).Call("forEach", reset)

	require.Len(t, s.events, 1)
	ev := s.events[0]
	assert.Equal(t, "list", ev.path)
	assert.Equal(t, "forEach", ev.apply.Name)
	prev := ev.previous.(*value.Array)
	assert.Equal(t, 1.0, prev.At(0).(*value.Object).Get("n"))
	assert.Equal(t, 2.0, prev.At(1).(*value.Object).Get("n"))
	assert.Equal(t, 0.0, list.At(0).(*value.Object).Get("n"))
}

func TestRejectedCustomCallIsUndone(t *testing.T) {
	root := value.ObjectOf("a", 1.0, "b", 2.0)
	root.Set("swap", value.Func(func(this any, _ []any) any {
		p := this.(*deepwatch.Proxy)
		a, b := p.Get("a"), p.Get("b")
		p.Set("a", b)
		p.Set("b", a)
		return nil
	}))
	obj, s := observe(t, root, deepwatch.Options{
		OnValidate: func(_ keypath.Path, _, _ any, apply *deepwatch.ApplyData) bool { return apply == nil },
	})

	obj.Call("swap")

	assert.Empty(t, s.events)
	assert.Equal(t, 1.0, root.Get("a"))
	assert.Equal(t, 2.0, root.Get("b"))
}

func TestDetailsReportFieldsIndividually(t *testing.T) {
	list := value.NewArray(1.0, 2.0, 3.0)
	obj, s := observe(t, value.ObjectOf("list", list), deepwatch.Options{Details: deepwatch.DetailsFor("push", "pop")})
	l := proxy(t, obj.Get("list"))

	assert.Equal(t, 4, l.Call("push", 4.0))
	require.Len(t, s.events, 1)
	assert.Equal(t, "list.3", s.events[0].path)
	assert.Equal(t, 4.0, s.events[0].value)
	assert.True(t, value.IsUndefined(s.events[0].previous))
	assert.Nil(t, s.events[0].apply)

	s.events = nil
	l.Call("pop")
	require.Len(t, s.events, 2)
	assert.Equal(t, "list.3", s.events[0].path)
	assert.True(t, value.IsUndefined(s.events[0].value))
	assert.Equal(t, "list.length", s.events[1].path)
	assert.Equal(t, 3, s.events[1].value)
	assert.Equal(t, 4, s.events[1].previous)

	s.events = nil
	l.Call("reverse")
	require.Len(t, s.events, 1)
	assert.Equal(t, "list", s.events[0].path)
	assert.Equal(t, "reverse", s.events[0].apply.Name)
}

func TestRejectedDetailedPushLeavesArrayUntouched(t *testing.T) {
	list := value.NewArray(1.0, 2.0)
	obj, s := observe(t, value.ObjectOf("list", list), deepwatch.Options{
		Details:    deepwatch.DetailsFor("push"),
		OnValidate: func(keypath.Path, any, any, *deepwatch.ApplyData) bool { return false },
	})

	proxy(t, obj.Get("list")).Call("push", 3.0)

	assert.Empty(t, s.events)
	assert.Equal(t, []any{1.0, 2.0}, list.Elements())
	assert.Equal(t, 2, list.Len())
}

func TestDetailedPushKeepsAcceptedSlots(t *testing.T) {
	list := value.NewArray(1.0, 2.0)
	obj, s := observe(t, value.ObjectOf("list", list), deepwatch.Options{
		Details: deepwatch.DetailsFor("push"),
		OnValidate: func(p keypath.Path, _, _ any, _ *deepwatch.ApplyData) bool {
			return p.String() != "list.3"
		},
	})

	proxy(t, obj.Get("list")).Call("push", 3.0, 4.0)

	require.Len(t, s.events, 1)
	assert.Equal(t, "list.2", s.events[0].path)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, list.Elements())
}

func TestDescriptorsFollowBuiltinMutations(t *testing.T) {
	list := value.NewArray(1.0, 2.0, 3.0)
	obj, _ := observe(t, value.ObjectOf("list", list), deepwatch.Options{})
	l := proxy(t, obj.Get("list"))

	assert.Equal(t, 3.0, l.Index(2))
	_, ok := l.OwnDescriptor(keypath.Idx(2))
	require.True(t, ok)

	l.Call("pop")
	_, ok = l.OwnDescriptor(keypath.Idx(2))
	assert.False(t, ok)
	_, raw := list.OwnDescriptor(keypath.Idx(2))
	assert.False(t, raw)
	assert.False(t, l.Has(2))
	assert.Equal(t, 2, l.Len())
}

func TestDescriptorsFollowUndoneCalls(t *testing.T) {
	list := value.NewArray(1.0, 2.0, 3.0)
	obj, _ := observe(t, value.ObjectOf("list", list), deepwatch.Options{
		OnValidate: func(keypath.Path, any, any, *deepwatch.ApplyData) bool { return false },
	})
	l := proxy(t, obj.Get("list"))

	l.Index(2)
	l.Call("pop")
	d, ok := l.OwnDescriptor(keypath.Idx(2))
	require.True(t, ok)
	assert.Equal(t, 3.0, d.Value)
}

func TestDetailsAllOnCollections(t *testing.T) {
	obj, s := observe(t, value.ObjectOf("s", value.NewSet()), deepwatch.Options{Details: deepwatch.DetailsAll()})

	proxy(t, obj.Get("s")).Call("add", 1.0)

	require.Len(t, s.events, 1)
	assert.Equal(t, "s", s.events[0].path)
	assert.Nil(t, s.events[0].apply)
}

func TestCollectionIteratorsWrapLazily(t *testing.T) {
	entry := value.ObjectOf("v", 1.0)
	m := value.NewMap(value.Entry{Key: "a", Value: entry})
	obj, s := observe(t, value.ObjectOf("m", m), deepwatch.Options{})
	mp := proxy(t, obj.Get("m"))

	it, ok := mp.Call("values").(*deepwatch.Iterator)
	require.True(t, ok)
	assert.Equal(t, "values", it.Name())
	v, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, "m.a", proxy(t, v).Path().String())
	_, ok = it.Next()
	assert.False(t, ok)

	entries := mp.Call("entries").(*deepwatch.Iterator)
	var seen []any
	for e := range entries.All() {
		seen = append(seen, e)
	}
	require.Len(t, seen, 1)
	pair := seen[0].(value.Entry)
	assert.Equal(t, "a", pair.Key)
	assert.Equal(t, "m.a", proxy(t, pair.Value).Path().String())

	got := proxy(t, mp.Call("get", "a"))
	got.Set("v", 2.0)
	require.Len(t, s.events, 1)
	assert.Equal(t, "m.a.v", s.events[0].path)
}

func TestDateWeakAndBytesCalls(t *testing.T) {
	member := value.NewObject()
	root := value.ObjectOf(
		"when", value.DateFromMillis(1000),
		"seen", value.NewWeakSet(),
		"buf", value.NewBytes([]byte{1, 2, 3}),
	)
	obj, s := observe(t, root, deepwatch.Options{})

	when := proxy(t, obj.Get("when"))
	when.Call("setTime", 1000.0)
	assert.Empty(t, s.events)
	when.Call("setTime", 2000.0)
	require.Len(t, s.events, 1)
	assert.Equal(t, "when", s.events[0].path)
	assert.Equal(t, 1000.0, s.events[0].previous.(*value.Date).Millis())

	seen := proxy(t, obj.Get("seen"))
	seen.Call("add", member)
	seen.Call("add", member)
	require.Len(t, s.events, 2)
	assert.Equal(t, "seen", s.events[1].path)
	assert.Equal(t, true, seen.Call("has", member))

	buf := proxy(t, obj.Get("buf"))
	buf.Call("join", "-")
	require.Len(t, s.events, 2)
	buf.Call("fill", 7.0)
	require.Len(t, s.events, 3)
	assert.Equal(t, []byte{7, 7, 7}, root.Get("buf").(*value.Bytes).Bytes())
	assert.Equal(t, []byte{1, 2, 3}, s.events[2].previous.(*value.Bytes).Bytes())
}

func TestReentrantChangesAreDeliveredInOrder(t *testing.T) {
	var paths []string
	var obj *deepwatch.Proxy
	obj = deepwatch.Observe(value.NewObject(), func(p keypath.Path, _, _ any, _ *deepwatch.ApplyData) {
		paths = append(paths, p.String())
		if p.String() == "a" {
			obj.Set("b", 1.0)
		}
	}, deepwatch.Options{})

	obj.Set("a", 1.0)
	obj.Set("c", 1.0)

	assert.Equal(t, []string{"a", "b", "c"}, paths)
}

func TestTeardown(t *testing.T) {
	root := value.ObjectOf("a", value.ObjectOf("b", 1.0), "list", value.NewArray())
	obj, s := observe(t, root, deepwatch.Options{})
	a := proxy(t, obj.Get("a"))
	list := proxy(t, obj.Get("list"))

	assert.True(t, value.IsUndefined(a.Get(deepwatch.UnsubscribeToken)), "non-root teardown is a plain read")
	a.Set("b", 2.0)
	require.Len(t, s.events, 1)

	assert.Same(t, root, deepwatch.Unsubscribe(obj))
	assert.Same(t, root, deepwatch.Unsubscribe(obj))

	a.Set("b", 3.0)
	obj.Set("c", 1.0)
	list.Call("push", 1.0)
	obj.Delete("c")
	assert.Len(t, s.events, 1)

	assert.Equal(t, 3.0, root.Get("a").(*value.Object).Get("b"))
	assert.Equal(t, 1, root.Get("list").(*value.Array).Len())
	assert.False(t, deepwatch.IsProxy(obj.Get("a")))
}

func TestTeardownDuringCallLetsTheCallFinish(t *testing.T) {
	root := value.ObjectOf("n", 1.0)
	var obj *deepwatch.Proxy
	root.Set("bump", value.Func(func(this any, _ []any) any {
		p := this.(*deepwatch.Proxy)
		p.Set("n", 2.0)
		deepwatch.Unsubscribe(obj)
		p.Set("n", 3.0)
		return "done"
	}))
	obj, s := observe(t, root, deepwatch.Options{})

	assert.Equal(t, "done", obj.Call("bump"))
	assert.Empty(t, s.events)
	assert.Equal(t, 3.0, root.Get("n"))

	obj.Set("n", 4.0)
	assert.Empty(t, s.events)
	assert.Equal(t, 4.0, root.Get("n"))
}

func TestTeardownFromValidatorStillUndoes(t *testing.T) {
	list := value.NewArray(1.0, 2.0)
	var obj *deepwatch.Proxy
	obj, s := observe(t, value.ObjectOf("list", list), deepwatch.Options{
		OnValidate: func(keypath.Path, any, any, *deepwatch.ApplyData) bool {
			deepwatch.Unsubscribe(obj)
			return false
		},
	})

	proxy(t, obj.Get("list")).Call("push", 3.0)

	assert.Empty(t, s.events)
	assert.Equal(t, []any{1.0, 2.0}, list.Elements())
	assert.False(t, deepwatch.IsProxy(obj.Get("list")))
}

func TestTargetAndIsProxy(t *testing.T) {
	root := value.NewObject()
	obj, _ := observe(t, root, deepwatch.Options{})

	assert.True(t, deepwatch.IsProxy(obj))
	assert.Same(t, root, deepwatch.Target(obj))
	assert.Same(t, root, obj.Get(deepwatch.TargetToken))
	assert.Equal(t, 5, deepwatch.Target(5))
}

func TestReadHelpers(t *testing.T) {
	root := value.ObjectOf("a", 1.0, "b", value.NewObject())
	obj, _ := observe(t, root, deepwatch.Options{})

	assert.Equal(t, 2, obj.Len())
	assert.True(t, obj.Has("a"))
	assert.Equal(t, keypath.Keys("a", "b"), obj.Keys())
	seen := map[string]any{}
	for k, v := range obj.All() {
		seen[k.String()] = v
	}
	assert.Equal(t, 1.0, seen["a"])
	assert.True(t, deepwatch.IsProxy(seen["b"]))

	data, err := obj.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1,"b":{}}`, string(data))
}

type countingRecorder struct {
	notified, rejected, rolledBack, teardowns int
	suppressed                                 []string
}

func (r *countingRecorder) Notified(string)     { r.notified++ }
func (r *countingRecorder) Rejected(string)     { r.rejected++ }
func (r *countingRecorder) RolledBack(string)   { r.rolledBack++ }
func (r *countingRecorder) Suppressed(s string) { r.suppressed = append(r.suppressed, s) }
func (r *countingRecorder) TornDown()           { r.teardowns++ }

func TestRecorderSeesRoutingDecisions(t *testing.T) {
	rec := &countingRecorder{}
	obj, _ := observe(t, value.ObjectOf("list", value.NewArray()), deepwatch.Options{
		IgnoreUnderscores: true,
		Recorder:          rec,
		OnValidate:        func(_ keypath.Path, _, _ any, apply *deepwatch.ApplyData) bool { return apply == nil },
	})

	obj.Set("a", 1.0)
	obj.Set("_b", 1.0)
	proxy(t, obj.Get("list")).Call("push", 1.0)
	deepwatch.Unsubscribe(obj)
	deepwatch.Unsubscribe(obj)

	assert.Equal(t, 1, rec.notified)
	assert.Equal(t, 1, rec.rejected)
	assert.Equal(t, 1, rec.rolledBack)
	assert.Equal(t, []string{deepwatch.ReasonUnderscore}, rec.suppressed)
	assert.Equal(t, 1, rec.teardowns)
}
