package script_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/deepwatch"
	"github.com/reoring/deepwatch/i18n"
	"github.com/reoring/deepwatch/keypath"
	"github.com/reoring/deepwatch/script"
	"github.com/reoring/deepwatch/value"
)

type change struct {
	path  string
	value any
	apply *deepwatch.ApplyData
}

func observeDoc(t *testing.T, doc string, opts deepwatch.Options) (*deepwatch.Proxy, *[]change) {
	t.Helper()
	v, err := value.ParseYAML([]byte(doc))
	require.NoError(t, err)
	root, ok := v.(value.Container)
	require.True(t, ok)
	var changes []change
	px := deepwatch.Observe(root, func(p keypath.Path, v, _ any, apply *deepwatch.ApplyData) {
		changes = append(changes, change{path: p.String(), value: v, apply: apply})
	}, opts)
	require.NotNil(t, px)
	return px, &changes
}

func mustParse(t *testing.T, src string) []script.Op {
	t.Helper()
	ops, err := script.Parse([]byte(src))
	require.NoError(t, err)
	return ops
}

func TestParse_Defaults(t *testing.T) {
	ops := mustParse(t, `
- {op: set, path: user.name, value: Ada}
- {op: define, path: user.id, value: 7, writable: false}
- {op: call, path: user.tags, method: push, args: [admin, ops]}
- {op: delete, path: user.name}
`)
	require.Len(t, ops, 4)

	assert.Equal(t, script.OpSet, ops[0].Kind)
	assert.Equal(t, "Ada", ops[0].Value)

	assert.Equal(t, 7.0, ops[1].Value)
	assert.False(t, ops[1].Writable)
	assert.True(t, ops[1].Enumerable)
	assert.True(t, ops[1].Configurable)

	assert.Equal(t, "push", ops[2].Method)
	assert.Equal(t, []any{"admin", "ops"}, ops[2].Args)

	assert.True(t, value.IsUndefined(ops[3].Value))
}

func TestParse_Issues(t *testing.T) {
	_, err := script.Parse([]byte(`
- {op: set, path: a, value: 1}
- just a string
- {path: b}
- {op: call, path: list}
- {op: define, path: c, writable: "no"}
`))
	iss, ok := script.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 4)
	assert.Equal(t, []int{1, 2, 3, 4}, []int{iss[0].Index, iss[1].Index, iss[2].Index, iss[3].Index})
	for _, it := range iss {
		assert.Equal(t, script.CodeInvalidValue, it.Code)
		assert.Error(t, it.Cause)
	}
	assert.Equal(t, "/b", iss[1].Path)
	assert.Contains(t, err.Error(), "invalid_value at / (op 1)")
}

func TestParse_NotAList(t *testing.T) {
	_, err := script.Parse([]byte(`op: set`))
	iss, ok := script.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, -1, iss[0].Index)
	assert.Equal(t, script.CodeInvalidValue, iss[0].Code)
}

func TestParse_Malformed(t *testing.T) {
	for name, src := range map[string]string{
		"empty":  "",
		"syntax": "- {op: set",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := script.Parse([]byte(src))
			iss, ok := script.AsIssues(err)
			require.True(t, ok)
			assert.Equal(t, script.CodeParseError, iss[0].Code)
		})
	}
}

func TestRun_AppliesOperations(t *testing.T) {
	root, changes := observeDoc(t, `
user:
  name: Grace
  tags: [dev]
`, deepwatch.Options{})
	ops := mustParse(t, `
- {op: set, path: user.name, value: Ada}
- {op: call, path: user.tags, method: push, args: [admin]}
- {op: define, path: user.id, value: 7, enumerable: false}
- {op: delete, path: user.name}
`)

	res, err := script.Run(root, ops)
	require.NoError(t, err)
	require.Len(t, res, 4)
	for _, r := range res {
		assert.True(t, r.OK, "op %d", r.Index)
	}
	assert.Equal(t, 2, res[1].Value)

	got := *changes
	require.Len(t, got, 4)
	assert.Equal(t, []string{"user.name", "user.tags", "user.id", "user.name"},
		[]string{got[0].path, got[1].path, got[2].path, got[3].path})
	require.NotNil(t, got[1].apply)
	assert.Equal(t, "push", got[1].apply.Name)
	assert.True(t, value.IsUndefined(got[3].value))

	user := deepwatch.Target(root.Get("user")).(value.Container)
	d, ok := user.OwnDescriptor(keypath.K("id"))
	require.True(t, ok)
	assert.Equal(t, 7.0, d.Value)
	assert.False(t, d.Enumerable)
	assert.False(t, user.HasOwn(keypath.K("name")))
}

func TestRun_RefBuildsCycle(t *testing.T) {
	root, changes := observeDoc(t, `user: {name: Ada}`, deepwatch.Options{})
	rawUser := deepwatch.Target(root.Get("user"))

	_, err := script.Run(root, mustParse(t, `- {op: set, path: user.self, value: {$ref: user}}`))
	require.NoError(t, err)

	require.Len(t, *changes, 1)
	assert.Equal(t, "user.self", (*changes)[0].path)
	assert.Same(t, rawUser, (*changes)[0].value)

	user, ok := root.Get("user").(*deepwatch.Proxy)
	require.True(t, ok)
	self, ok := user.Get("self").(*deepwatch.Proxy)
	require.True(t, ok)
	assert.Same(t, user, self)
	assert.Equal(t, "user", self.Path().String())
}

func TestRun_RefInsideArgs(t *testing.T) {
	root, changes := observeDoc(t, `
defaults: {role: guest}
users: []
`, deepwatch.Options{})

	_, err := script.Run(root, mustParse(t, `
- {op: call, path: users, method: push, args: [{name: Ada, settings: {$ref: defaults}}]}
`))
	require.NoError(t, err)
	require.Len(t, *changes, 1)

	users := deepwatch.Target(root.Get("users")).(*value.Array)
	first, ok := users.At(0).(*value.Object)
	require.True(t, ok)
	assert.Same(t, deepwatch.Target(root.Get("defaults")), first.Get("settings"))
}

func TestRun_MapEntries(t *testing.T) {
	root, changes := observeDoc(t, `
index: {$map: [[ada, {visits: 1}]]}
`, deepwatch.Options{})

	_, err := script.Run(root, mustParse(t, `- {op: set, path: index.ada.visits, value: 2}`))
	require.NoError(t, err)
	require.Len(t, *changes, 1)
	assert.Equal(t, "index.ada.visits", (*changes)[0].path)
	assert.Equal(t, 2.0, (*changes)[0].value)
}

func TestRun_CollectsIssues(t *testing.T) {
	root, changes := observeDoc(t, `
user: {name: Ada, locked: false, tags: []}
`, deepwatch.Options{
		OnValidate: func(p keypath.Path, _, _ any, _ *deepwatch.ApplyData) bool {
			return p.String() != "user.locked"
		},
	})
	ops := mustParse(t, `
- {op: set, path: missing.name, value: x}
- {op: call, path: user.tags, method: frobnicate}
- {op: set, path: user.locked, value: true}
- {op: rename, path: user.name}
- {op: set, path: user.name, value: Grace}
- {op: set, path: user.extra, value: {$ref: nowhere}}
- {op: set, path: "", value: 1}
`)

	res, err := script.Run(root, ops)
	require.Len(t, res, 7)
	iss, ok := script.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 6)

	assert.Equal(t, script.CodeNotContainer, iss[0].Code)
	assert.Equal(t, "/missing", iss[0].Path)
	assert.Equal(t, "missing is not a container", iss[0].Message)

	assert.Equal(t, script.CodeUnknownMethod, iss[1].Code)
	assert.Equal(t, "array has no method frobnicate", iss[1].Message)

	assert.Equal(t, script.CodeRejected, iss[2].Code)
	assert.Equal(t, "/user/locked", iss[2].Path)

	assert.Equal(t, script.CodeUnknownOp, iss[3].Code)
	assert.Equal(t, "unknown operation rename", iss[3].Message)

	assert.Equal(t, script.CodeInvalidValue, iss[4].Code)
	assert.Equal(t, 5, iss[4].Index)
	assert.Error(t, iss[4].Cause)

	assert.Equal(t, script.CodeInvalidValue, iss[5].Code)
	assert.Equal(t, 6, iss[5].Index)

	assert.True(t, res[4].OK)
	require.Len(t, *changes, 1)
	assert.Equal(t, "user.name", (*changes)[0].path)
}

func TestRun_LocalizedMessages(t *testing.T) {
	i18n.SetLanguage("ja")
	t.Cleanup(func() { i18n.SetLanguage("en") })

	root, _ := observeDoc(t, `list: []`, deepwatch.Options{})
	_, err := script.Run(root, mustParse(t, `- {op: call, path: list, method: frobnicate}`))
	iss, ok := script.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "array にメソッド frobnicate はありません", iss[0].Message)
}

func TestRun_Unsubscribe(t *testing.T) {
	root, changes := observeDoc(t, `n: 1`, deepwatch.Options{})

	_, err := script.Run(root, mustParse(t, `
- {op: set, path: n, value: 2}
- {op: unsubscribe}
- {op: set, path: n, value: 3}
`))
	require.NoError(t, err)
	require.Len(t, *changes, 1)
	assert.Equal(t, 3.0, deepwatch.Target(root).(*value.Object).Get("n"))
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := script.Parse([]byte(`- {op: set, path: a, vlaue: 1}`))
	iss, ok := script.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.ErrorContains(t, iss[0].Cause, `unknown field "vlaue"`)
}

func TestSchemaListsEveryField(t *testing.T) {
	s := script.Schema()
	require.NotNil(t, s.Items)
	for _, name := range []string{"op", "path", "method", "args", "value", "writable", "enumerable", "configurable"} {
		assert.Contains(t, s.Items.Properties, name)
	}
	assert.Equal(t, []string{"op"}, s.Items.Required)
	require.Len(t, s.Items.AllOf, 1)
	assert.Equal(t, []string{"method"}, s.Items.AllOf[0].Then.Required)
}
