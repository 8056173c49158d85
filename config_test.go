package deepwatch_test

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/deepwatch"
	"github.com/reoring/deepwatch/keypath"
	"github.com/reoring/deepwatch/value"
)

func TestParseConfig(t *testing.T) {
	c, err := deepwatch.ParseConfig([]byte(`
pathAsArray: true
ignoreUnderscores: true
ignoreKeys: [secret, token]
details: [push, sort]
equality: same-value-zero
logLevel: debug
`))
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, c.Level())

	o := c.Options()
	assert.True(t, o.PathAsArray)
	assert.True(t, o.IgnoreUnderscores)
	assert.Equal(t, keypath.Keys("secret", "token"), o.IgnoreKeys)
	assert.True(t, o.Details.Includes("push"))
	assert.False(t, o.Details.Includes("pop"))
	assert.True(t, o.Equals(0.0, math.Copysign(0, -1)))
}

func TestParseConfig_Defaults(t *testing.T) {
	c, err := deepwatch.ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, c.Level())

	o := c.Options()
	assert.False(t, o.Equals(0.0, math.Copysign(0, -1)))
	assert.False(t, o.Details.Includes("push"))
}

func TestParseConfig_Wildcard(t *testing.T) {
	c, err := deepwatch.ParseConfig([]byte(`details: [sort, "*"]`))
	require.NoError(t, err)
	assert.True(t, c.Options().Details.Includes("anything"))
}

func TestParseConfig_Rejects(t *testing.T) {
	for name, src := range map[string]string{
		"unknown field": "pathAsArrays: true",
		"bad equality":  "equality: loose",
		"bad level":     "logLevel: trace",
		"empty key":     `ignoreKeys: [""]`,
		"wrong type":    "shallow: [1]",
		"empty detail":  `details: [push, ""]`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := deepwatch.ParseConfig([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_DrivesObserver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "observe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ignoreKeys: [secret]\n"), 0o600))

	c, err := deepwatch.LoadConfig(path)
	require.NoError(t, err)

	obj, s := observe(t, value.ObjectOf("secret", 1.0, "open", 1.0), c.Options())
	assert.True(t, obj.Set("secret", 2.0))
	assert.True(t, obj.Set("open", 2.0))
	require.Len(t, s.events, 1)
	assert.Equal(t, "open", s.events[0].path)

	_, err = deepwatch.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
