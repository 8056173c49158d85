package deepwatch

import (
	"log/slog"
	"slices"

	"github.com/reoring/deepwatch/keypath"
	"github.com/reoring/deepwatch/value"
)

// ChangeFunc receives one change. apply is nil for property writes,
// definitions and deletions.
type ChangeFunc func(path keypath.Path, value, previous any, apply *ApplyData)

// ValidateFunc decides whether a change is accepted.
type ValidateFunc func(path keypath.Path, value, previous any, apply *ApplyData) bool

// ApplyData describes the method call behind a batched change.
type ApplyData struct {
	Name   string
	Args   []any
	Result any
}

// Details selects the methods whose calls are reported field by field
// instead of as one batched change. The zero value selects none.
type Details struct {
	all   bool
	names []string
}

// DetailsAll selects every method.
func DetailsAll() Details { return Details{all: true} }

// DetailsFor selects the named methods.
func DetailsFor(names ...string) Details { return Details{names: append([]string(nil), names...)} }

// Includes reports whether calls to name are reported field by field.
func (d Details) Includes(name string) bool {
	return d.all || slices.Contains(d.names, name)
}

// Options configures Observe.
type Options struct {
	// Equals decides whether a write changes a property. Defaults to
	// value.SameValue.
	Equals func(a, b any) bool
	// IsShallow stops reads from wrapping nested values; only calls and
	// writes made through the root are observed.
	IsShallow bool
	// PathAsArray reports paths as keypath.Segments instead of keypath.Dotted.
	PathAsArray bool
	// IgnoreSymbols drops changes to symbol keys.
	IgnoreSymbols bool
	// IgnoreUnderscores drops changes to keys starting with "_".
	IgnoreUnderscores bool
	// IgnoreKeys drops changes to the listed keys.
	IgnoreKeys []keypath.Key
	// IgnoreDetached drops changes to values no longer reachable from the
	// root at their recorded path.
	IgnoreDetached bool
	// Details selects methods that are not batched.
	Details Details
	// OnValidate, when set, must accept a change before it is applied.
	OnValidate ValidateFunc
	// Logger receives debug records for rejections, rollbacks, suppressed
	// changes and teardown. Defaults to discarding.
	Logger *slog.Logger
	// Recorder counts routed, rejected and suppressed changes.
	Recorder Recorder
}

func (o Options) withDefaults() Options {
	if o.Equals == nil {
		o.Equals = value.SameValue
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	return o
}

func (o Options) ignores(k keypath.Key) bool {
	for _, ik := range o.IgnoreKeys {
		if ik == k {
			return true
		}
	}
	return false
}
