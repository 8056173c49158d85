package deepwatch

// Operations reported to a Recorder.
const (
	OpSet    = "set"
	OpDefine = "define"
	OpDelete = "delete"
	OpApply  = "apply"
)

// Suppression reasons reported to a Recorder.
const (
	ReasonTeardown   = "teardown"
	ReasonSymbol     = "symbol"
	ReasonUnderscore = "underscore"
	ReasonDenylist   = "denylist"
	ReasonDetached   = "detached"
)

// Recorder observes the routing decisions of an observer. Implementations
// must be safe for concurrent use when one is shared between observers.
type Recorder interface {
	// Notified is called once per delivered change.
	Notified(op string)
	// Rejected is called when the validation hook vetoes a change.
	Rejected(op string)
	// RolledBack is called after a rejected call on method was undone.
	RolledBack(method string)
	// Suppressed is called when a change is dropped before validation.
	Suppressed(reason string)
	// TornDown is called when an observer is unsubscribed.
	TornDown()
}

type nopRecorder struct{}

func (nopRecorder) Notified(string)   {}
func (nopRecorder) Rejected(string)   {}
func (nopRecorder) RolledBack(string) {}
func (nopRecorder) Suppressed(string) {}
func (nopRecorder) TornDown()         {}
