package engine

import (
	"github.com/reoring/deepwatch/keypath"
)

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// SimpleIssue is a minimal issue representation reported by the limits
// wrapper. Path is a JSON Pointer.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.Path + ": " + e.SimpleIssue.Message }

// Limits controls runtime enforcement behavior.
type Limits struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	// IssueSink receives non-fatal issues such as duplicate keys under
	// DupWarn. Nil discards them.
	IssueSink func(SimpleIssue)
}

// Enabled reports whether any limit is active.
func (l Limits) Enabled() bool { return l.OnDuplicate != DupIgnore || l.MaxDepth > 0 }

type limitFrame struct {
	frame
	keys      map[string]struct{}
	path      keypath.Segments
	nextIndex int
	pending   keypath.Key
}

// WithLimits returns a TokenSource that enforces duplicate key policy and
// maximum nesting depth. It returns inner unchanged when no limit is set.
func WithLimits(inner TokenSource, l Limits) TokenSource {
	if !l.Enabled() {
		return inner
	}
	return &limitedSource{inner: inner, limits: l}
}

type limitedSource struct {
	inner  TokenSource
	limits Limits
	stack  []limitFrame
}

func (e *limitedSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	path := e.pathFor(tok)

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		f := limitFrame{frame: frame{kind: kindArray}, path: path}
		if tok.Kind == KindBeginObject {
			f.frame = frame{kind: kindObject, expectingKey: true}
			f.keys = make(map[string]struct{})
		}
		e.stack = append(e.stack, f)
		if e.limits.MaxDepth > 0 && len(e.stack) > e.limits.MaxDepth {
			return Token{}, e.fail(SimpleIssue{Code: "parse_error", Path: keypath.Pointer(path), Message: "max depth exceeded"})
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		e.memberDone()
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if _, dup := top.keys[tok.String]; dup && e.limits.OnDuplicate != DupIgnore {
				si := SimpleIssue{Code: "duplicate_key", Path: keypath.Pointer(path), Message: "key '" + tok.String + "' duplicated"}
				if e.limits.OnDuplicate == DupError {
					return Token{}, e.fail(si)
				}
				e.report(si)
			}
			top.keys[tok.String] = struct{}{}
			top.expectingKey = false
			top.pending = keypath.K(tok.String)
		}
	default:
		e.memberDone()
	}
	return tok, nil
}

func (e *limitedSource) memberDone() {
	if n := len(e.stack); n > 0 {
		top := &e.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
			top.pending = keypath.Key{}
		}
	}
}

// pathFor returns the location of tok within the document.
func (e *limitedSource) pathFor(tok Token) keypath.Segments {
	if len(e.stack) == 0 {
		if tok.Kind == KindKey {
			return keypath.Segments{keypath.K(tok.String)}
		}
		return nil
	}
	top := &e.stack[len(e.stack)-1]
	switch {
	case tok.Kind == KindKey:
		return top.path.Concat(keypath.K(tok.String)).(keypath.Segments)
	case tok.Kind == KindEndObject || tok.Kind == KindEndArray:
		return top.path
	case top.kind == kindArray:
		p := top.path.Concat(keypath.Idx(top.nextIndex)).(keypath.Segments)
		top.nextIndex++
		return p
	case !top.pending.IsZero():
		return top.path.Concat(top.pending).(keypath.Segments)
	}
	return top.path
}

func (e *limitedSource) report(si SimpleIssue) {
	if e.limits.IssueSink != nil {
		e.limits.IssueSink(si)
	}
}

func (e *limitedSource) fail(si SimpleIssue) error {
	e.report(si)
	return IssueError{si}
}

func (e *limitedSource) Location() int64 { return e.inner.Location() }
