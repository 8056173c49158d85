package script

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes.
const (
	CodeRejected      = "rejected"
	CodeNotContainer  = "not_container"
	CodeUnknownMethod = "unknown_method"
	CodeUnknownOp     = "unknown_op"
	CodeInvalidValue  = "invalid_value"
	CodeParseError    = "parse_error"
)

// Issue reports one failed operation.
type Issue struct {
	Index   int    // Position of the operation in the script (-1 for the whole script).
	Path    string // JSON Pointer of the addressed property (for example: /items/2).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
}

// Issues is a collection of failed operations that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. rejected at /a/b (op 2)
		fmt.Fprintf(b, "%s at %s (op %d)", it.Code, it.Path, it.Index)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
