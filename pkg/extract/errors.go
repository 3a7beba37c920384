package extract

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors for absent input. Both mean "no recommendation present"
// to the caller; they are distinct so diagnostics can say why.
var (
	// ErrNotFound indicates the open tag never occurs, or no close tag
	// occurs after it.
	ErrNotFound = errors.New("structured block not found")
	// ErrEmpty indicates the tag pair is present but the body between
	// them is blank after trimming.
	ErrEmpty = errors.New("structured block is empty")
)

// MalformedError is a structural parse failure: bad YAML, a missing
// required key, a malformed list item, or a scalar that cannot be coerced
// to its declared type. Key and Line are populated when known.
type MalformedError struct {
	Reason string
	Key    string
	Line   int
}

func (e *MalformedError) Error() string {
	msg := "malformed block: " + e.Reason
	if e.Key != "" {
		msg += fmt.Sprintf(" (key %q)", e.Key)
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", e.Line)
	}
	return msg
}

// InvariantViolationError is a structurally valid block whose fields are
// semantically inconsistent. It is always fatal: silently repairing a
// security-relevant field would defeat the point of the check.
type InvariantViolationError struct {
	Rule   string
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant %s violated: %s", e.Rule, e.Reason)
}

// TooLargeError indicates the document or block body exceeds the
// configured defensive ceiling.
type TooLargeError struct {
	What   string
	Limit  int
	Actual int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("%s too large: %d bytes exceeds limit of %d", e.What, e.Actual, e.Limit)
}
