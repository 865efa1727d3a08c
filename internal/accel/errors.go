package accel

import (
	"fmt"
	"strings"

	"github.com/leengari/hybrideval/internal/table"
)

// MismatchError reports a fatal precondition violation: an accelerated
// result was asked to process data inconsistent with what its handler
// validated at match time. This indicates a dispatch bug, not a recoverable
// condition; evaluation of the current expression aborts.
type MismatchError struct {
	Op     string     // operation name ("sum", "mean", ...)
	Column string     // bound column name
	Want   table.Kind // kind validated at match time (empty if not a kind issue)
	Got    table.Kind
	Reason string // human-readable explanation (optional)
}

func (e *MismatchError) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("precondition violation in %s(%s)", e.Op, e.Column))

	if e.Want != "" {
		parts = append(parts, fmt.Sprintf("expected %s, got %s", e.Want, e.Got))
	}

	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}

	return strings.Join(parts, " - ")
}

func NewLengthMismatch(op, column string, want, got int) *MismatchError {
	return &MismatchError{
		Op:     op,
		Column: column,
		Reason: fmt.Sprintf("bound column has %d rows, table has %d", want, got),
	}
}
