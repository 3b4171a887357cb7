package reconciliation

import (
	"errors"
	"fmt"
)

// Selection errors
var (
	// ErrRFCConflict is returned when a row's RFC differs from the RFC already selected.
	ErrRFCConflict = errors.New("selection already holds a different RFC")

	// ErrNotSelectable is returned for rows that are fully invoiced.
	ErrNotSelectable = errors.New("row is fully invoiced and cannot be selected")

	// ErrUnknownRow is returned when a key does not belong to the current row set.
	ErrUnknownRow = errors.New("unknown row")
)

// RFCConflictError describes a rejected selection.
type RFCConflictError struct {
	Key      string
	RFC      string
	Baseline string
}

// Error implements the error interface.
func (e *RFCConflictError) Error() string {
	return fmt.Sprintf("row %s has RFC %q but the selection holds RFC %q", e.Key, displayRFC(e.RFC), displayRFC(e.Baseline))
}

// Is matches ErrRFCConflict.
func (e *RFCConflictError) Is(target error) bool {
	return target == ErrRFCConflict
}

func displayRFC(rfc string) string {
	if rfc == "" {
		return "(sin RFC)"
	}
	return rfc
}
