package allocation

import (
	"errors"
	"fmt"
)

// ErrInvalidAllocation is matched by every InvalidAllocationError.
var ErrInvalidAllocation = errors.New("invalid allocation")

// InvalidAllocationError is returned when an allocation is undefined,
// e.g. when the selected invoices carry no outstanding balance.
type InvalidAllocationError struct {
	// Op is the operation that failed (e.g., "Allocate", "ConsumeBalances").
	Op string

	// Reason explains why the allocation cannot be computed.
	Reason string
}

// Error implements the error interface.
func (e *InvalidAllocationError) Error() string {
	return fmt.Sprintf("allocation: %s: %s", e.Op, e.Reason)
}

// Is matches ErrInvalidAllocation.
func (e *InvalidAllocationError) Is(target error) bool {
	return target == ErrInvalidAllocation
}

func invalid(op, format string, args ...interface{}) error {
	return &InvalidAllocationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

var (
	// ErrUnknownBalance is returned when a requested credit balance does not
	// belong to the agent.
	ErrUnknownBalance = errors.New("credit balance not found for agent")

	// ErrUnknownInvoice is returned when a requested invoice is not among the
	// agent's pending invoices.
	ErrUnknownInvoice = errors.New("invoice not pending for agent")

	// ErrDuplicateID is returned when a balance or invoice is selected twice.
	ErrDuplicateID = errors.New("selected more than once")
)
