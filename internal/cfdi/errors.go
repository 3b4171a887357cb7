package cfdi

import (
	"errors"
	"fmt"
)

// Common CFDI errors
var (
	// ErrMalformedXML is returned when the document is not well-formed XML
	// or an attribute cannot be read.
	ErrMalformedXML = errors.New("malformed CFDI XML")

	// ErrNotCFDI is returned when the root element is not a Comprobante.
	ErrNotCFDI = errors.New("document is not a CFDI comprobante")

	// ErrMissingRequiredField is returned when a field needed to register the
	// invoice is empty.
	ErrMissingRequiredField = errors.New("missing required CFDI field")

	// ErrRFCMismatch is returned when the issuer RFC differs from the RFC of the
	// selected settlement rows.
	ErrRFCMismatch = errors.New("issuer RFC does not match the selected rows")

	// ErrExceedsInvoiceTotal is returned when the amounts assigned to rows exceed
	// what the invoice or a row can take.
	ErrExceedsInvoiceTotal = errors.New("assigned amount exceeds the invoice total")

	// ErrInvalidAmount is returned for non-positive assignment overrides.
	ErrInvalidAmount = errors.New("invalid assignment amount")

	// ErrNoRows is returned when an assignment is planned without rows.
	ErrNoRows = errors.New("no rows selected")

	// ErrNoSettlementID is returned for rows the backend cannot address
	// because they carry no id_solicitud_proveedor.
	ErrNoSettlementID = errors.New("row has no settlement id")
)

// ParseError describes a CFDI document that could not be read.
type ParseError struct {
	// Field is the element or attribute being read, empty for syntax errors.
	Field string

	// Value is the offending raw value (if available).
	Value string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("cfdi: cannot read %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("cfdi: parse failed: %v", e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is matches ErrMalformedXML unless the wrapped error is more specific.
func (e *ParseError) Is(target error) bool {
	if target == ErrMalformedXML {
		return !errors.Is(e.Err, ErrNotCFDI)
	}
	return false
}

// ValidationError represents a required CFDI field that is missing or invalid.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Is matches ErrMissingRequiredField.
func (e *ValidationError) Is(target error) bool {
	return target == ErrMissingRequiredField
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// AssignmentError reports the row whose amount could not be planned.
type AssignmentError struct {
	Key string
	Err error
}

// Error implements the error interface.
func (e *AssignmentError) Error() string {
	return fmt.Sprintf("cfdi: row %s: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *AssignmentError) Unwrap() error {
	return e.Err
}
