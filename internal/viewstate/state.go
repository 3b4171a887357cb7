// Package viewstate models the detail/edit/create flow of an interactive record
// view as an explicit state machine.
//
// A view is always in exactly one State. Operations that are not valid in the
// current state return a *TransitionError and leave the state untouched.
package viewstate

import (
	"errors"
	"fmt"
)

// State is one of Closed, Viewing, Editing or Creating.
type State interface {
	Name() string
	isState()
}

// Closed means no record is shown.
type Closed struct{}

// Viewing shows the record identified by Key.
type Viewing struct {
	Key string
}

// Editing holds pending field changes for the record identified by Key.
type Editing struct {
	Key   string
	Draft Draft
}

// Creating holds the fields of a record that does not exist yet.
type Creating struct {
	Draft Draft
}

func (Closed) Name() string   { return "closed" }
func (Viewing) Name() string  { return "viewing" }
func (Editing) Name() string  { return "editing" }
func (Creating) Name() string { return "creating" }

func (Closed) isState()   {}
func (Viewing) isState()  {}
func (Editing) isState()  {}
func (Creating) isState() {}

// FieldEdit is a single field assignment.
type FieldEdit struct {
	Field string
	Value string
}

// Draft is an ordered set of field assignments; setting a field twice keeps
// the first position and the last value.
type Draft []FieldEdit

// Get returns the value of field.
func (d Draft) Get(field string) (string, bool) {
	for _, e := range d {
		if e.Field == field {
			return e.Value, true
		}
	}
	return "", false
}

func (d Draft) set(field, value string) Draft {
	for i, e := range d {
		if e.Field == field {
			out := append(Draft(nil), d...)
			out[i].Value = value
			return out
		}
	}
	return append(append(Draft(nil), d...), FieldEdit{Field: field, Value: value})
}

var (
	// ErrInvalidTransition is matched by every TransitionError.
	ErrInvalidTransition = errors.New("invalid view transition")

	// ErrEmptyDraft is returned when committing a draft without fields.
	ErrEmptyDraft = errors.New("nothing to commit")
)

// TransitionError reports an operation attempted in the wrong state.
type TransitionError struct {
	Op   string
	From string
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("viewstate: cannot %s while %s", e.Op, e.From)
}

// Is matches ErrInvalidTransition.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
