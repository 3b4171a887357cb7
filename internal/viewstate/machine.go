package viewstate

import (
	"fmt"
	"strings"
)

// Committed is the outcome of a successful Commit.
type Committed struct {
	// Key is the edited record, empty for creations.
	Key   string
	Draft Draft
}

// Creation reports whether the commit created a new record.
func (c Committed) Creation() bool {
	return c.Key == ""
}

// Machine drives a single view.
type Machine struct {
	state State

	// Validate, when set, is run on the draft before a commit is accepted.
	Validate func(Draft) error
}

// NewMachine returns a machine in the Closed state.
func NewMachine() *Machine {
	return &Machine{state: Closed{}}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Open shows the record identified by key.
func (m *Machine) Open(key string) error {
	switch m.state.(type) {
	case Closed, Viewing:
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("viewstate: open: record key is required")
		}
		m.state = Viewing{Key: key}
		return nil
	}
	return m.invalid("open")
}

// Edit starts editing the record being viewed.
func (m *Machine) Edit() error {
	v, ok := m.state.(Viewing)
	if !ok {
		return m.invalid("edit")
	}
	m.state = Editing{Key: v.Key}
	return nil
}

// Create starts a new record.
func (m *Machine) Create() error {
	if _, ok := m.state.(Closed); !ok {
		return m.invalid("create")
	}
	m.state = Creating{}
	return nil
}

// Set assigns a field of the current draft.
func (m *Machine) Set(field, value string) error {
	field = strings.TrimSpace(field)
	if field == "" {
		return fmt.Errorf("viewstate: set: field name is required")
	}

	switch s := m.state.(type) {
	case Editing:
		m.state = Editing{Key: s.Key, Draft: s.Draft.set(field, value)}
		return nil
	case Creating:
		m.state = Creating{Draft: s.Draft.set(field, value)}
		return nil
	}
	return m.invalid("set")
}

// Commit accepts the current draft. Editing returns to Viewing the same
// record; Creating returns to Closed.
func (m *Machine) Commit() (Committed, error) {
	var (
		result Committed
		next   State
	)

	switch s := m.state.(type) {
	case Editing:
		result = Committed{Key: s.Key, Draft: s.Draft}
		next = Viewing{Key: s.Key}
	case Creating:
		result = Committed{Draft: s.Draft}
		next = Closed{}
	default:
		return Committed{}, m.invalid("commit")
	}

	if len(result.Draft) == 0 {
		return Committed{}, ErrEmptyDraft
	}
	if m.Validate != nil {
		if err := m.Validate(result.Draft); err != nil {
			return Committed{}, err
		}
	}

	m.state = next
	return result, nil
}

// Cancel discards the draft (Editing to Viewing, Creating to Closed) or
// closes the view.
func (m *Machine) Cancel() error {
	switch s := m.state.(type) {
	case Editing:
		m.state = Viewing{Key: s.Key}
	case Creating, Viewing:
		m.state = Closed{}
	default:
		return m.invalid("cancel")
	}
	return nil
}

func (m *Machine) invalid(op string) error {
	return &TransitionError{Op: op, From: m.state.Name()}
}
