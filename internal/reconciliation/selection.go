package reconciliation

import (
	"fmt"
	"sort"
	"strconv"
)

// SelectionState is the state of a Selection.
type SelectionState int

const (
	// SelectionEmpty holds no rows and no baseline RFC.
	SelectionEmpty SelectionState = iota
	// SelectionSingleRFC holds one or more rows sharing the baseline RFC.
	SelectionSingleRFC
)

// String returns a readable state name.
func (s SelectionState) String() string {
	if s == SelectionSingleRFC {
		return "single-rfc"
	}
	return "empty"
}

// Selection is a set of selected row keys whose rows all share one RFC.
// Rows without an RFC form their own group. Any operation that would mix two
// RFCs is rejected and leaves the selection unchanged.
type Selection struct {
	rows     map[string]Row
	selected map[string]bool
	baseline string
}

// NewSelection returns an empty selection over rows.
func NewSelection(rows []Row) *Selection {
	s := &Selection{
		rows:     make(map[string]Row, len(rows)),
		selected: make(map[string]bool),
	}
	for _, r := range rows {
		s.rows[r.Key] = r
	}
	return s
}

// State returns the current state.
func (s *Selection) State() SelectionState {
	if len(s.selected) == 0 {
		return SelectionEmpty
	}
	return SelectionSingleRFC
}

// Baseline returns the RFC shared by the selected rows. ok is false when the
// selection is empty.
func (s *Selection) Baseline() (rfc string, ok bool) {
	if len(s.selected) == 0 {
		return "", false
	}
	return s.baseline, true
}

// Len returns the number of selected rows.
func (s *Selection) Len() int {
	return len(s.selected)
}

// IsSelected reports whether key is selected.
func (s *Selection) IsSelected(key string) bool {
	return s.selected[key]
}

// Select adds the row with the given key.
func (s *Selection) Select(key string) error {
	row, ok := s.rows[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRow, key)
	}
	if !row.Selectable() {
		return fmt.Errorf("%w: %s", ErrNotSelectable, key)
	}
	if s.selected[key] {
		return nil
	}

	if len(s.selected) == 0 {
		s.baseline = row.RFC
	} else if row.RFC != s.baseline {
		return &RFCConflictError{Key: key, RFC: row.RFC, Baseline: s.baseline}
	}

	s.selected[key] = true
	return nil
}

// Deselect removes key. Removing the last row clears the baseline.
func (s *Selection) Deselect(key string) {
	delete(s.selected, key)
	if len(s.selected) == 0 {
		s.baseline = ""
	}
}

// Toggle selects key when it is not selected and deselects it otherwise.
func (s *Selection) Toggle(key string) error {
	if s.selected[key] {
		s.Deselect(key)
		return nil
	}
	return s.Select(key)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.selected = make(map[string]bool)
	s.baseline = ""
}

// SelectAllFiltered selects every selectable row in rows that matches the
// baseline RFC. With an empty selection the baseline is the first non-empty
// RFC among the selectable rows, or the empty RFC when none has one.
// It returns the number of rows newly selected.
func (s *Selection) SelectAllFiltered(rows []Row) int {
	for _, r := range rows {
		if _, ok := s.rows[r.Key]; !ok {
			s.rows[r.Key] = r
		}
	}

	baseline, ok := s.Baseline()
	if !ok {
		baseline = firstRFC(rows)
	}

	added := 0
	for _, r := range rows {
		if !r.Selectable() || r.RFC != baseline || s.selected[r.Key] {
			continue
		}
		s.selected[r.Key] = true
		added++
	}
	if len(s.selected) > 0 {
		s.baseline = baseline
	}
	return added
}

func firstRFC(rows []Row) string {
	for _, r := range rows {
		if r.Selectable() && r.RFC != "" {
			return r.RFC
		}
	}
	return ""
}

// Refresh replaces the row set after a reload. Selected keys that disappeared,
// became fully invoiced or changed RFC are dropped.
func (s *Selection) Refresh(rows []Row) {
	s.rows = make(map[string]Row, len(rows))
	for _, r := range rows {
		s.rows[r.Key] = r
	}

	for key := range s.selected {
		row, ok := s.rows[key]
		if !ok || !row.Selectable() || row.RFC != s.baseline {
			delete(s.selected, key)
		}
	}
	if len(s.selected) == 0 {
		s.baseline = ""
	}
}

// Keys returns the selected keys, numeric ids first in numeric order.
func (s *Selection) Keys() []string {
	keys := make([]string, 0, len(s.selected))
	for k := range s.selected {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keyLess(keys[i], keys[j])
	})
	return keys
}

// keyLess orders numeric keys numerically and everything else lexically.
func keyLess(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return ai < bi
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	}
	return a < b
}

// Rows returns the selected rows ordered by key.
func (s *Selection) Rows() []Row {
	keys := s.Keys()
	out := make([]Row, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.rows[k])
	}
	return out
}
