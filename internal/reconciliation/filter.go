package reconciliation

import (
	"strings"
	"time"
)

// Filter narrows the reconciliation list. Zero fields match everything.
type Filter struct {
	Status   InvoiceStatus
	RFC      string // case-insensitive substring, or the whole RFC with ExactRFC
	Provider string // case-insensitive substring of provider or hotel
	From     *time.Time
	To       *time.Time // inclusive, compared by check-in day

	ExactRFC       bool
	OnlySelectable bool
}

// Match reports whether r passes the filter.
func (f Filter) Match(r Row) bool {
	if f.Status != "" && r.Estatus != f.Status {
		return false
	}
	if f.OnlySelectable && !r.Selectable() {
		return false
	}
	if q := NormalizeRFC(f.RFC); q != "" {
		rfc := NormalizeRFC(r.RFC)
		if f.ExactRFC && rfc != q {
			return false
		}
		if !f.ExactRFC && !strings.Contains(rfc, q) {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Provider)); q != "" {
		if !strings.Contains(strings.ToLower(r.Proveedor), q) && !strings.Contains(strings.ToLower(r.Hotel), q) {
			return false
		}
	}
	if f.From != nil || f.To != nil {
		if r.CheckIn == nil {
			return false
		}
		day := utcMidnight(*r.CheckIn)
		if f.From != nil && day.Before(utcMidnight(*f.From)) {
			return false
		}
		if f.To != nil && day.After(utcMidnight(*f.To)) {
			return false
		}
	}
	return true
}

// Apply returns the rows that match, in their original order.
func (f Filter) Apply(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
