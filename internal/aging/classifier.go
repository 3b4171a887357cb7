// Package aging classifies outstanding invoices by days overdue and builds
// per-agent aging summaries (concentrado de cuentas por cobrar).
//
// Bucket boundaries are fixed: current (not yet due), 1-7, 8-15, 16-20, 21-30
// and more than 30 days overdue. Every integer number of days falls in exactly
// one bucket.
package aging

import (
	"time"
)

// Bucket is an aging range.
type Bucket int

const (
	Current Bucket = iota
	Days1To7
	Days8To15
	Days16To20
	Days21To30
	Over30
)

// NumBuckets is the number of aging buckets.
const NumBuckets = 6

// AllBuckets returns the buckets in display order.
func AllBuckets() []Bucket {
	return []Bucket{Current, Days1To7, Days8To15, Days16To20, Days21To30, Over30}
}

// String returns the column label used in reports.
func (b Bucket) String() string {
	switch b {
	case Current:
		return "vigente"
	case Days1To7:
		return "1-7"
	case Days8To15:
		return "8-15"
	case Days16To20:
		return "16-20"
	case Days21To30:
		return "21-30"
	case Over30:
		return ">30"
	}
	return "desconocido"
}

// Overdue reports whether the bucket holds past-due invoices.
func (b Bucket) Overdue() bool {
	return b != Current
}

// BucketForDays maps a signed days-overdue value to its bucket.
func BucketForDays(days int) Bucket {
	switch {
	case days <= 0:
		return Current
	case days <= 7:
		return Days1To7
	case days <= 15:
		return Days8To15
	case days <= 20:
		return Days16To20
	case days <= 30:
		return Days21To30
	default:
		return Over30
	}
}

// Classifier computes days overdue at calendar-day granularity.
//
// The reference date is read in the classifier's location. A due date is read
// in the location it carries, so a date-only value ("2025-03-10", decoded at
// UTC midnight) keeps its literal calendar day.
type Classifier struct {
	loc *time.Location
}

// NewClassifier returns a classifier that reads "today" in loc.
// A nil loc means UTC.
func NewClassifier(loc *time.Location) *Classifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Classifier{loc: loc}
}

// Location returns the location used for the reference date.
func (c *Classifier) Location() *time.Location {
	return c.loc
}

// DaysOverdue returns the signed number of whole days between due and today.
// Positive values mean the invoice is past due.
func (c *Classifier) DaysOverdue(due, today time.Time) int {
	dueDay := calendarDay(due)
	todayDay := calendarDay(today.In(c.loc))
	return int(todayDay.Sub(dueDay).Hours() / 24)
}

// Classify returns the aging bucket for a possibly null due date.
// A null due date is treated as not yet due.
func (c *Classifier) Classify(due *time.Time, today time.Time) Bucket {
	if due == nil || due.IsZero() {
		return Current
	}
	return BucketForDays(c.DaysOverdue(*due, today))
}

// calendarDay returns UTC midnight of t's calendar date in t's own location.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
