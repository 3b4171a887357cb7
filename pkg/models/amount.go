package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value decoded leniently from the backend.
// The backend sends numbers, numeric strings, formatted strings ("$1,234.50")
// or null; anything that does not parse becomes zero.
type Amount struct {
	decimal.Decimal
}

// NewAmount returns an Amount holding d.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// AmountFromString parses s with the same rules used for JSON input.
func AmountFromString(s string) Amount {
	return Amount{Decimal: parseLenientDecimal(s)}
}

// UnmarshalJSON implements json.Unmarshaler. It never fails.
func (a *Amount) UnmarshalJSON(data []byte) error {
	a.Decimal = parseLenientDecimal(string(data))
	return nil
}

// MarshalJSON writes the amount as a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func parseLenientDecimal(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" || s == "null" {
		return decimal.Zero
	}
	s = strings.Trim(s, `"`)
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Date is a nullable date decoded leniently from the backend.
// A zero Date means the value was null, empty or malformed.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// ParseDate parses s using the accepted backend layouts.
// Date-only values are placed at UTC midnight.
func ParseDate(s string) Date {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return Date{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return Date{Time: t}
		}
	}
	return Date{}
}

// UnmarshalJSON implements json.Unmarshaler. It never fails.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*d = Date{}
		return nil
	}
	*d = ParseDate(strings.Trim(s, `"`))
	return nil
}

// MarshalJSON writes null for a zero date and RFC 3339 otherwise.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Time.Format(time.RFC3339) + `"`), nil
}

// Ptr returns nil for a zero date and a pointer to the time otherwise.
func (d Date) Ptr() *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}
