// Package render turns domain values into terminal tables and spreadsheet rows.
//
// Columns declare a Kind; the Registry maps each kind to a Formatter, so a new
// column kind is added by registering a formatter rather than by editing the
// table code.
package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies how a column value is formatted.
type Kind string

const (
	KindText    Kind = "text"
	KindMoney   Kind = "money"
	KindPercent Kind = "percent"
	KindDate    Kind = "date"
	KindInt     Kind = "int"
	KindStatus  Kind = "status"
)

// Formatter renders a single cell value.
type Formatter interface {
	// Format returns the display text for v.
	Format(v interface{}) string

	// Raw returns the value written to a spreadsheet cell.
	Raw(v interface{}) interface{}

	// AlignRight reports whether the column is right aligned in terminals.
	AlignRight() bool
}

// Registry maps column kinds to formatters.
type Registry struct {
	formatters map[Kind]Formatter
}

// NewRegistry returns a registry with the built-in formatters.
func NewRegistry() *Registry {
	r := &Registry{formatters: make(map[Kind]Formatter)}
	r.Register(KindText, textFormatter{})
	r.Register(KindStatus, textFormatter{})
	r.Register(KindMoney, moneyFormatter{})
	r.Register(KindPercent, percentFormatter{})
	r.Register(KindDate, dateFormatter{})
	r.Register(KindInt, intFormatter{})
	return r
}

// Register adds or replaces the formatter for kind.
func (r *Registry) Register(kind Kind, f Formatter) {
	r.formatters[kind] = f
}

// Lookup returns the formatter for kind, falling back to text.
func (r *Registry) Lookup(kind Kind) Formatter {
	if f, ok := r.formatters[kind]; ok {
		return f
	}
	return textFormatter{}
}

type textFormatter struct{}

func (textFormatter) Format(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func (f textFormatter) Raw(v interface{}) interface{} { return f.Format(v) }
func (textFormatter) AlignRight() bool                { return false }

// moneyFormatter prints "$1,234.50"; negative amounts as "-$1,234.50".
type moneyFormatter struct{}

func (moneyFormatter) Format(v interface{}) string {
	d, ok := toDecimal(v)
	if !ok {
		return ""
	}
	return FormatMoney(d)
}

func (moneyFormatter) Raw(v interface{}) interface{} {
	d, ok := toDecimal(v)
	if !ok {
		return ""
	}
	f, _ := d.Round(2).Float64()
	return f
}

func (moneyFormatter) AlignRight() bool { return true }

type percentFormatter struct{}

func (percentFormatter) Format(v interface{}) string {
	d, ok := toDecimal(v)
	if !ok {
		return ""
	}
	return d.StringFixed(2) + "%"
}

func (percentFormatter) Raw(v interface{}) interface{} {
	d, ok := toDecimal(v)
	if !ok {
		return ""
	}
	f, _ := d.Round(2).Float64()
	return f
}

func (percentFormatter) AlignRight() bool { return true }

// dateFormatter prints YYYY-MM-DD and leaves missing dates blank.
type dateFormatter struct{}

func (dateFormatter) Format(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	}
	return ""
}

func (f dateFormatter) Raw(v interface{}) interface{} { return f.Format(v) }
func (dateFormatter) AlignRight() bool                { return false }

type intFormatter struct{}

func (intFormatter) Format(v interface{}) string {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	}
	return ""
}

func (intFormatter) Raw(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return n
	}
	return ""
}

func (intFormatter) AlignRight() bool { return true }

func toDecimal(v interface{}) (decimal.Decimal, bool) {
	switch d := v.(type) {
	case decimal.Decimal:
		return d, true
	case *decimal.Decimal:
		if d == nil {
			return decimal.Zero, false
		}
		return *d, true
	case interface{ StringFixed(int32) string }:
		// models.Amount and other decimal wrappers.
		parsed, err := decimal.NewFromString(d.StringFixed(6))
		return parsed, err == nil
	}
	return decimal.Zero, false
}

// FormatMoney formats d with two decimals and thousands separators.
func FormatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	sign := ""
	if d.Round(2).IsNegative() {
		sign = "-"
	}
	return sign + "$" + b.String() + frac
}
