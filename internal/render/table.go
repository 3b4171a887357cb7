package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Column describes one column of a Table.
type Column[T any] struct {
	ID     string
	Header string
	Kind   Kind
	Value  func(T) interface{}
}

// Table renders rows of T with an ordered list of columns.
type Table[T any] struct {
	columns  []Column[T]
	registry *Registry
}

// NewTable creates a table. A nil registry uses NewRegistry().
func NewTable[T any](registry *Registry, columns ...Column[T]) *Table[T] {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Table[T]{columns: columns, registry: registry}
}

// Headers returns the column headers in order.
func (t *Table[T]) Headers() []string {
	headers := make([]string, len(t.columns))
	for i, c := range t.columns {
		headers[i] = c.Header
	}
	return headers
}

// IDs returns the column ids in display order.
func (t *Table[T]) IDs() []string {
	ids := make([]string, len(t.columns))
	for i, c := range t.columns {
		ids[i] = c.ID
	}
	return ids
}

// Select returns a table restricted to the given column ids, in the given
// order. Unknown ids are ignored.
func (t *Table[T]) Select(ids ...string) *Table[T] {
	byID := make(map[string]Column[T], len(t.columns))
	for _, c := range t.columns {
		byID[c.ID] = c
	}
	cols := make([]Column[T], 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			cols = append(cols, c)
		}
	}
	return &Table[T]{columns: cols, registry: t.registry}
}

// Cells returns the formatted text of every cell.
func (t *Table[T]) Cells(rows []T) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(t.columns))
		for i, c := range t.columns {
			cells[i] = t.registry.Lookup(c.Kind).Format(c.Value(row))
		}
		out = append(out, cells)
	}
	return out
}

// Values returns raw cell values for a spreadsheet.
func (t *Table[T]) Values(rows []T) [][]interface{} {
	out := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		values := make([]interface{}, len(t.columns))
		for i, c := range t.columns {
			values[i] = t.registry.Lookup(c.Kind).Raw(c.Value(row))
		}
		out = append(out, values)
	}
	return out
}

// Render writes an aligned table with a header line. Footer rows, when given,
// are separated from the body by a rule. Money, percent and int columns are
// right aligned.
func (t *Table[T]) Render(w io.Writer, rows []T, footer ...T) error {
	body := t.Cells(rows)
	foot := t.Cells(footer)

	widths := make([]int, len(t.columns))
	for i, c := range t.columns {
		widths[i] = utf8.RuneCountInString(c.Header)
	}
	for _, cells := range append(append([][]string{}, body...), foot...) {
		for i, cell := range cells {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	rule := make([]string, len(t.columns))
	for i := range rule {
		rule[i] = strings.Repeat("-", widths[i])
	}

	lines := [][]string{t.Headers(), rule}
	lines = append(lines, body...)
	if len(foot) > 0 {
		lines = append(lines, rule)
		lines = append(lines, foot...)
	}

	for _, cells := range lines {
		if _, err := fmt.Fprintln(w, t.line(cells, widths)); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table[T]) line(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		pad := strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell))
		if t.registry.Lookup(t.columns[i].Kind).AlignRight() {
			parts[i] = pad + cell
		} else {
			parts[i] = cell + pad
		}
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
