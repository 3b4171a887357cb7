package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cxc/pkg/models"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"5", "$5.00"},
		{"999.999", "$1,000.00"},
		{"1234.5", "$1,234.50"},
		{"1234567.891", "$1,234,567.89"},
		{"-45000", "-$45,000.00"},
		{"-0.001", "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestRegistry_Formatters(t *testing.T) {
	r := NewRegistry()
	due := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	var nilTime *time.Time

	assert.Equal(t, "$1,500.00", r.Lookup(KindMoney).Format(models.AmountFromString("1500")))
	assert.Equal(t, "$12.30", r.Lookup(KindMoney).Format(decimal.RequireFromString("12.3")))
	assert.Equal(t, "", r.Lookup(KindMoney).Format("not money"))
	assert.Equal(t, 12.35, r.Lookup(KindMoney).Raw(decimal.RequireFromString("12.345")))

	assert.Equal(t, "33.33%", r.Lookup(KindPercent).Format(decimal.RequireFromString("33.333")))
	assert.Equal(t, "2024-03-09", r.Lookup(KindDate).Format(due))
	assert.Equal(t, "2024-03-09", r.Lookup(KindDate).Format(&due))
	assert.Equal(t, "", r.Lookup(KindDate).Format(nilTime))
	assert.Equal(t, "7", r.Lookup(KindInt).Format(7))
	assert.Equal(t, 7, r.Lookup(KindInt).Raw(7))
	assert.Equal(t, "PARCIAL", r.Lookup(KindStatus).Format("PARCIAL"))

	// Unknown kinds fall back to text.
	assert.Equal(t, "x", r.Lookup(Kind("unknown")).Format("x"))
}

type upperFormatter struct{ textFormatter }

func (upperFormatter) Format(v interface{}) string {
	return strings.ToUpper(textFormatter{}.Format(v))
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register(KindStatus, upperFormatter{})
	assert.Equal(t, "PENDING", r.Lookup(KindStatus).Format("pending"))
}

type testRow struct {
	Name  string
	Saldo decimal.Decimal
	Days  int
}

func testTable() *Table[testRow] {
	return NewTable(nil,
		Column[testRow]{ID: "name", Header: "Agente", Kind: KindText, Value: func(r testRow) interface{} { return r.Name }},
		Column[testRow]{ID: "saldo", Header: "Saldo", Kind: KindMoney, Value: func(r testRow) interface{} { return r.Saldo }},
		Column[testRow]{ID: "days", Header: "Dias", Kind: KindInt, Value: func(r testRow) interface{} { return r.Days }},
	)
}

func TestTable_Render(t *testing.T) {
	rows := []testRow{
		{Name: "Ana", Saldo: decimal.RequireFromString("1500"), Days: 3},
		{Name: "Roberto", Saldo: decimal.RequireFromString("25.5"), Days: 31},
	}
	total := testRow{Name: "TOTAL", Saldo: decimal.RequireFromString("1525.5")}

	var buf bytes.Buffer
	require.NoError(t, testTable().Render(&buf, rows, total))

	want := "" +
		"Agente       Saldo  Dias\n" +
		"-------  ---------  ----\n" +
		"Ana      $1,500.00     3\n" +
		"Roberto     $25.50    31\n" +
		"-------  ---------  ----\n" +
		"TOTAL    $1,525.50     0\n"
	assert.Equal(t, want, buf.String())
}

func TestTable_ValuesAndSelect(t *testing.T) {
	rows := []testRow{{Name: "Ana", Saldo: decimal.RequireFromString("10.005"), Days: 2}}

	table := testTable()
	assert.Equal(t, []string{"Agente", "Saldo", "Dias"}, table.Headers())
	assert.Equal(t, [][]interface{}{{"Ana", 10.01, 2}}, table.Values(rows))

	assert.Equal(t, []string{"name", "saldo", "days"}, table.IDs())

	narrow := table.Select("days", "name", "missing")
	assert.Equal(t, []string{"days", "name"}, narrow.IDs())
	assert.Equal(t, []string{"Dias", "Agente"}, narrow.Headers())
	assert.Equal(t, [][]string{{"2", "Ana"}}, narrow.Cells(rows))
}
