package cmd

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cxc/internal/cfdi"
	"cxc/internal/reconciliation"
	"cxc/internal/viewstate"
	"cxc/pkg/models"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList(" a, b,,c ,"))
	assert.Nil(t, splitList(""))
}

func TestSelectColumns(t *testing.T) {
	table, err := selectColumns(reconciliationTable(), "")
	require.NoError(t, err)
	assert.Len(t, table.Headers(), len(reconciliationTable().Headers()))

	table, err = selectColumns(reconciliationTable(), "key, status,difference")
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Estatus", "Diferencia"}, table.Headers())

	_, err = selectColumns(reconciliationTable(), "key,colour")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"colour"`)
}

func TestSelectAllFilter(t *testing.T) {
	rows := []reconciliation.Row{
		{Key: "1", RFC: "ABC010101AB1", Diferencia: decimal.NewFromInt(100)},
		{Key: "2", RFC: "XABC010101AB1", Diferencia: decimal.NewFromInt(50)},
		{Key: "3", RFC: "ABC010101AB1", Diferencia: decimal.Zero},
	}

	f, err := selectAllFilter(reconciliation.Filter{}, "abc010101ab1")
	require.NoError(t, err)
	assert.True(t, f.ExactRFC)
	assert.True(t, f.OnlySelectable)

	got := f.Apply(rows)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].Key)

	_, err = selectAllFilter(reconciliation.Filter{RFC: "ABC010101AB1"}, "ABC010101AB1")
	assert.NoError(t, err)

	_, err = selectAllFilter(reconciliation.Filter{RFC: "XABC010101AB1"}, "ABC010101AB1")
	assert.ErrorIs(t, err, cfdi.ErrRFCMismatch)
}

func TestParseAmounts(t *testing.T) {
	amounts, err := parseAmounts([]string{"10=1,500.50", "11 = $20"})
	require.NoError(t, err)
	assert.True(t, amounts["10"].Equal(decimal.RequireFromString("1500.5")))
	assert.True(t, amounts["11"].Equal(decimal.NewFromInt(20)))

	_, err = parseAmounts([]string{"10"})
	assert.Error(t, err)
	_, err = parseAmounts([]string{"10=abc"})
	assert.Error(t, err)
	_, err = parseAmounts([]string{"=5"})
	assert.Error(t, err)
}

func TestParseDay(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	day, err := parseDay("2025-06-30", loc)
	require.NoError(t, err)
	assert.Equal(t, loc, day.Location())
	assert.Equal(t, 30, day.Day())

	_, err = parseDay("30/06/2025", loc)
	assert.Error(t, err)
}

func TestEditValue(t *testing.T) {
	values := map[string]interface{}{
		"null":   nil,
		"TRUE":   true,
		"false":  false,
		"1500.5": json.Number("1500.5"),
		"pagado": "pagado",
		"":       "",
	}
	for in, want := range values {
		assert.Equal(t, want, editValue(in), "input %q", in)
	}
}

func TestBalanceRequest(t *testing.T) {
	draft := viewstate.Draft{
		{Field: "agent", Value: "A1"},
		{Field: "amount", Value: "5,000"},
		{Field: "method", Value: "transferencia"},
		{Field: "reference", Value: "123"},
	}

	req, err := balanceRequest(draft)
	require.NoError(t, err)
	assert.Equal(t, "A1", req.AgentID)
	assert.Equal(t, models.MethodSPEI, req.FormaPago)
	assert.True(t, req.Monto.Equal(decimal.NewFromInt(5000)))

	tests := []struct {
		name  string
		draft viewstate.Draft
	}{
		{"missing agent", viewstate.Draft{{Field: "amount", Value: "1"}, {Field: "method", Value: "link"}}},
		{"zero amount", viewstate.Draft{{Field: "agent", Value: "A1"}, {Field: "amount", Value: "0"}, {Field: "method", Value: "link"}}},
		{"bad method", viewstate.Draft{{Field: "agent", Value: "A1"}, {Field: "amount", Value: "1"}, {Field: "method", Value: "cash"}}},
		{"spei without reference", viewstate.Draft{{Field: "agent", Value: "A1"}, {Field: "amount", Value: "1"}, {Field: "method", Value: "spei"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := balanceRequest(tt.draft)
			assert.Error(t, err)
		})
	}
}
