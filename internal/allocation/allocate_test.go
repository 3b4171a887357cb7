package allocation

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cxc/pkg/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sumApplied(r *Result) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range r.Allocations {
		sum = sum.Add(a.MontoAplicado)
	}
	return sum
}

func TestAllocate_TwoInvoicesFullCover(t *testing.T) {
	res, err := Allocate(d("1500"), []Target{{ID: "f1", Saldo: d("1000")}, {ID: "f2", Saldo: d("500")}})
	require.NoError(t, err)
	require.Len(t, res.Allocations, 2)

	assert.True(t, d("1000").Equal(res.Allocations[0].MontoAplicado))
	assert.True(t, d("500").Equal(res.Allocations[1].MontoAplicado), "last invoice gets the remainder, not the full amount")
	assert.True(t, res.Allocations[0].SaldoRestante.IsZero())
	assert.True(t, res.Allocations[1].SaldoRestante.IsZero())
	assert.True(t, d("1500").Equal(res.MontoAplicable))
	assert.True(t, res.CreditRemaining.IsZero())
	assert.Equal(t, []string{"f1", "f2"}, res.FullyPaid())
	assert.Equal(t, []string{"f1", "f2"}, res.InvoiceIDs())
}

func TestAllocate_PartialCredit(t *testing.T) {
	res, err := Allocate(d("600"), []Target{{ID: "f1", Saldo: d("1000")}, {ID: "f2", Saldo: d("500")}})
	require.NoError(t, err)

	assert.True(t, d("400").Equal(res.Allocations[0].MontoAplicado))
	assert.True(t, d("600").Equal(res.Allocations[0].SaldoRestante))
	assert.True(t, d("200").Equal(res.Allocations[1].MontoAplicado))
	assert.True(t, d("300").Equal(res.Allocations[1].SaldoRestante))
	assert.Empty(t, res.FullyPaid())
}

func TestAllocate_CreditExceedsBalance(t *testing.T) {
	res, err := Allocate(d("5000"), []Target{{ID: "f1", Saldo: d("1200.50")}})
	require.NoError(t, err)

	assert.True(t, d("1200.50").Equal(res.MontoAplicable))
	assert.True(t, d("1200.50").Equal(res.Allocations[0].MontoAplicado))
	assert.True(t, d("3799.50").Equal(res.CreditRemaining))
}

func TestAllocate_RoundingGoesToLast(t *testing.T) {
	res, err := Allocate(d("100"), []Target{
		{ID: "a", Saldo: d("100")},
		{ID: "b", Saldo: d("100")},
		{ID: "c", Saldo: d("100")},
	})
	require.NoError(t, err)

	assert.True(t, d("33.33").Equal(res.Allocations[0].MontoAplicado))
	assert.True(t, d("33.33").Equal(res.Allocations[1].MontoAplicado))
	assert.True(t, d("33.34").Equal(res.Allocations[2].MontoAplicado))
	assert.True(t, d("100").Equal(sumApplied(res)))
}

func TestAllocate_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		credit  string
		targets []Target
	}{
		{name: "zero total balance", credit: "100", targets: []Target{{ID: "f1", Saldo: d("0")}, {ID: "f2", Saldo: d("0")}}},
		{name: "no targets", credit: "100", targets: nil},
		{name: "negative credit", credit: "-1", targets: []Target{{ID: "f1", Saldo: d("10")}}},
		{name: "negative balance", credit: "10", targets: []Target{{ID: "f1", Saldo: d("-10")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Allocate(d(tt.credit), tt.targets)
			assert.Nil(t, res)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidAllocation))
			var invalidErr *InvalidAllocationError
			assert.True(t, errors.As(err, &invalidErr))
			assert.Equal(t, "Allocate", invalidErr.Op)
		})
	}
}

func TestAllocate_ZeroCredit(t *testing.T) {
	res, err := Allocate(decimal.Zero, []Target{{ID: "f1", Saldo: d("10")}, {ID: "f2", Saldo: d("5")}})
	require.NoError(t, err)
	assert.True(t, sumApplied(res).IsZero())
	assert.True(t, d("10").Equal(res.Allocations[0].SaldoRestante))
}

func TestAllocate_SumEqualsApplicable(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		n := rng.Intn(8) + 1
		targets := make([]Target, n)
		for j := range targets {
			targets[j] = Target{ID: string(rune('a' + j)), Saldo: decimal.NewFromInt(rng.Int63n(500000) + 1).Shift(-2)}
		}
		credit := decimal.NewFromInt(rng.Int63n(2000000)).Shift(-2)

		res, err := Allocate(credit, targets)
		require.NoError(t, err)

		require.True(t, sumApplied(res).Equal(res.MontoAplicable), "case %d: sum %s vs aplicable %s", i, sumApplied(res), res.MontoAplicable)
		requireWithinSaldo(t, res)
	}
}

func requireWithinSaldo(t *testing.T, res *Result) {
	t.Helper()
	for _, a := range res.Allocations {
		require.False(t, a.MontoAplicado.IsNegative(), "%s: monto %s", a.ID, a.MontoAplicado)
		require.True(t, a.MontoAplicado.LessThanOrEqual(a.Saldo), "%s: monto %s above saldo %s", a.ID, a.MontoAplicado, a.Saldo)
		require.False(t, a.SaldoRestante.IsNegative(), "%s: restante %s", a.ID, a.SaldoRestante)
		require.True(t, a.SaldoRestante.LessThanOrEqual(a.Saldo), "%s: restante %s above saldo %s", a.ID, a.SaldoRestante, a.Saldo)
	}
}

func TestAllocate_RoundingNeverOverdrawsLastInvoice(t *testing.T) {
	targets := make([]Target, 0, 11)
	for i := 0; i < 10; i++ {
		targets = append(targets, Target{ID: string(rune('a' + i)), Saldo: d("1.00")})
	}
	targets = append(targets, Target{ID: "small", Saldo: d("0.01")})

	res, err := Allocate(d("9.96"), targets)
	require.NoError(t, err)

	assert.True(t, d("9.96").Equal(sumApplied(res)))
	requireWithinSaldo(t, res)

	last := res.Allocations[len(res.Allocations)-1]
	assert.Equal(t, "small", last.ID)
	assert.True(t, last.SaldoRestante.LessThanOrEqual(d("0.01")))
}

func TestAllocate_ManySmallShares(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 300; i++ {
		n := rng.Intn(20) + 2
		targets := make([]Target, n)
		total := decimal.Zero
		for j := range targets {
			targets[j] = Target{ID: string(rune('a' + j)), Saldo: decimal.NewFromInt(rng.Int63n(300) + 1).Shift(-2)}
			total = total.Add(targets[j].Saldo)
		}
		credit := total.Sub(decimal.NewFromInt(rng.Int63n(10)).Shift(-2))
		if credit.IsNegative() {
			credit = decimal.Zero
		}

		res, err := Allocate(credit, targets)
		require.NoError(t, err)
		require.True(t, sumApplied(res).Equal(res.MontoAplicable), "case %d", i)
		requireWithinSaldo(t, res)
	}
}

func TestConsumeBalances(t *testing.T) {
	balances := []models.CreditBalance{
		{ID: "s1", SaldoActual: models.AmountFromString("300"), Estado: models.BalancePending},
		{ID: "s2", SaldoActual: models.AmountFromString("0"), Estado: models.BalancePending},
		{ID: "s3", SaldoActual: models.AmountFromString("900"), Estado: models.BalanceApplied},
		{ID: "s4", SaldoActual: models.AmountFromString("500"), Estado: models.BalancePending},
	}

	assert.True(t, d("800").Equal(AvailableCredit(balances)))

	uses, err := ConsumeBalances(balances, d("450"))
	require.NoError(t, err)
	require.Len(t, uses, 2)
	assert.Equal(t, "s1", uses[0].Balance.ID)
	assert.True(t, d("300").Equal(uses[0].Aplicado))
	assert.True(t, uses[0].SaldoNuevo.IsZero())
	assert.Equal(t, "s4", uses[1].Balance.ID)
	assert.True(t, d("150").Equal(uses[1].Aplicado))
	assert.True(t, d("350").Equal(uses[1].SaldoNuevo))

	_, err = ConsumeBalances(balances, d("801"))
	assert.ErrorIs(t, err, ErrInvalidAllocation)

	uses, err = ConsumeBalances(balances, decimal.Zero)
	require.NoError(t, err)
	assert.Empty(t, uses)
}
