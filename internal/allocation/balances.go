package allocation

import (
	"github.com/shopspring/decimal"

	"cxc/pkg/models"
)

// BalanceUse is the part of one credit balance consumed by an application.
type BalanceUse struct {
	Balance       models.CreditBalance
	Aplicado      decimal.Decimal
	SaldoAnterior decimal.Decimal
	SaldoNuevo    decimal.Decimal
}

// AvailableCredit sums the remaining amount of the usable balances.
func AvailableCredit(balances []models.CreditBalance) decimal.Decimal {
	total := decimal.Zero
	for _, b := range balances {
		if b.Available() {
			total = total.Add(b.SaldoActual.Decimal)
		}
	}
	return total
}

// ConsumeBalances draws amount from balances in the order given, each up to
// its remaining saldo. Balances that are applied or empty are skipped.
func ConsumeBalances(balances []models.CreditBalance, amount decimal.Decimal) ([]BalanceUse, error) {
	const op = "ConsumeBalances"

	if amount.IsNegative() {
		return nil, invalid(op, "amount %s is negative", amount)
	}
	if available := AvailableCredit(balances); available.LessThan(amount) {
		return nil, invalid(op, "amount %s exceeds available credit %s", amount, available)
	}

	remaining := amount
	uses := make([]BalanceUse, 0, len(balances))

	for _, b := range balances {
		if remaining.IsZero() {
			break
		}
		if !b.Available() {
			continue
		}

		saldo := b.SaldoActual.Decimal
		used := decimal.Min(remaining, saldo)

		uses = append(uses, BalanceUse{
			Balance:       b,
			Aplicado:      used,
			SaldoAnterior: saldo,
			SaldoNuevo:    saldo.Sub(used),
		})
		remaining = remaining.Sub(used)
	}

	return uses, nil
}
