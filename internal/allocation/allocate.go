// Package allocation spreads a credit balance (saldo a favor) across selected
// invoices in proportion to their outstanding balances.
package allocation

import (
	"github.com/shopspring/decimal"
)

// Target is an invoice selected to receive part of a credit balance.
type Target struct {
	ID    string
	Saldo decimal.Decimal
}

// Allocation is the amount applied to one invoice.
type Allocation struct {
	ID            string
	Saldo         decimal.Decimal // outstanding before the application
	MontoAplicado decimal.Decimal
	SaldoRestante decimal.Decimal
}

// Result is the outcome of an allocation.
type Result struct {
	Allocations []Allocation

	// TotalSaldo is the sum of the selected invoices' balances.
	TotalSaldo decimal.Decimal

	// MontoAplicable is min(credit, TotalSaldo); the allocations add up to it exactly.
	MontoAplicable decimal.Decimal

	// CreditRemaining is the part of the credit left unused.
	CreditRemaining decimal.Decimal
}

// InvoiceIDs returns the target ids in allocation order.
func (r *Result) InvoiceIDs() []string {
	ids := make([]string, 0, len(r.Allocations))
	for _, a := range r.Allocations {
		ids = append(ids, a.ID)
	}
	return ids
}

// FullyPaid returns the ids whose balance drops to zero.
func (r *Result) FullyPaid() []string {
	var ids []string
	for _, a := range r.Allocations {
		if a.SaldoRestante.IsZero() {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// Allocate applies credit to targets proportionally to each target's share of
// the total selected balance. Every target but the last receives its rounded
// share, clamped so the targets after it can absorb the rest; the last
// receives the remainder. The amounts add up to min(credit, total) exactly
// and no target receives less than zero or more than its saldo.
func Allocate(credit decimal.Decimal, targets []Target) (*Result, error) {
	const op = "Allocate"

	if len(targets) == 0 {
		return nil, invalid(op, "no invoices selected")
	}
	if credit.IsNegative() {
		return nil, invalid(op, "credit amount %s is negative", credit)
	}

	total := decimal.Zero
	for _, t := range targets {
		if t.Saldo.IsNegative() {
			return nil, invalid(op, "invoice %s has negative balance %s", t.ID, t.Saldo)
		}
		total = total.Add(t.Saldo)
	}
	if total.IsZero() {
		return nil, invalid(op, "selected invoices have no outstanding balance")
	}

	aplicable := decimal.Min(credit, total)

	allocations := make([]Allocation, 0, len(targets))
	pending := aplicable // credit not yet allocated
	later := total       // saldo of the targets not yet processed
	last := len(targets) - 1

	for i, t := range targets {
		later = later.Sub(t.Saldo)

		var monto decimal.Decimal
		if i == last {
			monto = pending
		} else {
			// The rounded share is kept within what this invoice can take and
			// what the remaining invoices can still absorb, so 0 <= pending <= later
			// holds after every step.
			lo := decimal.Max(decimal.Zero, pending.Sub(later))
			hi := decimal.Min(t.Saldo, pending)
			monto = aplicable.Mul(t.Saldo).Div(total).Round(2)
			monto = decimal.Min(decimal.Max(monto, lo), hi)
		}

		allocations = append(allocations, Allocation{
			ID:            t.ID,
			Saldo:         t.Saldo,
			MontoAplicado: monto,
			SaldoRestante: t.Saldo.Sub(monto),
		})
		pending = pending.Sub(monto)
	}

	return &Result{
		Allocations:     allocations,
		TotalSaldo:      total,
		MontoAplicable:  aplicable,
		CreditRemaining: credit.Sub(aplicable),
	}, nil
}
