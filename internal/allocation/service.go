package allocation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"cxc/internal/logger"
	"cxc/pkg/models"
	"cxc/pkg/services"
)

// CreditBackend is the part of the backend used to apply credit balances.
type CreditBackend interface {
	ListCreditBalances(ctx context.Context, agentID string) ([]models.CreditBalance, error)
	PendingInvoicesByAgent(ctx context.Context, agentID string) ([]models.AgentInvoices, error)
	ApplyCredit(ctx context.Context, app services.CreditApplication) error
}

// Request selects the balances and invoices of one agent.
type Request struct {
	AgentID    string
	BalanceIDs []string
	InvoiceIDs []string

	// Amount caps the credit applied; nil applies everything available in
	// the selected balances.
	Amount *decimal.Decimal
}

// Plan is a computed credit application that has not been sent yet.
type Plan struct {
	AgentID string
	Uses    []BalanceUse
	Result  *Result
}

// Application builds the backend payload for the plan.
func (p *Plan) Application() services.CreditApplication {
	app := services.CreditApplication{
		AgentID:    p.AgentID,
		InvoiceIDs: p.Result.InvoiceIDs(),
		Saldos:     make([]services.AppliedBalance, 0, len(p.Uses)),
		Detalle:    make([]services.InvoiceApplication, 0, len(p.Result.Allocations)),
	}

	for _, u := range p.Uses {
		app.Saldos = append(app.Saldos, services.AppliedBalance{
			IDSaldo:       u.Balance.ID,
			Monto:         u.Balance.Monto,
			SaldoActual:   models.NewAmount(u.SaldoAnterior),
			MontoAplicado: models.NewAmount(u.Aplicado),
			SaldoRestante: models.NewAmount(u.SaldoNuevo),
			FormaPago:     u.Balance.FormaPago,
		})
	}
	for _, a := range p.Result.Allocations {
		app.Detalle = append(app.Detalle, services.InvoiceApplication{
			IDFactura:     a.ID,
			MontoAplicado: models.NewAmount(a.MontoAplicado),
			SaldoRestante: models.NewAmount(a.SaldoRestante),
		})
	}
	return app
}

// Service plans and applies credit balances to invoices.
type Service struct {
	backend CreditBackend
	log     zerolog.Logger
}

// NewService creates a new credit application service.
func NewService(backend CreditBackend) *Service {
	return &Service{
		backend: backend,
		log:     logger.WithComponent("allocation"),
	}
}

// Plan loads the agent's balances and pending invoices and computes the
// allocation for req without changing anything on the backend.
func (s *Service) Plan(ctx context.Context, req Request) (*Plan, error) {
	const op = "Plan"

	if req.AgentID == "" {
		return nil, fmt.Errorf("%s: agent id is required", op)
	}
	if len(req.BalanceIDs) == 0 {
		return nil, invalid(op, "no credit balances selected")
	}

	allBalances, err := s.backend.ListCreditBalances(ctx, req.AgentID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list credit balances: %w", op, err)
	}
	balances, err := pickBalances(allBalances, req.BalanceIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	groups, err := s.backend.PendingInvoicesByAgent(ctx, req.AgentID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list pending invoices: %w", op, err)
	}
	targets, err := pickTargets(groups, req.InvoiceIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	credit := AvailableCredit(balances)
	if req.Amount != nil {
		if req.Amount.GreaterThan(credit) {
			return nil, invalid(op, "amount %s exceeds available credit %s", req.Amount.StringFixed(2), credit.StringFixed(2))
		}
		credit = *req.Amount
	}

	result, err := Allocate(credit, targets)
	if err != nil {
		return nil, err
	}

	uses, err := ConsumeBalances(balances, result.MontoAplicable)
	if err != nil {
		return nil, err
	}

	log := logger.WithAgent(s.log, req.AgentID)
	log.Info().
		Int("balances", len(uses)).
		Int("invoices", len(result.Allocations)).
		Str("aplicable", result.MontoAplicable.StringFixed(2)).
		Str("credit_remaining", result.CreditRemaining.StringFixed(2)).
		Msg("Credit application planned")

	return &Plan{AgentID: req.AgentID, Uses: uses, Result: result}, nil
}

// Apply sends the plan to the backend.
func (s *Service) Apply(ctx context.Context, plan *Plan) error {
	const op = "Apply"

	if err := s.backend.ApplyCredit(ctx, plan.Application()); err != nil {
		return fmt.Errorf("%s: failed to apply credit: %w", op, err)
	}

	log := logger.WithAgent(s.log, plan.AgentID)
	log.Info().
		Strs("fully_paid", plan.Result.FullyPaid()).
		Msg("Credit applied successfully")
	return nil
}

// pickBalances returns the requested balances in request order.
func pickBalances(all []models.CreditBalance, ids []string) ([]models.CreditBalance, error) {
	byID := make(map[string]models.CreditBalance, len(all))
	for _, b := range all {
		byID[b.ID] = b
	}

	picked := make([]models.CreditBalance, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("%w: balance %s", ErrDuplicateID, id)
		}
		seen[id] = true

		b, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownBalance, id)
		}
		picked = append(picked, b)
	}
	return picked, nil
}

// pickTargets returns the requested invoices in request order.
func pickTargets(groups []models.AgentInvoices, ids []string) ([]Target, error) {
	byID := make(map[string]models.Invoice)
	for _, g := range groups {
		for _, inv := range g.Invoices {
			byID[inv.ID] = inv
		}
	}

	targets := make([]Target, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("%w: invoice %s", ErrDuplicateID, id)
		}
		seen[id] = true

		inv, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownInvoice, id)
		}
		targets = append(targets, Target{ID: inv.ID, Saldo: inv.Saldo.Decimal})
	}
	return targets, nil
}
