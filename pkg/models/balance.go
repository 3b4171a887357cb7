package models

import (
	"encoding/json"
	"strings"
)

// BalanceStatus is the lifecycle state of a credit balance.
type BalanceStatus string

const (
	BalancePending BalanceStatus = "pending"
	BalanceApplied BalanceStatus = "applied"
)

// PaymentMethod is how a credit balance was funded.
type PaymentMethod string

const (
	MethodSPEI         PaymentMethod = "spei"
	MethodStripeManual PaymentMethod = "stripe"
	MethodStripeLink   PaymentMethod = "link"
)

// ParsePaymentMethod maps user input to a PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spei", "transferencia", "transfer":
		return MethodSPEI, true
	case "stripe", "card", "tarjeta":
		return MethodStripeManual, true
	case "link", "payment_link":
		return MethodStripeLink, true
	}
	return "", false
}

// CreditBalance is a prepaid amount (saldo a favor) owned by an agent.
// SaldoActual is what remains after previous applications.
type CreditBalance struct {
	ID          string        `json:"id_saldo"`
	AgentID     string        `json:"id_agente"`
	Monto       Amount        `json:"monto"`
	SaldoActual Amount        `json:"saldo_actual"`
	FormaPago   string        `json:"forma_pago"`
	Referencia  string        `json:"referencia,omitempty"`
	Estado      BalanceStatus `json:"estado"`
	Fecha       Date          `json:"fecha_creacion"`
}

// Available reports whether the balance can still be drawn from.
func (b CreditBalance) Available() bool {
	return b.Estado != BalanceApplied && b.SaldoActual.IsPositive()
}

// UnmarshalJSON accepts numeric ids and "saldo" as an alias for "saldo_actual".
func (b *CreditBalance) UnmarshalJSON(data []byte) error {
	type alias CreditBalance
	aux := struct {
		*alias
		ID      json.RawMessage `json:"id_saldo"`
		AgentID json.RawMessage `json:"id_agente"`
		Saldo   *Amount         `json:"saldo"`
	}{alias: (*alias)(b)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	b.ID = rawID(aux.ID)
	b.AgentID = rawID(aux.AgentID)
	if b.SaldoActual.IsZero() && aux.Saldo != nil {
		b.SaldoActual = *aux.Saldo
	}
	return nil
}
