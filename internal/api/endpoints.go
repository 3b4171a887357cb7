package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"cxc/internal/reconciliation"
	"cxc/pkg/models"
	"cxc/pkg/services"
)

var (
	_ services.Backend                = (*Client)(nil)
	_ reconciliation.SettlementSource = (*Client)(nil)
	_ reconciliation.SettlementEditor = (*Client)(nil)
)

// ListSettlements returns every provider settlement awaiting reconciliation.
func (c *Client) ListSettlements(ctx context.Context) ([]reconciliation.ProviderSettlementRecord, error) {
	const op = "ListSettlements"

	var resp struct {
		Data struct {
			Todos []reconciliation.ProviderSettlementRecord `json:"todos"`
		} `json:"data"`
	}
	if err := c.do(ctx, op, http.MethodGet, "/mia/pago_proveedor/solicitud", nil, nil, &resp); err != nil {
		return nil, err
	}

	c.log.Debug().Int("records", len(resp.Data.Todos)).Msg("Settlements fetched")
	return resp.Data.Todos, nil
}

// EditSettlement sets a single field of a settlement record.
func (c *Client) EditSettlement(ctx context.Context, id string, field string, value interface{}) error {
	const op = "EditSettlement"

	field = strings.TrimSpace(field)
	if id == "" || field == "" {
		return fmt.Errorf("%s: settlement id and field are required", op)
	}
	if field == "id_solicitud_proveedor" {
		return fmt.Errorf("%s: field %q cannot be edited", op, field)
	}

	body := map[string]interface{}{
		"id_solicitud_proveedor": id,
		field:                    value,
	}
	return c.do(ctx, op, http.MethodPatch, "/mia/pago_proveedor/edit", nil, body, nil)
}

// PendingInvoicesByAgent returns invoices with outstanding balance grouped by
// agent. An empty agentID returns every agent.
func (c *Client) PendingInvoicesByAgent(ctx context.Context, agentID string) ([]models.AgentInvoices, error) {
	const op = "PendingInvoicesByAgent"

	body := map[string]string{}
	if agentID != "" {
		body["id_agente"] = agentID
	}

	var raw json.RawMessage
	if err := c.do(ctx, op, http.MethodPost, "/mia/factura/getfacturasPagoPendienteByAgente", nil, body, &raw); err != nil {
		return nil, err
	}

	groups, err := decodeList[models.AgentInvoices](raw)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return groups, nil
}

// ApplyCredit applies credit balances to the invoices in app.
func (c *Client) ApplyCredit(ctx context.Context, app services.CreditApplication) error {
	const op = "ApplyCredit"

	if len(app.InvoiceIDs) == 0 {
		return fmt.Errorf("%s: at least one invoice is required", op)
	}
	return c.do(ctx, op, http.MethodPatch, "/mia/factura/AsignarFacturaPagos", nil, app, nil)
}

// CreateInvoiceFromUpload registers an uploaded CFDI and returns the new invoice id.
func (c *Client) CreateInvoiceFromUpload(ctx context.Context, upload services.InvoiceUpload) (string, error) {
	const op = "CreateInvoiceFromUpload"

	var resp struct {
		ID   models.ID `json:"id_factura"`
		Data *struct {
			ID models.ID `json:"id_factura"`
		} `json:"data"`
	}
	if err := c.do(ctx, op, http.MethodPost, "/mia/factura/CrearFacturaDesdeCarga", nil, upload, &resp); err != nil {
		return "", err
	}

	id := resp.ID.String()
	if id == "" && resp.Data != nil {
		id = resp.Data.ID.String()
	}
	if id == "" {
		return "", fmt.Errorf("%s: response did not include an invoice id", op)
	}
	return id, nil
}

// AssignInvoiceItems links settlement rows to an invoice.
func (c *Client) AssignInvoiceItems(ctx context.Context, assignment services.ItemAssignment) error {
	const op = "AssignInvoiceItems"

	if assignment.IDFactura == "" {
		return fmt.Errorf("%s: invoice id is required", op)
	}
	return c.do(ctx, op, http.MethodPatch, "/mia/factura/AsignarFacturaItems", nil, assignment, nil)
}

// ListCreditBalances returns the credit balances of an agent.
func (c *Client) ListCreditBalances(ctx context.Context, agentID string) ([]models.CreditBalance, error) {
	const op = "ListCreditBalances"

	if agentID == "" {
		return nil, fmt.Errorf("%s: agent id is required", op)
	}

	var raw json.RawMessage
	query := url.Values{"id_agente": {agentID}}
	if err := c.do(ctx, op, http.MethodGet, "/mia/saldo/agente", query, nil, &raw); err != nil {
		return nil, err
	}

	balances, err := decodeList[models.CreditBalance](raw)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return balances, nil
}

// CreateCreditBalance registers a new credit balance for an agent.
func (c *Client) CreateCreditBalance(ctx context.Context, req services.CreditBalanceRequest) (*models.CreditBalance, error) {
	const op = "CreateCreditBalance"

	if req.AgentID == "" {
		return nil, fmt.Errorf("%s: agent id is required", op)
	}
	if !req.Monto.IsPositive() {
		return nil, fmt.Errorf("%s: amount must be positive", op)
	}

	var raw json.RawMessage
	if err := c.do(ctx, op, http.MethodPost, "/mia/saldo/new", nil, req, &raw); err != nil {
		return nil, err
	}

	var wrapped struct {
		Data *models.CreditBalance `json:"data"`
	}
	var balance models.CreditBalance
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Data != nil {
		balance = *wrapped.Data
	} else if err := json.Unmarshal(raw, &balance); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	if balance.AgentID == "" {
		balance.AgentID = req.AgentID
	}
	return &balance, nil
}

// decodeList accepts a bare array or one wrapped in {"data": [...]}.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	var list []T
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Data, nil
}
