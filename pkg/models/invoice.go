package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Invoice is a CFDI (factura) as returned by the backend with its outstanding balance.
type Invoice struct {
	// Identifiers
	ID   string `json:"id"`
	UUID string `json:"uuid"`

	// Taxpayers
	RFCReceptor string `json:"rfc_receptor"`
	RFCEmisor   string `json:"rfc_emisor"`

	// Owning agent (client). Filled from the enclosing group when absent.
	AgentID   string `json:"id_agente,omitempty"`
	AgentName string `json:"nombre_agente,omitempty"`

	// Amounts. Saldo never exceeds Total.
	Total     Amount `json:"total"`
	Subtotal  Amount `json:"subtotal"`
	Impuestos Amount `json:"impuestos"`
	Saldo     Amount `json:"saldo"`

	// Dates. FechaVencimiento may be null.
	FechaEmision     Date `json:"fecha_emision"`
	FechaVencimiento Date `json:"fecha_vencimiento"`

	Estado string `json:"estado"`
}

// UnmarshalJSON accepts "id_factura" as an alias for "id" and numeric ids.
func (i *Invoice) UnmarshalJSON(data []byte) error {
	type alias Invoice
	aux := struct {
		*alias
		ID        json.RawMessage `json:"id"`
		IDFactura json.RawMessage `json:"id_factura"`
		AgentID   json.RawMessage `json:"id_agente"`
	}{alias: (*alias)(i)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	i.ID = rawID(aux.ID)
	if i.ID == "" {
		i.ID = rawID(aux.IDFactura)
	}
	i.AgentID = rawID(aux.AgentID)
	return nil
}

// AgentInvoices is one group of the pending-invoices-by-agent response.
type AgentInvoices struct {
	AgentID   string    `json:"id_agente"`
	AgentName string    `json:"nombre_agente"`
	Invoices  []Invoice `json:"facturas_json"`
}

// UnmarshalJSON accepts facturas_json either as an array or as a JSON-encoded string,
// which is what the backend's JSON aggregation returns on some drivers.
func (g *AgentInvoices) UnmarshalJSON(data []byte) error {
	var aux struct {
		AgentID   json.RawMessage `json:"id_agente"`
		AgentName string          `json:"nombre_agente"`
		Invoices  json.RawMessage `json:"facturas_json"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	g.AgentID = rawID(aux.AgentID)
	g.AgentName = aux.AgentName
	g.Invoices = nil

	raw := aux.Invoices
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return err
		}
		if strings.TrimSpace(encoded) == "" {
			return nil
		}
		raw = json.RawMessage(encoded)
	}
	return json.Unmarshal(raw, &g.Invoices)
}

// rawID renders a JSON string or number id as a string.
func rawID(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		return strings.TrimSpace(unquoted)
	}
	return s
}

// ID is an identifier the backend sends either as a JSON string or a number.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	*id = ID(rawID(data))
	return nil
}

// String returns the id as a plain string.
func (id ID) String() string {
	return string(id)
}
