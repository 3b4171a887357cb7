package services

import (
	"context"

	"cxc/pkg/models"
)

// Backend is the set of backend operations the CLI workflows rely on.
type Backend interface {
	// PendingInvoicesByAgent returns invoices with outstanding balance grouped by
	// agent. An empty agentID returns every agent.
	PendingInvoicesByAgent(ctx context.Context, agentID string) ([]models.AgentInvoices, error)

	// ListCreditBalances returns the credit balances of an agent.
	ListCreditBalances(ctx context.Context, agentID string) ([]models.CreditBalance, error)

	// CreateCreditBalance registers a new credit balance.
	CreateCreditBalance(ctx context.Context, req CreditBalanceRequest) (*models.CreditBalance, error)

	// ApplyCredit applies credit balances to invoices.
	ApplyCredit(ctx context.Context, app CreditApplication) error

	// CreateInvoiceFromUpload registers an uploaded CFDI and returns its id.
	CreateInvoiceFromUpload(ctx context.Context, upload InvoiceUpload) (string, error)

	// AssignInvoiceItems links settlement rows to an invoice.
	AssignInvoiceItems(ctx context.Context, assignment ItemAssignment) error
}

// CreditApplication is the body of the invoice-payment assignment call.
type CreditApplication struct {
	Saldos     []AppliedBalance     `json:"ejemplo_saldos"`
	AgentID    string               `json:"id_agente"`
	InvoiceIDs []string             `json:"id_factura"`
	Detalle    []InvoiceApplication `json:"detalle_aplicacion"`
}

// AppliedBalance is the portion of one credit balance used by an application.
type AppliedBalance struct {
	IDSaldo       string        `json:"id_saldo"`
	Monto         models.Amount `json:"monto"`
	SaldoActual   models.Amount `json:"saldo_actual"`
	MontoAplicado models.Amount `json:"monto_aplicado"`
	SaldoRestante models.Amount `json:"saldo_restante"`
	FormaPago     string        `json:"forma_pago,omitempty"`
}

// InvoiceApplication is the amount applied to one invoice.
type InvoiceApplication struct {
	IDFactura     string        `json:"id_factura"`
	MontoAplicado models.Amount `json:"monto_aplicado"`
	SaldoRestante models.Amount `json:"saldo_restante"`
}

// CreditBalanceRequest creates a credit balance funded by SPEI, a manual
// Stripe charge or a Stripe payment link.
type CreditBalanceRequest struct {
	AgentID    string               `json:"id_agente"`
	Monto      models.Amount        `json:"monto"`
	FormaPago  models.PaymentMethod `json:"forma_pago"`
	Referencia string               `json:"referencia,omitempty"`
	Comentario string               `json:"comentario,omitempty"`
}

// InvoiceUpload is a CFDI read on the client and sent for registration.
type InvoiceUpload struct {
	UUID             string        `json:"uuid_factura"`
	RFCEmisor        string        `json:"rfc_emisor"`
	NombreEmisor     string        `json:"nombre_emisor,omitempty"`
	RFCReceptor      string        `json:"rfc_receptor"`
	Serie            string        `json:"serie,omitempty"`
	Folio            string        `json:"folio,omitempty"`
	Total            models.Amount `json:"total"`
	Subtotal         models.Amount `json:"subtotal"`
	Impuestos        models.Amount `json:"impuestos"`
	Moneda           string        `json:"moneda,omitempty"`
	MetodoPago       string        `json:"metodo_pago,omitempty"`
	FormaPago        string        `json:"forma_pago,omitempty"`
	FechaEmision     string        `json:"fecha_emision"`
	FechaVencimiento *string       `json:"fecha_vencimiento"`
	IDProveedor      string        `json:"id_proveedor,omitempty"`
	URLPDF           string        `json:"url_pdf,omitempty"`
	URLXML           string        `json:"url_xml,omitempty"`
}

// ItemAssignment links settlement rows to a registered invoice.
type ItemAssignment struct {
	IDFactura string         `json:"id_factura"`
	Items     []AssignedItem `json:"items"`
}

// AssignedItem is the amount of an invoice assigned to one settlement row.
type AssignedItem struct {
	IDSolicitudProveedor string        `json:"id_solicitud_proveedor"`
	Monto                models.Amount `json:"monto_asignado"`
}
