package reconciliation

import (
	"time"

	"github.com/shopspring/decimal"

	"cxc/pkg/models"
)

// ProviderSettlementRecord is one hotel booking cost awaiting reconciliation
// against a provider invoice (solicitud_proveedor), as sent by the backend.
type ProviderSettlementRecord struct {
	IDSolicitudProveedor models.ID `json:"id_solicitud_proveedor"` // primary row identity
	ID                   models.ID `json:"id"`                     // fallback identity
	IDSolicitud          models.ID `json:"id_solicitud"`           // parent booking request
	IDProveedor          models.ID `json:"id_proveedor"`

	Proveedor         string `json:"proveedor"` // razón social
	Hotel             string `json:"hotel"`
	CodigoReservacion string `json:"codigo_reservacion_hotel"`
	RFCProveedor      string `json:"rfc_proveedor"`

	CostoTotal models.Amount `json:"costo_total"` // provider cost
	Total      models.Amount `json:"total"`       // sale price

	CheckIn  models.Date `json:"check_in"`
	CheckOut models.Date `json:"check_out"`

	// Amount already matched to an invoice, first non-zero wins.
	TotalAplicable models.Amount `json:"total_aplicable"`
	TotalFacturado models.Amount `json:"total_facturado"`
	MontoFacturado models.Amount `json:"monto_facturado"`

	FormaPago       string `json:"forma_pago_solicitada"`
	EstadoSolicitud string `json:"estado_solicitud"`
}

// InvoiceStatus is the reconciliation state of a row.
type InvoiceStatus string

const (
	StatusInvoiced    InvoiceStatus = "FACTURADO"
	StatusPartial     InvoiceStatus = "PARCIAL"
	StatusNotInvoiced InvoiceStatus = "SIN FACTURAR"
)

// ParseInvoiceStatus maps user input to an InvoiceStatus.
func ParseInvoiceStatus(s string) (InvoiceStatus, bool) {
	switch normalizeToken(s) {
	case "FACTURADO", "INVOICED":
		return StatusInvoiced, true
	case "PARCIAL", "PARTIAL":
		return StatusPartial, true
	case "SIN FACTURAR", "SIN_FACTURAR", "NOT INVOICED", "PENDING":
		return StatusNotInvoiced, true
	}
	return "", false
}

// PaymentType is how the provider is paid for a booking.
type PaymentType string

const (
	PaymentCredit   PaymentType = "CREDITO"
	PaymentTransfer PaymentType = "TRANSFERENCIA"
	PaymentCard     PaymentType = "TARJETA"
	PaymentLink     PaymentType = "LINK"
	PaymentOther    PaymentType = "OTRO"
)

// Row is the normalized reconciliation row derived from a ProviderSettlementRecord.
type Row struct {
	Key string

	IDSolicitudProveedor string
	IDSolicitud          string
	IDProveedor          string
	Proveedor            string
	Hotel                string
	CodigoReservacion    string
	RFC                  string

	CheckIn  *time.Time
	CheckOut *time.Time
	Noches   int

	CostoProveedor decimal.Decimal
	PrecioVenta    decimal.Decimal
	Markup         decimal.Decimal // percentage of sale price
	BaseFactura    decimal.Decimal
	Diferencia     decimal.Decimal

	Estatus   InvoiceStatus
	FormaPago PaymentType
}

// Selectable reports whether the row can take part in an invoice assignment.
// Fully reconciled rows never can.
func (r Row) Selectable() bool {
	return !r.Diferencia.IsZero()
}
