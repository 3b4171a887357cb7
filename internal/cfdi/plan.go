package cfdi

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"cxc/internal/reconciliation"
	"cxc/pkg/models"
	"cxc/pkg/services"
)

// PlannedItem is the invoice amount assigned to one settlement row.
type PlannedItem struct {
	Key                  string
	IDSolicitudProveedor string
	Monto                decimal.Decimal
	Override             bool
}

// Plan is the distribution of an invoice total across settlement rows.
type Plan struct {
	Items []PlannedItem

	// Skipped lists rows that received nothing (over-invoiced rows, or rows
	// reached after the invoice total was exhausted).
	Skipped []string

	Total     decimal.Decimal
	Assigned  decimal.Decimal
	Remaining decimal.Decimal
}

// PlanItems distributes an invoice total across the selected rows in order.
// Every row must carry its id_solicitud_proveedor.
//
// A row's amount is its override when one is given, else its pending
// difference. Overrides must be positive and may not exceed the row's
// difference. Default amounts are capped by what is left of the invoice total;
// overrides are not, so overrides summing above the total fail with
// ErrExceedsInvoiceTotal.
func PlanItems(total decimal.Decimal, rows []reconciliation.Row, overrides map[string]decimal.Decimal) (*Plan, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: invoice total %s", ErrInvalidAmount, total.StringFixed(2))
	}

	known := make(map[string]bool, len(rows))
	for _, r := range rows {
		if strings.TrimSpace(r.IDSolicitudProveedor) == "" {
			return nil, &AssignmentError{Key: r.Key, Err: ErrNoSettlementID}
		}
		known[r.Key] = true
	}
	for key := range overrides {
		if !known[key] {
			return nil, &AssignmentError{Key: key, Err: reconciliation.ErrUnknownRow}
		}
	}

	// Overrides are reserved first so default rows only take what they leave.
	reserved := decimal.Zero
	for _, r := range rows {
		amount, ok := overrides[r.Key]
		if !ok {
			continue
		}
		if !amount.IsPositive() {
			return nil, &AssignmentError{Key: r.Key, Err: ErrInvalidAmount}
		}
		if amount.GreaterThan(r.Diferencia) {
			return nil, &AssignmentError{
				Key: r.Key,
				Err: fmt.Errorf("%w: %s is more than the pending %s", ErrExceedsInvoiceTotal,
					amount.StringFixed(2), r.Diferencia.StringFixed(2)),
			}
		}
		reserved = reserved.Add(amount)
	}
	if reserved.GreaterThan(total) {
		return nil, fmt.Errorf("%w: overrides sum %s, invoice total is %s", ErrExceedsInvoiceTotal,
			reserved.StringFixed(2), total.StringFixed(2))
	}

	plan := &Plan{Total: total}
	available := total.Sub(reserved)

	for _, r := range rows {
		if amount, ok := overrides[r.Key]; ok {
			plan.add(r, amount, true)
			continue
		}

		amount := decimal.Min(r.Diferencia, available)
		if !amount.IsPositive() {
			plan.Skipped = append(plan.Skipped, r.Key)
			continue
		}
		available = available.Sub(amount)
		plan.add(r, amount, false)
	}

	plan.Remaining = total.Sub(plan.Assigned)
	return plan, nil
}

func (p *Plan) add(r reconciliation.Row, amount decimal.Decimal, override bool) {
	p.Items = append(p.Items, PlannedItem{
		Key:                  r.Key,
		IDSolicitudProveedor: r.IDSolicitudProveedor,
		Monto:                amount,
		Override:             override,
	})
	p.Assigned = p.Assigned.Add(amount)
}

// Assignment builds the item assignment payload for a registered invoice.
func (p *Plan) Assignment(invoiceID string) services.ItemAssignment {
	items := make([]services.AssignedItem, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, services.AssignedItem{
			IDSolicitudProveedor: it.IDSolicitudProveedor,
			Monto:                models.NewAmount(it.Monto),
		})
	}
	return services.ItemAssignment{IDFactura: invoiceID, Items: items}
}

// UploadOptions carries the values of an upload that are not in the XML.
type UploadOptions struct {
	IDProveedor string
	URLPDF      string
	URLXML      string

	// DueDate is the payment due date; nil leaves it unset.
	DueDate *models.Date
}

// NewUpload builds the registration payload for c.
func NewUpload(c *Comprobante, opts UploadOptions) services.InvoiceUpload {
	upload := services.InvoiceUpload{
		UUID:         c.UUID,
		RFCEmisor:    c.Emisor.RFC,
		NombreEmisor: c.Emisor.Nombre,
		RFCReceptor:  c.Receptor.RFC,
		Serie:        c.Serie,
		Folio:        c.Folio,
		Total:        models.NewAmount(c.Total),
		Subtotal:     models.NewAmount(c.SubTotal),
		Impuestos:    models.NewAmount(c.Impuestos()),
		Moneda:       c.Moneda,
		MetodoPago:   c.MetodoPago,
		FormaPago:    c.FormaPago,
		IDProveedor:  opts.IDProveedor,
		URLPDF:       opts.URLPDF,
		URLXML:       opts.URLXML,
	}
	if !c.Fecha.IsZero() {
		upload.FechaEmision = c.Fecha.Format("2006-01-02")
	}
	if opts.DueDate != nil && !opts.DueDate.IsZero() {
		due := opts.DueDate.Format("2006-01-02")
		upload.FechaVencimiento = &due
	}
	return upload
}
