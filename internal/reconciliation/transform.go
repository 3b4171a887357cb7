package reconciliation

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Transform maps a raw settlement record to a reconciliation row.
// It is pure: the same record and index always produce the same row.
func Transform(raw ProviderSettlementRecord, index int) Row {
	costo := raw.CostoTotal.Decimal
	venta := raw.Total.Decimal
	base := baseFactura(raw)
	diferencia := costo.Sub(base).Round(2)

	row := Row{
		Key:                  rowKey(raw, index),
		IDSolicitudProveedor: raw.IDSolicitudProveedor.String(),
		IDSolicitud:          raw.IDSolicitud.String(),
		IDProveedor:          raw.IDProveedor.String(),
		Proveedor:            strings.TrimSpace(raw.Proveedor),
		Hotel:                strings.TrimSpace(raw.Hotel),
		CodigoReservacion:    strings.TrimSpace(raw.CodigoReservacion),
		RFC:                  NormalizeRFC(raw.RFCProveedor),
		CheckIn:              raw.CheckIn.Ptr(),
		CheckOut:             raw.CheckOut.Ptr(),
		Noches:               nights(raw.CheckIn.Ptr(), raw.CheckOut.Ptr()),
		CostoProveedor:       costo,
		PrecioVenta:          venta,
		Markup:               markup(costo, venta),
		BaseFactura:          base,
		Diferencia:           diferencia,
		Estatus:              classifyStatus(costo, diferencia),
		FormaPago:            ClassifyPaymentType(raw.FormaPago),
	}
	return row
}

// TransformAll transforms records in order.
func TransformAll(records []ProviderSettlementRecord) []Row {
	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		rows = append(rows, Transform(rec, i))
	}
	return rows
}

// rowKey prefers the settlement id, then the backend fallback id, then the index.
func rowKey(raw ProviderSettlementRecord, index int) string {
	if id := strings.TrimSpace(raw.IDSolicitudProveedor.String()); id != "" {
		return id
	}
	if id := strings.TrimSpace(raw.ID.String()); id != "" {
		return id
	}
	return strconv.Itoa(index)
}

func baseFactura(raw ProviderSettlementRecord) decimal.Decimal {
	for _, a := range []decimal.Decimal{
		raw.TotalAplicable.Decimal,
		raw.TotalFacturado.Decimal,
		raw.MontoFacturado.Decimal,
	} {
		if !a.IsZero() {
			return a
		}
	}
	return decimal.Zero
}

func markup(costo, venta decimal.Decimal) decimal.Decimal {
	if !venta.IsPositive() {
		return decimal.Zero
	}
	return venta.Sub(costo).Div(venta).Mul(hundred).Round(2)
}

// nights counts UTC calendar days between check-in and check-out.
func nights(checkIn, checkOut *time.Time) int {
	if checkIn == nil || checkOut == nil {
		return 0
	}
	in := utcMidnight(*checkIn)
	out := utcMidnight(*checkOut)
	n := int(math.Round(out.Sub(in).Hours() / 24))
	if n < 0 {
		return 0
	}
	return n
}

func utcMidnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func classifyStatus(costo, diferencia decimal.Decimal) InvoiceStatus {
	switch {
	case diferencia.IsZero():
		return StatusInvoiced
	case diferencia.Equal(costo.Round(2)):
		return StatusNotInvoiced
	default:
		return StatusPartial
	}
}

// ClassifyPaymentType maps the backend's free-form payment method to a PaymentType.
func ClassifyPaymentType(s string) PaymentType {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "":
		return PaymentOther
	case strings.Contains(v, "credit") || strings.Contains(v, "crédito") || strings.Contains(v, "credito"):
		return PaymentCredit
	case strings.Contains(v, "transfer") || strings.Contains(v, "spei"):
		return PaymentTransfer
	case strings.Contains(v, "card") || strings.Contains(v, "tarjeta"):
		return PaymentCard
	case strings.Contains(v, "link"):
		return PaymentLink
	}
	return PaymentOther
}

// NormalizeRFC trims and upper-cases a taxpayer id. The empty RFC stays empty.
func NormalizeRFC(rfc string) string {
	return strings.ToUpper(strings.TrimSpace(rfc))
}

func normalizeToken(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// Totals summarizes a set of rows.
type Totals struct {
	Rows       int
	ByStatus   map[InvoiceStatus]int
	Costo      decimal.Decimal
	Facturado  decimal.Decimal
	Pendiente  decimal.Decimal
	Selectable int
}

// Summarize adds up costs, invoiced and pending amounts per status.
func Summarize(rows []Row) Totals {
	t := Totals{
		ByStatus:  make(map[InvoiceStatus]int),
		Costo:     decimal.Zero,
		Facturado: decimal.Zero,
		Pendiente: decimal.Zero,
	}
	for _, r := range rows {
		t.Rows++
		t.ByStatus[r.Estatus]++
		t.Costo = t.Costo.Add(r.CostoProveedor)
		t.Facturado = t.Facturado.Add(r.BaseFactura)
		t.Pendiente = t.Pendiente.Add(r.Diferencia)
		if r.Selectable() {
			t.Selectable++
		}
	}
	return t
}
