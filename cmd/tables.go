package cmd

import (
	"cxc/internal/aging"
	"cxc/internal/allocation"
	"cxc/internal/cfdi"
	"cxc/internal/reconciliation"
	"cxc/internal/render"
	"cxc/pkg/models"
)

var registry = render.NewRegistry()

func agingTable() *render.Table[*aging.Summary] {
	type col = render.Column[*aging.Summary]

	cols := []col{
		{ID: "agent", Header: "Agente", Kind: render.KindText, Value: func(s *aging.Summary) interface{} { return s.AgentID }},
		{ID: "name", Header: "Nombre", Kind: render.KindText, Value: func(s *aging.Summary) interface{} { return s.AgentName }},
		{ID: "invoices", Header: "Facturas", Kind: render.KindInt, Value: func(s *aging.Summary) interface{} { return s.Invoices }},
		{ID: "total", Header: "Adeudo total", Kind: render.KindMoney, Value: func(s *aging.Summary) interface{} { return s.AdeudoTotal }},
		{ID: "current", Header: "Vigente", Kind: render.KindMoney, Value: func(s *aging.Summary) interface{} { return s.AdeudoVigente }},
		{ID: "overdue", Header: "Vencido", Kind: render.KindMoney, Value: func(s *aging.Summary) interface{} { return s.AdeudoVencido }},
	}
	for _, b := range aging.AllBuckets() {
		if !b.Overdue() {
			continue
		}
		bucket := b
		cols = append(cols, col{
			ID:     "bucket_" + bucket.String(),
			Header: bucket.String(),
			Kind:   render.KindMoney,
			Value:  func(s *aging.Summary) interface{} { return s.Saldo(bucket) },
		})
	}
	return render.NewTable(registry, cols...)
}

func agingDetailTable() *render.Table[aging.InvoiceAging] {
	type col = render.Column[aging.InvoiceAging]

	return render.NewTable(registry,
		col{ID: "invoice", Header: "Factura", Kind: render.KindText, Value: func(a aging.InvoiceAging) interface{} { return a.Invoice.ID }},
		col{ID: "uuid", Header: "UUID", Kind: render.KindText, Value: func(a aging.InvoiceAging) interface{} { return a.Invoice.UUID }},
		col{ID: "agent", Header: "Agente", Kind: render.KindText, Value: func(a aging.InvoiceAging) interface{} { return a.Invoice.AgentID }},
		col{ID: "issued", Header: "Emision", Kind: render.KindDate, Value: func(a aging.InvoiceAging) interface{} { return a.Invoice.FechaEmision.Ptr() }},
		col{ID: "due", Header: "Vencimiento", Kind: render.KindDate, Value: func(a aging.InvoiceAging) interface{} { return a.Invoice.FechaVencimiento.Ptr() }},
		col{ID: "days", Header: "Dias", Kind: render.KindInt, Value: func(a aging.InvoiceAging) interface{} { return a.DaysOverdue }},
		col{ID: "bucket", Header: "Rango", Kind: render.KindStatus, Value: func(a aging.InvoiceAging) interface{} { return a.Bucket.String() }},
		col{ID: "total", Header: "Total", Kind: render.KindMoney, Value: func(a aging.InvoiceAging) interface{} { return a.Invoice.Total }},
		col{ID: "saldo", Header: "Saldo", Kind: render.KindMoney, Value: func(a aging.InvoiceAging) interface{} { return a.Invoice.Saldo }},
	)
}

func reconciliationTable() *render.Table[reconciliation.Row] {
	type col = render.Column[reconciliation.Row]

	return render.NewTable(registry,
		col{ID: "key", Header: "ID", Kind: render.KindText, Value: func(r reconciliation.Row) interface{} { return r.Key }},
		col{ID: "provider", Header: "Proveedor", Kind: render.KindText, Value: func(r reconciliation.Row) interface{} { return r.Proveedor }},
		col{ID: "hotel", Header: "Hotel", Kind: render.KindText, Value: func(r reconciliation.Row) interface{} { return r.Hotel }},
		col{ID: "rfc", Header: "RFC", Kind: render.KindText, Value: func(r reconciliation.Row) interface{} { return r.RFC }},
		col{ID: "check_in", Header: "Check-in", Kind: render.KindDate, Value: func(r reconciliation.Row) interface{} { return r.CheckIn }},
		col{ID: "nights", Header: "Noches", Kind: render.KindInt, Value: func(r reconciliation.Row) interface{} { return r.Noches }},
		col{ID: "cost", Header: "Costo", Kind: render.KindMoney, Value: func(r reconciliation.Row) interface{} { return r.CostoProveedor }},
		col{ID: "sale", Header: "Venta", Kind: render.KindMoney, Value: func(r reconciliation.Row) interface{} { return r.PrecioVenta }},
		col{ID: "markup", Header: "Markup", Kind: render.KindPercent, Value: func(r reconciliation.Row) interface{} { return r.Markup }},
		col{ID: "invoiced", Header: "Facturado", Kind: render.KindMoney, Value: func(r reconciliation.Row) interface{} { return r.BaseFactura }},
		col{ID: "difference", Header: "Diferencia", Kind: render.KindMoney, Value: func(r reconciliation.Row) interface{} { return r.Diferencia }},
		col{ID: "status", Header: "Estatus", Kind: render.KindStatus, Value: func(r reconciliation.Row) interface{} { return string(r.Estatus) }},
		col{ID: "payment", Header: "Pago", Kind: render.KindStatus, Value: func(r reconciliation.Row) interface{} { return string(r.FormaPago) }},
	)
}

func planTable() *render.Table[cfdi.PlannedItem] {
	type col = render.Column[cfdi.PlannedItem]

	return render.NewTable(registry,
		col{ID: "key", Header: "ID", Kind: render.KindText, Value: func(p cfdi.PlannedItem) interface{} { return p.Key }},
		col{ID: "amount", Header: "Monto asignado", Kind: render.KindMoney, Value: func(p cfdi.PlannedItem) interface{} { return p.Monto }},
		col{ID: "override", Header: "Manual", Kind: render.KindText, Value: func(p cfdi.PlannedItem) interface{} {
			if p.Override {
				return "si"
			}
			return ""
		}},
	)
}

func allocationTable() *render.Table[allocation.Allocation] {
	type col = render.Column[allocation.Allocation]

	return render.NewTable(registry,
		col{ID: "invoice", Header: "Factura", Kind: render.KindText, Value: func(a allocation.Allocation) interface{} { return a.ID }},
		col{ID: "saldo", Header: "Saldo", Kind: render.KindMoney, Value: func(a allocation.Allocation) interface{} { return a.Saldo }},
		col{ID: "applied", Header: "Aplicado", Kind: render.KindMoney, Value: func(a allocation.Allocation) interface{} { return a.MontoAplicado }},
		col{ID: "remaining", Header: "Restante", Kind: render.KindMoney, Value: func(a allocation.Allocation) interface{} { return a.SaldoRestante }},
	)
}

func balanceUseTable() *render.Table[allocation.BalanceUse] {
	type col = render.Column[allocation.BalanceUse]

	return render.NewTable(registry,
		col{ID: "balance", Header: "Saldo a favor", Kind: render.KindText, Value: func(u allocation.BalanceUse) interface{} { return u.Balance.ID }},
		col{ID: "method", Header: "Forma de pago", Kind: render.KindText, Value: func(u allocation.BalanceUse) interface{} { return u.Balance.FormaPago }},
		col{ID: "before", Header: "Disponible", Kind: render.KindMoney, Value: func(u allocation.BalanceUse) interface{} { return u.SaldoAnterior }},
		col{ID: "applied", Header: "Aplicado", Kind: render.KindMoney, Value: func(u allocation.BalanceUse) interface{} { return u.Aplicado }},
		col{ID: "after", Header: "Restante", Kind: render.KindMoney, Value: func(u allocation.BalanceUse) interface{} { return u.SaldoNuevo }},
	)
}

func creditBalanceTable() *render.Table[models.CreditBalance] {
	type col = render.Column[models.CreditBalance]

	return render.NewTable(registry,
		col{ID: "id", Header: "ID", Kind: render.KindText, Value: func(b models.CreditBalance) interface{} { return b.ID }},
		col{ID: "agent", Header: "Agente", Kind: render.KindText, Value: func(b models.CreditBalance) interface{} { return b.AgentID }},
		col{ID: "amount", Header: "Monto", Kind: render.KindMoney, Value: func(b models.CreditBalance) interface{} { return b.Monto }},
		col{ID: "available", Header: "Disponible", Kind: render.KindMoney, Value: func(b models.CreditBalance) interface{} { return b.SaldoActual }},
		col{ID: "method", Header: "Forma de pago", Kind: render.KindText, Value: func(b models.CreditBalance) interface{} { return b.FormaPago }},
		col{ID: "reference", Header: "Referencia", Kind: render.KindText, Value: func(b models.CreditBalance) interface{} { return b.Referencia }},
		col{ID: "created", Header: "Fecha", Kind: render.KindDate, Value: func(b models.CreditBalance) interface{} { return b.Fecha.Ptr() }},
	)
}
