package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cxc/internal/cfdi"
	"cxc/internal/logger"
	"cxc/internal/reconciliation"
	"cxc/internal/render"
	"cxc/internal/sheets"
	"cxc/internal/viewstate"
	"cxc/pkg/models"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile provider settlements with provider invoices",
	Long: `Reconcile hotel booking costs owed to providers (solicitudes de pago a
proveedor) with the CFDI invoices the providers issue.

Every settlement is shown with its cost, sale price, markup, nights and the
amount still to be invoiced. Rows are FACTURADO when fully invoiced,
SIN FACTURAR when nothing has been invoiced and PARCIAL otherwise.

Required environment variables:
  CXC_API_URL - Backend base URL
  CXC_API_KEY - Backend API key`,
}

var reconcileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List provider settlements and their invoicing status",
	Example: `  # Everything still to invoice for one provider
  cxc reconcile list --status "SIN FACTURAR" --rfc HPA010101AA1

  # Check-ins of June exported to Google Sheets
  cxc reconcile list --from 2025-06-01 --to 2025-06-30 --sheet`,
	RunE: runReconcileList,
}

var reconcileEditCmd = &cobra.Command{
	Use:     "edit <id>",
	Short:   "Edit fields of a provider settlement",
	Example: `  cxc reconcile edit 1042 --set estado_solicitud=pagado --set comentarios="pago parcial"`,
	Args:    cobra.ExactArgs(1),
	RunE:    runReconcileEdit,
}

var reconcileInvoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Register a provider CFDI and assign it to settlements",
	Long: `Read a provider CFDI (XML), check it against the selected settlements and
register it.

All selected settlements must share the issuer's RFC. Each settlement receives
its pending difference unless --amount sets it explicitly; the assigned amounts
never exceed the invoice total.`,
	Example: `  # Assign an invoice to two settlements
  cxc reconcile invoice --xml factura.xml --rows 1042,1043

  # Assign to every pending settlement of the issuer, checking first
  cxc reconcile invoice --xml factura.xml --select-all --dry-run

  # Fix the amount of one settlement
  cxc reconcile invoice --xml factura.xml --rows 1042,1043 --amount 1043=250.00`,
	RunE: runReconcileInvoice,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
	reconcileCmd.AddCommand(reconcileListCmd, reconcileEditCmd, reconcileInvoiceCmd)

	for _, c := range []*cobra.Command{reconcileListCmd, reconcileInvoiceCmd} {
		c.Flags().String("status", "", "Filter by status (FACTURADO, PARCIAL, SIN FACTURAR)")
		c.Flags().String("rfc", "", "Filter by provider RFC")
		c.Flags().String("provider", "", "Filter by provider or hotel name")
		c.Flags().String("from", "", "First check-in date (format: YYYY-MM-DD)")
		c.Flags().String("to", "", "Last check-in date (format: YYYY-MM-DD)")
	}
	reconcileListCmd.Flags().String("columns", "", "Comma separated columns to show (default: all)")
	reconcileListCmd.Flags().Bool("sheet", false, "Export the list to a dated worksheet of the Google Sheet")

	reconcileEditCmd.Flags().StringArray("set", nil, "Field assignment field=value (repeatable)")
	_ = reconcileEditCmd.MarkFlagRequired("set")

	reconcileInvoiceCmd.Flags().String("xml", "", "Path to the CFDI XML file")
	reconcileInvoiceCmd.Flags().String("rows", "", "Comma separated settlement ids")
	reconcileInvoiceCmd.Flags().Bool("select-all", false, "Select every pending settlement matching the filters")
	reconcileInvoiceCmd.Flags().StringArray("amount", nil, "Amount for one settlement id=amount (repeatable)")
	reconcileInvoiceCmd.Flags().String("pdf-url", "", "URL of the invoice PDF")
	reconcileInvoiceCmd.Flags().String("due-date", "", "Payment due date (format: YYYY-MM-DD)")
	reconcileInvoiceCmd.Flags().Bool("dry-run", false, "Show the assignment without registering the invoice")
	_ = reconcileInvoiceCmd.MarkFlagRequired("xml")
}

// filterFromFlags builds a reconciliation filter from the list flags.
func filterFromFlags(cmd *cobra.Command) (reconciliation.Filter, error) {
	var f reconciliation.Filter

	status, _ := cmd.Flags().GetString("status")
	if status != "" {
		s, ok := reconciliation.ParseInvoiceStatus(status)
		if !ok {
			return f, fmt.Errorf("unknown status %q", status)
		}
		f.Status = s
	}

	f.RFC, _ = cmd.Flags().GetString("rfc")
	f.Provider, _ = cmd.Flags().GetString("provider")

	for _, d := range []struct {
		flag string
		dst  **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		value, _ := cmd.Flags().GetString(d.flag)
		if value == "" {
			continue
		}
		t, err := parseDay(value, time.UTC)
		if err != nil {
			return f, fmt.Errorf("--%s: %w", d.flag, err)
		}
		*d.dst = &t
	}
	return f, nil
}

func runReconcileList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	log := logger.WithComponent("reconcile")

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}
	toSheet, _ := cmd.Flags().GetBool("sheet")
	columns, _ := cmd.Flags().GetString("columns")

	table, err := selectColumns(reconciliationTable(), columns)
	if err != nil {
		return err
	}

	cfg, client, err := newBackend()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	rows, err := reconciliation.NewDataReader(client).ReadRows(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settlements: %w", err)
	}
	rows = filter.Apply(rows)

	if err := table.Render(out, rows); err != nil {
		return err
	}

	totals := reconciliation.Summarize(rows)
	fmt.Fprintf(out, "\n%d filas: %d facturadas, %d parciales, %d sin facturar\n",
		totals.Rows,
		totals.ByStatus[reconciliation.StatusInvoiced],
		totals.ByStatus[reconciliation.StatusPartial],
		totals.ByStatus[reconciliation.StatusNotInvoiced])
	fmt.Fprintf(out, "Costo %s, facturado %s, pendiente %s\n",
		render.FormatMoney(totals.Costo),
		render.FormatMoney(totals.Facturado),
		render.FormatMoney(totals.Pendiente))

	if toSheet {
		sheetsService, err := newSheets(ctx, cfg)
		if err != nil {
			return err
		}
		sheetName := sheets.Title("Conciliacion", time.Now().In(cfg.Location()))
		if err := sheetsService.WriteTable(ctx, sheets.Table{
			Sheet:   sheetName,
			Headers: table.Headers(),
			Rows:    table.Values(rows),
			Mode:    sheets.Replace,
		}); err != nil {
			return fmt.Errorf("failed to export settlements: %w", err)
		}
		log.Info().Str("sheet", sheetName).Int("rows", len(rows)).Msg("Settlements exported")
	}
	return nil
}

func runReconcileEdit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	log := logger.WithComponent("reconcile-edit")

	sets, _ := cmd.Flags().GetStringArray("set")
	assignments, err := parseAssignments(sets)
	if err != nil {
		return err
	}

	_, client, err := newBackend()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	rows, err := reconciliation.NewDataReader(client).ReadRows(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settlements: %w", err)
	}
	key := args[0]
	if !containsKey(rows, key) {
		return fmt.Errorf("%w: %s", reconciliation.ErrUnknownRow, key)
	}

	view := viewstate.NewMachine()
	view.Validate = func(d viewstate.Draft) error {
		if _, ok := d.Get("id_solicitud_proveedor"); ok {
			return fmt.Errorf("id_solicitud_proveedor cannot be edited")
		}
		return nil
	}
	if err := view.Open(key); err != nil {
		return err
	}
	if err := view.Edit(); err != nil {
		return err
	}
	for _, a := range assignments {
		if err := view.Set(a[0], a[1]); err != nil {
			return err
		}
	}

	committed, err := view.Commit()
	if err != nil {
		return err
	}

	if err := commitEdits(ctx, client, committed); err != nil {
		return err
	}

	log.Info().Str("id", key).Int("fields", len(committed.Draft)).Msg("Settlement updated")
	fmt.Fprintf(out, "Solicitud %s actualizada (%d campos)\n", key, len(committed.Draft))
	return nil
}

// commitEdits sends each edited field of a committed draft.
func commitEdits(ctx context.Context, editor reconciliation.SettlementEditor, committed viewstate.Committed) error {
	for _, e := range committed.Draft {
		if err := editor.EditSettlement(ctx, committed.Key, e.Field, editValue(e.Value)); err != nil {
			return fmt.Errorf("failed to update %s: %w", e.Field, err)
		}
	}
	return nil
}

// editValue sends numbers, booleans and null as JSON scalars and everything
// else as a string.
func editValue(s string) interface{} {
	switch strings.ToLower(s) {
	case "null":
		return nil
	case "true", "false":
		return strings.EqualFold(s, "true")
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return json.Number(s)
	}
	return s
}

func containsKey(rows []reconciliation.Row, key string) bool {
	for _, r := range rows {
		if r.Key == key {
			return true
		}
	}
	return false
}

// selectAllFilter restricts f to the pending rows of the CFDI issuer. The
// issuer RFC is matched whole; a --rfc naming someone else is an error.
func selectAllFilter(f reconciliation.Filter, issuerRFC string) (reconciliation.Filter, error) {
	issuer := reconciliation.NormalizeRFC(issuerRFC)
	if f.RFC != "" && reconciliation.NormalizeRFC(f.RFC) != issuer {
		return f, fmt.Errorf("%w: --rfc %s, CFDI issuer %s", cfdi.ErrRFCMismatch, f.RFC, issuerRFC)
	}
	f.RFC = issuer
	f.ExactRFC = true
	f.OnlySelectable = true
	return f, nil
}

func runReconcileInvoice(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	log := logger.WithComponent("reconcile-invoice")

	xmlPath, _ := cmd.Flags().GetString("xml")
	rowKeys, _ := cmd.Flags().GetString("rows")
	selectAll, _ := cmd.Flags().GetBool("select-all")
	amountPairs, _ := cmd.Flags().GetStringArray("amount")
	pdfURL, _ := cmd.Flags().GetString("pdf-url")
	dueDate, _ := cmd.Flags().GetString("due-date")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if (rowKeys == "") == !selectAll {
		return fmt.Errorf("use exactly one of --rows or --select-all")
	}
	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}
	overrides, err := parseAmounts(amountPairs)
	if err != nil {
		return err
	}

	var due *models.Date
	if dueDate != "" {
		d := models.ParseDate(dueDate)
		if d.IsZero() {
			return fmt.Errorf("invalid due date %q, use YYYY-MM-DD", dueDate)
		}
		due = &d
	}

	file, err := os.Open(xmlPath)
	if err != nil {
		return fmt.Errorf("failed to open CFDI: %w", err)
	}
	comprobante, err := cfdi.Parse(file)
	file.Close()
	if err != nil {
		return err
	}

	validator := cfdi.NewValidator()
	validation, err := validator.Validate(comprobante)
	if err != nil {
		return err
	}
	for _, w := range validation.Warnings {
		fmt.Fprintf(out, "Advertencia: %s\n", w)
	}

	_, client, err := newBackend()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	rows, err := reconciliation.NewDataReader(client).ReadRows(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settlements: %w", err)
	}

	selection := reconciliation.NewSelection(rows)
	if selectAll {
		if filter, err = selectAllFilter(filter, comprobante.Emisor.RFC); err != nil {
			return err
		}
		n := selection.SelectAllFiltered(filter.Apply(rows))
		log.Info().Int("selected", n).Msg("Selected pending settlements")
	} else {
		for _, key := range splitList(rowKeys) {
			if err := selection.Select(key); err != nil {
				return err
			}
		}
	}
	if selection.Len() == 0 {
		return cfdi.ErrNoRows
	}

	baseline, _ := selection.Baseline()
	if err := validator.CheckIssuerRFC(comprobante, baseline); err != nil {
		return err
	}

	selected := selection.Rows()
	plan, err := cfdi.PlanItems(comprobante.Total, selected, overrides)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Factura %s emitida por %s (%s), total %s\n\n",
		comprobante.UUID, comprobante.Emisor.Nombre, comprobante.Emisor.RFC,
		render.FormatMoney(comprobante.Total))
	if err := planTable().Render(out, plan.Items); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nAsignado %s, sin asignar %s\n",
		render.FormatMoney(plan.Assigned),
		render.FormatMoney(plan.Remaining))
	if len(plan.Skipped) > 0 {
		fmt.Fprintf(out, "Sin monto: %s\n", strings.Join(plan.Skipped, ", "))
	}

	if dryRun {
		fmt.Fprintln(out, "\nDry run: no changes were sent.")
		return nil
	}

	upload := cfdi.NewUpload(comprobante, cfdi.UploadOptions{
		IDProveedor: selected[0].IDProveedor,
		URLPDF:      pdfURL,
		DueDate:     due,
	})
	invoiceID, err := client.CreateInvoiceFromUpload(ctx, upload)
	if err != nil {
		return fmt.Errorf("failed to register invoice: %w", err)
	}

	if err := client.AssignInvoiceItems(ctx, plan.Assignment(invoiceID)); err != nil {
		return fmt.Errorf("invoice %s registered but items were not assigned: %w", invoiceID, err)
	}

	log.Info().
		Str("invoice_id", invoiceID).
		Str("uuid", comprobante.UUID).
		Int("items", len(plan.Items)).
		Msg("Invoice registered and assigned")
	fmt.Fprintf(out, "\nFactura registrada con id %s\n", invoiceID)
	return nil
}
