package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cxc/internal/aging"
	"cxc/internal/logger"
	"cxc/internal/sheets"
)

var agingCmd = &cobra.Command{
	Use:   "aging",
	Short: "Show accounts receivable aging per agent",
	Long: `Show the outstanding balance of every agent split into aging buckets
(vigente, 1-7, 8-15, 16-20, 21-30 and more than 30 days overdue).

Days overdue are counted in calendar days in CXC_TIMEZONE
(default America/Mexico_City). Invoices without a due date are current.

Required environment variables:
  CXC_API_URL - Backend base URL
  CXC_API_KEY - Backend API key
  GOOGLE_SHEET_URL and credentials - only with --sheet`,
	Example: `  # Aging for every agent as of today
  cxc aging

  # One agent, as of a past date, with the invoice detail
  cxc aging --agent 7f3a --as-of 2025-06-30 --detail

  # Export to Google Sheets
  cxc aging --sheet`,
	RunE: runAging,
}

func init() {
	rootCmd.AddCommand(agingCmd)

	agingCmd.Flags().String("agent", "", "Only this agent id")
	agingCmd.Flags().String("as-of", "", "Reference date (format: YYYY-MM-DD, default: today)")
	agingCmd.Flags().String("columns", "", "Comma separated summary columns to show (default: all)")
	agingCmd.Flags().Bool("detail", false, "Also list every invoice with its days overdue")
	agingCmd.Flags().Bool("sheet", false, "Export the report to a dated worksheet of the Google Sheet")
}

func runAging(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	agentID, _ := cmd.Flags().GetString("agent")
	asOf, _ := cmd.Flags().GetString("as-of")
	detail, _ := cmd.Flags().GetBool("detail")
	toSheet, _ := cmd.Flags().GetBool("sheet")
	columns, _ := cmd.Flags().GetString("columns")

	summaryTable, err := selectColumns(agingTable(), columns)
	if err != nil {
		return err
	}

	log := logger.WithAgent(logger.WithComponent("aging"), agentID)

	cfg, client, err := newBackend()
	if err != nil {
		return err
	}

	loc := cfg.Location()
	today := time.Now().In(loc)
	if asOf != "" {
		if today, err = parseDay(asOf, loc); err != nil {
			return err
		}
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	log.Info().
		Str("as_of", today.Format("2006-01-02")).
		Str("timezone", loc.String()).
		Msg("Building aging report")

	groups, err := client.PendingInvoicesByAgent(ctx, agentID)
	if err != nil {
		return fmt.Errorf("failed to load pending invoices: %w", err)
	}
	invoices := aging.FlattenGroups(groups)

	aggregator := aging.NewAggregator(aging.NewClassifier(loc))
	report := aggregator.NewReport(invoices, today)

	fmt.Fprintf(out, "Antigüedad de saldos al %s (%d facturas)\n\n", today.Format("2006-01-02"), report.Totals.Invoices)
	if err := summaryTable.Render(out, report.Agents, report.Totals); err != nil {
		return err
	}

	var details []aging.InvoiceAging
	detailTable := agingDetailTable()
	if detail {
		details = aggregator.Detail(invoices, today)
		fmt.Fprintln(out)
		if err := detailTable.Render(out, details); err != nil {
			return err
		}
	}

	if toSheet {
		sheetsService, err := newSheets(ctx, cfg)
		if err != nil {
			return err
		}

		sheetName := sheets.Title("Antiguedad", today)
		if err := sheetsService.WriteTable(ctx, sheets.Table{
			Sheet:   sheetName,
			Headers: summaryTable.Headers(),
			Rows:    summaryTable.Values(report.Agents),
			Mode:    sheets.Replace,
		}); err != nil {
			return fmt.Errorf("failed to export aging report: %w", err)
		}
		if detail {
			if err := sheetsService.WriteTable(ctx, sheets.Table{
				Sheet:   sheets.Title("Antiguedad", today, "detalle"),
				Headers: detailTable.Headers(),
				Rows:    detailTable.Values(details),
				Mode:    sheets.Replace,
			}); err != nil {
				return fmt.Errorf("failed to export aging detail: %w", err)
			}
		}
		log.Info().Str("sheet", sheetName).Msg("Aging report exported")
	}

	log.Info().
		Int("agents", len(report.Agents)).
		Str("adeudo_total", report.Totals.AdeudoTotal.StringFixed(2)).
		Str("adeudo_vencido", report.Totals.AdeudoVencido.StringFixed(2)).
		Msg("Aging report completed")
	return nil
}
