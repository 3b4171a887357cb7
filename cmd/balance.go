package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"cxc/internal/allocation"
	"cxc/internal/logger"
	"cxc/internal/render"
	"cxc/internal/viewstate"
	"cxc/pkg/models"
	"cxc/pkg/services"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Manage agent credit balances (saldos a favor)",
	Long: `Manage the prepaid credit balances of agents and apply them to pending
invoices.

Required environment variables:
  CXC_API_URL - Backend base URL
  CXC_API_KEY - Backend API key`,
}

var balanceListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the credit balances of an agent",
	Example: `  cxc balance list --agent 7f3a`,
	RunE:    runBalanceList,
}

var balanceApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply credit balances to pending invoices",
	Long: `Apply one or more credit balances of an agent to selected pending invoices.

The credit is split across the invoices in proportion to their outstanding
balances. Each invoice but the last gets its share rounded to cents; the last
one gets the remainder, so the applied amounts add up exactly. Balances are
drawn in the order given.`,
	Example: `  # Apply everything available in two balances
  cxc balance apply --agent 7f3a --balances S1,S2 --invoices F10,F11

  # Apply only part of the credit and review first
  cxc balance apply --agent 7f3a --balances S1 --invoices F10,F11 --amount 1500 --dry-run`,
	RunE: runBalanceApply,
}

var balanceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new credit balance",
	Long: `Register a credit balance funded by a SPEI transfer, a manual Stripe charge
or a Stripe payment link.`,
	Example: `  cxc balance create --agent 7f3a --amount 5000 --method spei --reference 12345678`,
	RunE:    runBalanceCreate,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.AddCommand(balanceListCmd, balanceApplyCmd, balanceCreateCmd)

	for _, c := range []*cobra.Command{balanceListCmd, balanceApplyCmd, balanceCreateCmd} {
		c.Flags().String("agent", "", "Agent id")
		_ = c.MarkFlagRequired("agent")
	}

	balanceApplyCmd.Flags().String("balances", "", "Comma separated credit balance ids, in the order they are drawn")
	balanceApplyCmd.Flags().String("invoices", "", "Comma separated invoice ids")
	balanceApplyCmd.Flags().String("amount", "", "Amount to apply (default: all available credit)")
	balanceApplyCmd.Flags().Bool("dry-run", false, "Show the allocation without applying it")
	_ = balanceApplyCmd.MarkFlagRequired("balances")
	_ = balanceApplyCmd.MarkFlagRequired("invoices")

	balanceCreateCmd.Flags().String("amount", "", "Amount of the balance")
	balanceCreateCmd.Flags().String("method", "", "Funding method: spei, stripe or link")
	balanceCreateCmd.Flags().String("reference", "", "Payment reference (SPEI tracking key, Stripe charge id)")
	balanceCreateCmd.Flags().String("comment", "", "Free text comment")
	_ = balanceCreateCmd.MarkFlagRequired("amount")
	_ = balanceCreateCmd.MarkFlagRequired("method")
}

func runBalanceList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	agentID, _ := cmd.Flags().GetString("agent")

	_, client, err := newBackend()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	balances, err := client.ListCreditBalances(ctx, agentID)
	if err != nil {
		return fmt.Errorf("failed to list credit balances: %w", err)
	}

	if err := creditBalanceTable().Render(out, balances); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nDisponible: %s\n", render.FormatMoney(allocation.AvailableCredit(balances)))
	return nil
}

func runBalanceApply(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	agentID, _ := cmd.Flags().GetString("agent")
	balanceIDs, _ := cmd.Flags().GetString("balances")
	invoiceIDs, _ := cmd.Flags().GetString("invoices")
	amountStr, _ := cmd.Flags().GetString("amount")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	req := allocation.Request{
		AgentID:    agentID,
		BalanceIDs: splitList(balanceIDs),
		InvoiceIDs: splitList(invoiceIDs),
	}
	if amountStr != "" {
		amount, err := parseAmount(amountStr)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		req.Amount = &amount
	}

	_, client, err := newBackend()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	svc := allocation.NewService(client)
	plan, err := svc.Plan(ctx, req)
	if err != nil {
		return err
	}

	if err := allocationTable().Render(out, plan.Result.Allocations); err != nil {
		return err
	}
	fmt.Fprintln(out)
	if err := balanceUseTable().Render(out, plan.Uses); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nAplicado %s de %s seleccionado, credito sin usar %s\n",
		render.FormatMoney(plan.Result.MontoAplicable),
		render.FormatMoney(plan.Result.TotalSaldo),
		render.FormatMoney(plan.Result.CreditRemaining))

	if dryRun {
		fmt.Fprintln(out, "\nDry run: no changes were sent.")
		return nil
	}

	if err := svc.Apply(ctx, plan); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nCredito aplicado a %d facturas\n", len(plan.Result.Allocations))
	return nil
}

func runBalanceCreate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	log := logger.WithComponent("balance")

	view := viewstate.NewMachine()
	view.Validate = validateBalanceDraft
	if err := view.Create(); err != nil {
		return err
	}

	for _, field := range []string{"agent", "amount", "method", "reference", "comment"} {
		value, _ := cmd.Flags().GetString(field)
		if value == "" {
			continue
		}
		if err := view.Set(field, value); err != nil {
			return err
		}
	}

	committed, err := view.Commit()
	if err != nil {
		return err
	}
	req, err := balanceRequest(committed.Draft)
	if err != nil {
		return err
	}

	_, client, err := newBackend()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	balance, err := client.CreateCreditBalance(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create credit balance: %w", err)
	}

	log = logger.WithAgent(log, req.AgentID)
	log.Info().
		Str("id_saldo", balance.ID).
		Str("method", string(req.FormaPago)).
		Msg("Credit balance created")
	return creditBalanceTable().Render(out, []models.CreditBalance{*balance})
}

func validateBalanceDraft(d viewstate.Draft) error {
	_, err := balanceRequest(d)
	return err
}

// balanceRequest converts a creation draft into the backend request.
func balanceRequest(d viewstate.Draft) (services.CreditBalanceRequest, error) {
	var req services.CreditBalanceRequest

	agentID, _ := d.Get("agent")
	if agentID == "" {
		return req, fmt.Errorf("agent is required")
	}

	amountStr, _ := d.Get("amount")
	amount, err := parseAmount(amountStr)
	if err != nil {
		return req, fmt.Errorf("invalid amount %q: %w", amountStr, err)
	}
	if !amount.GreaterThan(decimal.Zero) {
		return req, fmt.Errorf("amount must be positive")
	}

	methodStr, _ := d.Get("method")
	method, ok := models.ParsePaymentMethod(methodStr)
	if !ok {
		return req, fmt.Errorf("unknown payment method %q (use spei, stripe or link)", methodStr)
	}

	reference, _ := d.Get("reference")
	if method == models.MethodSPEI && reference == "" {
		return req, fmt.Errorf("SPEI balances need a --reference")
	}
	comment, _ := d.Get("comment")

	return services.CreditBalanceRequest{
		AgentID:    agentID,
		Monto:      models.NewAmount(amount),
		FormaPago:  method,
		Referencia: reference,
		Comentario: comment,
	}, nil
}
