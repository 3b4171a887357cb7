package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cxc/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "cxc",
	Short: "cxc - accounts receivable and provider reconciliation",
	Long: `cxc (cuentas por cobrar) is the back-office command-line tool for
receivables aging, provider settlement reconciliation and credit balances.

It talks to the back-office backend configured with CXC_API_URL and
CXC_API_KEY and can export reports to Google Sheets.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return 1
	}
	return 0
}
