package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"cxc/internal/api"
	"cxc/internal/config"
	"cxc/internal/render"
	"cxc/internal/sheets"
)

// commandContext returns the command context canceled on interrupt.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}

// newBackend loads the configuration and builds the backend client.
func newBackend() (*config.Config, *api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.RequireAPI(); err != nil {
		return nil, nil, err
	}

	client, err := api.NewClient(cfg.APIConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	return cfg, client, nil
}

// newSheets builds the Google Sheets exporter.
func newSheets(ctx context.Context, cfg *config.Config) (*sheets.Service, error) {
	creds, err := cfg.SheetsCredentials()
	if err != nil {
		return nil, err
	}
	svc, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets service: %w", err)
	}
	return svc, nil
}

// splitList splits a comma separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// selectColumns narrows t to the comma separated column ids in list. An
// empty list keeps every column.
func selectColumns[T any](t *render.Table[T], list string) (*render.Table[T], error) {
	ids := splitList(list)
	if len(ids) == 0 {
		return t, nil
	}

	known := make(map[string]bool)
	for _, id := range t.IDs() {
		known[id] = true
	}
	for _, id := range ids {
		if !known[id] {
			return nil, fmt.Errorf("unknown column %q (available: %s)", id, strings.Join(t.IDs(), ","))
		}
	}
	return t.Select(ids...), nil
}

// parseAssignments parses key=value pairs.
func parseAssignments(pairs []string) ([][2]string, error) {
	out := make([][2]string, 0, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected key=value", p)
		}
		out = append(out, [2]string{key, strings.TrimSpace(value)})
	}
	return out, nil
}

// parseAmounts parses key=amount pairs.
func parseAmounts(pairs []string) (map[string]decimal.Decimal, error) {
	assignments, err := parseAssignments(pairs)
	if err != nil {
		return nil, err
	}

	out := make(map[string]decimal.Decimal, len(assignments))
	for _, a := range assignments {
		amount, err := parseAmount(a[1])
		if err != nil {
			return nil, fmt.Errorf("invalid amount for %s: %w", a[0], err)
		}
		out[a[0]] = amount
	}
	return out, nil
}

// parseAmount accepts "1500", "1,500.00" and "$1,500.00".
func parseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	return decimal.NewFromString(cleaned)
}

// parseDay parses YYYY-MM-DD in loc.
func parseDay(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}
