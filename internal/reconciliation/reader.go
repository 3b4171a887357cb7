package reconciliation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"cxc/internal/logger"
)

// SettlementSource fetches raw settlement records.
type SettlementSource interface {
	ListSettlements(ctx context.Context) ([]ProviderSettlementRecord, error)
}

// SettlementEditor persists a single-field change to a settlement record.
type SettlementEditor interface {
	EditSettlement(ctx context.Context, id string, field string, value interface{}) error
}

// DataReader loads reconciliation rows from the backend.
type DataReader struct {
	source SettlementSource
	log    zerolog.Logger
}

// NewDataReader creates a new data reader over source.
func NewDataReader(source SettlementSource) *DataReader {
	return &DataReader{
		source: source,
		log:    logger.WithComponent("reconciliation-reader"),
	}
}

// ReadRows fetches settlement records and transforms them into rows.
// On failure no partial list is returned.
func (dr *DataReader) ReadRows(ctx context.Context) ([]Row, error) {
	const op = "ReadRows"

	dr.log.Info().Msg("Reading provider settlements")

	records, err := dr.source.ListSettlements(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list settlements: %w", op, err)
	}

	rows := TransformAll(records)

	totals := Summarize(rows)
	dr.log.Info().
		Int("rows", totals.Rows).
		Int("invoiced", totals.ByStatus[StatusInvoiced]).
		Int("partial", totals.ByStatus[StatusPartial]).
		Int("not_invoiced", totals.ByStatus[StatusNotInvoiced]).
		Str("pending", totals.Pendiente.StringFixed(2)).
		Msg("Provider settlements read successfully")

	return rows, nil
}
