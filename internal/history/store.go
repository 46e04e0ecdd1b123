// Package history keeps the append-only record of finished operations.
package history

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/stegosight/stegosight/internal/domain"
)

// Store is the persistence contract for history records. Records are
// append-only; there is no update or delete.
type Store interface {
	// Append persists a record.
	Append(ctx context.Context, record *domain.HistoryRecord) error

	// List returns the most recent records, newest first. A limit of
	// zero or less means no limit.
	List(ctx context.Context, limit int) ([]domain.HistoryRecord, error)
}

// ExportCSV writes records as CSV, one row per record, with a header.
func ExportCSV(w io.Writer, records []domain.HistoryRecord) error {
	cw := csv.NewWriter(w)

	header := []string{"timestamp", "operation", "target", "outcome", "message", "risk_score", "duration_ms"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, record := range records {
		risk := ""
		if record.RiskScore != nil {
			risk = strconv.Itoa(*record.RiskScore)
		}
		row := []string{
			record.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			string(record.Operation),
			record.Target,
			record.Outcome,
			record.Message,
			risk,
			strconv.FormatInt(record.Duration.Milliseconds(), 10),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
