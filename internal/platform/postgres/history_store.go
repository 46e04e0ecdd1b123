// Package postgres provides the PostgreSQL-backed history store used in
// daemon mode.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stegosight/stegosight/internal/domain"
	"github.com/stegosight/stegosight/internal/history"
	"github.com/stegosight/stegosight/internal/platform/logger"
)

// HistoryStore implements history.Store on PostgreSQL.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore creates a store on the given database handle.
func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Append persists a history record.
func (s *HistoryStore) Append(ctx context.Context, record *domain.HistoryRecord) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO history_records (id, task_id, operation, target, outcome, message, risk_score, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var risk sql.NullInt32
	if record.RiskScore != nil {
		risk = sql.NullInt32{Int32: int32(*record.RiskScore), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.TaskID,
		record.Operation,
		record.Target,
		record.Outcome,
		record.Message,
		risk,
		record.Duration.Milliseconds(),
		record.CreatedAt,
	)
	if err != nil {
		log.Error("failed to append history record",
			"task_id", record.TaskID,
			"operation", record.Operation,
			"error", err)
		return fmt.Errorf("failed to append history record: %w", err)
	}

	return nil
}

// List returns the most recent records, newest first. A limit of zero
// or less means no limit.
func (s *HistoryStore) List(ctx context.Context, limit int) ([]domain.HistoryRecord, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, task_id, operation, target, outcome, message, risk_score, duration_ms, created_at
		FROM history_records
		ORDER BY created_at DESC, id DESC
	`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query history records", "error", err)
		return nil, fmt.Errorf("failed to query history records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []domain.HistoryRecord
	for rows.Next() {
		var (
			record     domain.HistoryRecord
			id, taskID uuid.UUID
			operation  string
			risk       sql.NullInt32
			durationMS int64
			createdAt  time.Time
		)

		if err := rows.Scan(&id, &taskID, &operation, &record.Target, &record.Outcome,
			&record.Message, &risk, &durationMS, &createdAt); err != nil {
			log.Error("failed to scan history row", "error", err)
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		record.ID = id
		record.TaskID = taskID
		record.Operation = domain.Operation(operation)
		if risk.Valid {
			score := int(risk.Int32)
			record.RiskScore = &score
		}
		record.Duration = time.Duration(durationMS) * time.Millisecond
		record.CreatedAt = createdAt

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating history rows", "error", err)
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}

	return records, nil
}

var _ history.Store = (*HistoryStore)(nil)
