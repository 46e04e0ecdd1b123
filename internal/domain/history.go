package domain

import (
	"time"

	"github.com/google/uuid"
)

// HistoryRecord is the append-only record of one finished operation,
// derived from the originating task unit and its terminal outcome.
type HistoryRecord struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	Operation Operation `json:"operation"`

	// Target is the primary input path of the operation.
	Target string `json:"target"`

	// Outcome is success, failure or cancelled.
	Outcome string `json:"outcome"`

	// Message is the error description on failure, or a short summary.
	Message string `json:"message,omitempty"`

	// RiskScore is set for analyze operations that succeeded.
	RiskScore *int `json:"risk_score,omitempty"`

	// Duration is how long the operation ran.
	Duration time.Duration `json:"duration"`

	CreatedAt time.Time `json:"created_at"`
}
