// Package events decouples operation completion from the components
// that react to it (history recording, notifications). Emitters publish
// without knowledge of handlers.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stegosight/stegosight/internal/domain"
)

// OperationCompletedEvent is published once per operation, when its
// single terminal result has been delivered.
type OperationCompletedEvent struct {
	// ID is a unique identifier for this event.
	ID uuid.UUID `json:"id"`

	// Record is the history record derived from the task unit and its
	// terminal outcome.
	Record domain.HistoryRecord `json:"record"`

	// CreatedAt is when the event was created.
	CreatedAt time.Time `json:"created_at"`
}

// NewOperationCompletedEvent wraps a history record in an event.
func NewOperationCompletedEvent(record domain.HistoryRecord) *OperationCompletedEvent {
	return &OperationCompletedEvent{
		ID:        uuid.New(),
		Record:    record,
		CreatedAt: time.Now().UTC(),
	}
}

// Handler is implemented by components that react to completed operations.
type Handler interface {
	// HandleOperationCompleted processes the event. Returning an error
	// does not stop delivery to other handlers.
	HandleOperationCompleted(ctx context.Context, event *OperationCompletedEvent) error
}

// Emitter publishes completion events to registered handlers.
type Emitter interface {
	Emit(ctx context.Context, event *OperationCompletedEvent) error
}
