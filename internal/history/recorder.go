package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stegosight/stegosight/internal/events"
)

// Recorder appends a history record for every completed operation. It
// is registered as an event handler so the execution core needs no
// knowledge of history persistence.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

// NewRecorder creates a recorder backed by the given store.
func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger.With("component", "history_recorder"),
	}
}

// HandleOperationCompleted appends the event's record to the store.
func (r *Recorder) HandleOperationCompleted(ctx context.Context, event *events.OperationCompletedEvent) error {
	if err := r.store.Append(ctx, &event.Record); err != nil {
		r.logger.Error("failed to append history record",
			"error", err,
			"task_id", event.Record.TaskID,
			"operation", event.Record.Operation)
		return fmt.Errorf("failed to append history record: %w", err)
	}

	r.logger.Debug("history record appended",
		"task_id", event.Record.TaskID,
		"operation", event.Record.Operation,
		"outcome", event.Record.Outcome)
	return nil
}

var _ events.Handler = (*Recorder)(nil)
