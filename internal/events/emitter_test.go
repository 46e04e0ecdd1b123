package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stegosight/stegosight/internal/domain"
)

type captureHandler struct {
	received []*OperationCompletedEvent
	err      error
}

func (h *captureHandler) HandleOperationCompleted(ctx context.Context, event *OperationCompletedEvent) error {
	h.received = append(h.received, event)
	return h.err
}

func testRecord() domain.HistoryRecord {
	return domain.HistoryRecord{
		ID:        uuid.New(),
		TaskID:    uuid.New(),
		Operation: domain.OperationAnalyze,
		Target:    "suspect.png",
		Outcome:   "success",
		Duration:  time.Second,
		CreatedAt: time.Now().UTC(),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInMemoryEmitter_DeliversToAllHandlers(t *testing.T) {
	emitter := NewInMemoryEmitter(testLogger())
	first := &captureHandler{}
	second := &captureHandler{}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(second)

	event := NewOperationCompletedEvent(testRecord())
	require.NoError(t, emitter.Emit(context.Background(), event))

	require.Len(t, first.received, 1)
	require.Len(t, second.received, 1)
	assert.Equal(t, event.ID, first.received[0].ID)
}

func TestInMemoryEmitter_HandlerErrorDoesNotStopOthers(t *testing.T) {
	emitter := NewInMemoryEmitter(testLogger())
	failing := &captureHandler{err: errors.New("disk full")}
	healthy := &captureHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(healthy)

	err := emitter.Emit(context.Background(), NewOperationCompletedEvent(testRecord()))
	assert.EqualError(t, err, "disk full")
	assert.Len(t, healthy.received, 1)
}

func TestInMemoryEmitter_NoHandlers(t *testing.T) {
	emitter := NewInMemoryEmitter(testLogger())
	assert.NoError(t, emitter.Emit(context.Background(), NewOperationCompletedEvent(testRecord())))
}
