package task

import (
	"context"

	"github.com/google/uuid"
)

// MockTask is a simple Task implementation for testing.
type MockTask struct {
	TaskID   uuid.UUID
	TaskKind string
	ExecFn   func(ctx context.Context, token *Token, progress ProgressFunc) (any, error)
}

// NewMockTask creates a MockTask that succeeds immediately with a nil payload.
func NewMockTask(kind string) *MockTask {
	return &MockTask{
		TaskID:   uuid.New(),
		TaskKind: kind,
		ExecFn: func(ctx context.Context, token *Token, progress ProgressFunc) (any, error) {
			return nil, nil
		},
	}
}

// ID returns the task's unique identifier.
func (t *MockTask) ID() uuid.UUID {
	return t.TaskID
}

// Kind returns the operation kind identifier.
func (t *MockTask) Kind() string {
	return t.TaskKind
}

// Execute runs the configured function.
func (t *MockTask) Execute(ctx context.Context, token *Token, progress ProgressFunc) (any, error) {
	return t.ExecFn(ctx, token, progress)
}
