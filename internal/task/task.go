package task

import (
	"context"

	"github.com/google/uuid"
)

// ProgressFunc reports intermediate progress from a running task.
// percent is 0-100 or ProgressIndeterminate; message is optional.
// Implementations never block the caller.
type ProgressFunc func(percent int, message string)

// Task is a unit of background work the pool can execute.
//
// Execute runs on a pool goroutine. Implementations must poll the token
// at bounded intervals (before and after each logically atomic sub-step,
// at least every few hundred milliseconds for long operations) and
// return ErrCancelled promptly once they observe it set. Failing to
// check promptly is a correctness bug in the task, not the pool.
type Task interface {
	// ID returns the task's unique identifier.
	ID() uuid.UUID

	// Kind returns the operation kind identifier, used for logging.
	Kind() string

	// Execute runs the task and returns its operation-specific payload.
	Execute(ctx context.Context, token *Token, progress ProgressFunc) (any, error)
}
