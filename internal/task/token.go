package task

import (
	"errors"
	"sync/atomic"
)

// ErrCancelled is returned by engines and tasks that observed their
// cancellation token set and aborted early.
var ErrCancelled = errors.New("operation cancelled")

// Token is a shared cancellation flag polled cooperatively by a running
// task. It is shared between exactly two parties: the submitter, which
// may set it, and the running task, which polls it. The flag is
// monotonic: once set it never resets.
type Token struct {
	cancelled atomic.Bool
}

// NewToken creates a token in the not-cancelled state.
func NewToken() *Token {
	return &Token{}
}

// Cancel requests cancellation. It is idempotent and safe to call from
// any goroutine; after it returns the token is permanently cancelled.
func (t *Token) Cancel() {
	t.cancelled.Store(true)
}

// Cancelled reports whether cancellation has been requested.
func (t *Token) Cancelled() bool {
	return t.cancelled.Load()
}

// Err returns ErrCancelled once the token is set, nil otherwise. It
// lets engines poll the token in the same shape as ctx.Err().
func (t *Token) Err() error {
	if t.cancelled.Load() {
		return ErrCancelled
	}
	return nil
}
