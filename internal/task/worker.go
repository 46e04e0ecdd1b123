package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// eventBufferSize bounds the per-task event channel. One slot is always
// reserved for the terminal event so delivering it never blocks the
// pool goroutine, even when the consumer lags behind on progress.
const eventBufferSize = 16

// worker adapts one Task into something the pool can run, forwarding
// progress and exactly one terminal result to the submitter's event
// channel.
type worker struct {
	task   Task
	token  *Token
	events chan Event
	logger *slog.Logger

	terminal sync.Once
	done     atomic.Bool
}

func newWorker(t Task, token *Token, logger *slog.Logger) *worker {
	return &worker{
		task:   t,
		token:  token,
		events: make(chan Event, eventBufferSize),
		logger: logger.With("task_id", t.ID(), "task_kind", t.Kind()),
	}
}

// run executes the wrapped task on the current goroutine. Panics and
// errors become a Failure result; an observed token becomes Cancelled.
// Exactly one terminal event is delivered regardless of how the task
// ends, and the event channel is closed afterwards.
func (w *worker) run(ctx context.Context) {
	// Cancelled before the first polling point: never invoke the task.
	if w.token.Cancelled() {
		w.logger.Debug("task cancelled before start")
		w.finish(newResultEvent(w.task.ID(), OutcomeCancelled, nil, ""))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("task panicked", "panic", r)
			w.finish(newResultEvent(w.task.ID(), OutcomeFailure, nil, fmt.Sprintf("panic: %v", r)))
		}
	}()

	payload, err := w.task.Execute(ctx, w.token, w.progress)

	switch {
	case w.token.Cancelled() || errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled):
		w.logger.Info("task cancelled")
		w.finish(newResultEvent(w.task.ID(), OutcomeCancelled, nil, ""))
	case err != nil:
		w.logger.Error("task failed", "error", err)
		w.finish(newResultEvent(w.task.ID(), OutcomeFailure, nil, err.Error()))
	default:
		w.logger.Info("task completed")
		w.finish(newResultEvent(w.task.ID(), OutcomeSuccess, payload, ""))
	}
}

// abandon delivers a Cancelled terminal without running the task. Used
// for work still queued when the pool shuts down.
func (w *worker) abandon() {
	w.token.Cancel()
	w.finish(newResultEvent(w.task.ID(), OutcomeCancelled, nil, ""))
}

// progress forwards a progress event to the consumer. Events are
// dropped once the terminal outcome is decided or cancellation has been
// observed, and when the consumer is not keeping up; the reserved slot
// keeps the terminal delivery non-blocking.
func (w *worker) progress(percent int, message string) {
	if w.done.Load() || w.token.Cancelled() {
		return
	}
	// Single producer: only the task's own goroutine sends, so the
	// length check cannot race with another sender.
	if len(w.events) >= cap(w.events)-1 {
		w.logger.Debug("dropping progress event, consumer lagging", "percent", percent)
		return
	}
	w.events <- newProgressEvent(w.task.ID(), percent, message)
}

// finish delivers the terminal event exactly once, closes the stream
// and discards the task so later Cancel calls are no-ops.
func (w *worker) finish(ev Event) {
	w.terminal.Do(func() {
		w.done.Store(true)
		w.events <- ev
		close(w.events)
	})
}
