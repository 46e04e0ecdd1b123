package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// drain collects every event from the stream until it closes.
func drain(t *testing.T, events <-chan Event) []Event {
	t.Helper()

	var collected []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return collected
			}
			collected = append(collected, ev)
		case <-timeout:
			t.Fatal("timed out draining event stream")
		}
	}
}

func TestWorker_SuccessStream(t *testing.T) {
	mock := NewMockTask("embed")
	mock.ExecFn = func(ctx context.Context, token *Token, progress ProgressFunc) (any, error) {
		progress(25, "loading files")
		progress(75, "embedding")
		return "payload", nil
	}

	w := newWorker(mock, NewToken(), setupTestLogger())
	w.run(context.Background())

	events := drain(t, w.events)
	require.Len(t, events, 3)

	assert.False(t, events[0].Terminal)
	assert.Equal(t, 25, events[0].Percent)
	assert.Equal(t, "loading files", events[0].Message)
	assert.Equal(t, 75, events[1].Percent)

	terminal := events[2]
	assert.True(t, terminal.Terminal)
	assert.Equal(t, OutcomeSuccess, terminal.Outcome)
	assert.Equal(t, "payload", terminal.Payload)
	assert.Equal(t, mock.ID(), terminal.TaskID)
}

func TestWorker_FailureCarriesErrorDescription(t *testing.T) {
	mock := NewMockTask("analyze")
	mock.ExecFn = func(ctx context.Context, token *Token, progress ProgressFunc) (any, error) {
		return nil, errors.New("chi-square detector exploded")
	}

	w := newWorker(mock, NewToken(), setupTestLogger())
	w.run(context.Background())

	events := drain(t, w.events)
	require.Len(t, events, 1)
	assert.True(t, events[0].Terminal)
	assert.Equal(t, OutcomeFailure, events[0].Outcome)
	assert.Equal(t, "chi-square detector exploded", events[0].Err)
	assert.Nil(t, events[0].Payload)
}

func TestWorker_PanicBecomesFailure(t *testing.T) {
	mock := NewMockTask("extract")
	mock.ExecFn = func(ctx context.Context, token *Token, progress ProgressFunc) (any, error) {
		panic("boom")
	}

	w := newWorker(mock, NewToken(), setupTestLogger())
	// Must not propagate the panic to the caller.
	require.NotPanics(t, func() { w.run(context.Background()) })

	events := drain(t, w.events)
	require.Len(t, events, 1)
	assert.Equal(t, OutcomeFailure, events[0].Outcome)
	assert.Contains(t, events[0].Err, "panic")
}

func TestWorker_CancelBeforeStartIsNeverSuccess(t *testing.T) {
	executed := false
	mock := NewMockTask("embed")
	mock.ExecFn = func(ctx context.Context, token *Token, progress ProgressFunc) (any, error) {
		executed = true
		return "should not happen", nil
	}

	token := NewToken()
	token.Cancel()

	w := newWorker(mock, token, setupTestLogger())
	w.run(context.Background())

	events := drain(t, w.events)
	require.Len(t, events, 1)
	assert.Equal(t, OutcomeCancelled, events[0].Outcome)
	assert.False(t, executed, "task must not run once cancellation precedes the first polling point")
}

func TestWorker_NoProgressAfterCancellationObserved(t *testing.T) {
	mock := NewMockTask("embed")
	mock.ExecFn = func(ctx context.Context, token *Token, progress ProgressFunc) (any, error) {
		progress(10, "step 1")
		token.Cancel() // simulate the submitter cancelling mid-run
		progress(20, "step 2")
		return nil, ErrCancelled
	}

	w := newWorker(mock, NewToken(), setupTestLogger())
	w.run(context.Background())

	events := drain(t, w.events)
	require.Len(t, events, 2)
	assert.Equal(t, 10, events[0].Percent)
	assert.Equal(t, OutcomeCancelled, events[1].Outcome)
}

func TestWorker_TokenObservedMapsToCancelled(t *testing.T) {
	// A task that returns a plain error after the token was set must
	// still terminate Cancelled, never Failure.
	mock := NewMockTask("neutralize")
	mock.ExecFn = func(ctx context.Context, token *Token, progress ProgressFunc) (any, error) {
		token.Cancel()
		return nil, errors.New("aborted midway")
	}

	w := newWorker(mock, NewToken(), setupTestLogger())
	w.run(context.Background())

	events := drain(t, w.events)
	require.Len(t, events, 1)
	assert.Equal(t, OutcomeCancelled, events[0].Outcome)
	assert.Empty(t, events[0].Err)
}

func TestWorker_TerminalDeliveredExactlyOnce(t *testing.T) {
	mock := NewMockTask("embed")

	w := newWorker(mock, NewToken(), setupTestLogger())
	w.run(context.Background())
	// A late abandon (e.g. pool shutdown racing completion) must not
	// deliver a second terminal or panic on the closed channel.
	require.NotPanics(t, w.abandon)

	events := drain(t, w.events)
	terminals := 0
	for _, ev := range events {
		if ev.Terminal {
			terminals++
		}
	}
	assert.Equal(t, 1, terminals)
}

func TestWorker_LaggingConsumerNeverBlocksTerminal(t *testing.T) {
	mock := NewMockTask("embed")
	mock.ExecFn = func(ctx context.Context, token *Token, progress ProgressFunc) (any, error) {
		// Far more progress than the stream buffers; nobody is reading.
		for i := 0; i < eventBufferSize*4; i++ {
			progress(i, "")
		}
		return nil, nil
	}

	w := newWorker(mock, NewToken(), setupTestLogger())

	done := make(chan struct{})
	go func() {
		w.run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker blocked delivering events to an absent consumer")
	}

	events := drain(t, w.events)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.True(t, last.Terminal)
	assert.Equal(t, OutcomeSuccess, last.Outcome)
}
