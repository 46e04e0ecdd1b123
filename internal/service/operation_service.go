// Package service coordinates the application's use cases: submitting
// operations to the shared pool, tracking their progress, cancelling
// them, and publishing completion events.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stegosight/stegosight/internal/carrier"
	"github.com/stegosight/stegosight/internal/domain"
	"github.com/stegosight/stegosight/internal/engine"
	"github.com/stegosight/stegosight/internal/events"
	"github.com/stegosight/stegosight/internal/task"
)

// Errors returned by the operation service.
var (
	ErrOperationNotFound = errors.New("operation not found")
	ErrInvalidCarrier    = errors.New("invalid carrier")
)

// Observer receives every event of one operation's stream, in order.
// It is called from the service's consumer goroutine and must not block.
type Observer func(task.Event)

// Snapshot is a point-in-time view of one operation's state.
type Snapshot struct {
	ID        uuid.UUID        `json:"id"`
	Operation domain.Operation `json:"operation"`
	Target    string           `json:"target"`
	Percent   int              `json:"percent"`
	Message   string           `json:"message,omitempty"`
	Done      bool             `json:"done"`
	Outcome   task.Outcome     `json:"outcome,omitempty"`
	Error     string           `json:"error,omitempty"`
	Payload   any              `json:"payload,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// operationState is the mutable tracking record for one submission.
type operationState struct {
	unit      *domain.TaskUnit
	token     *task.Token
	startedAt time.Time

	percent  int
	message  string
	done     bool
	outcome  task.Outcome
	errText  string
	payload  any
	finished time.Time
}

// OperationService owns the lifecycle of steganography operations. All
// submissions share one pool, so concurrency is bounded process-wide.
type OperationService struct {
	pool    *task.Pool
	engine  engine.Engine
	emitter events.Emitter
	logger  *slog.Logger

	mu  sync.RWMutex
	ops map[uuid.UUID]*operationState
}

// NewOperationService wires the service to its collaborators.
func NewOperationService(
	pool *task.Pool,
	eng engine.Engine,
	emitter events.Emitter,
	logger *slog.Logger,
) *OperationService {
	return &OperationService{
		pool:    pool,
		engine:  eng,
		emitter: emitter,
		logger:  logger.With("component", "operation_service"),
		ops:     make(map[uuid.UUID]*operationState),
	}
}

// Submit validates the unit's parameters, enqueues it on the shared
// pool and starts consuming its event stream. The returned ID can be
// used with Get and Cancel. The observer, when non-nil, sees every
// event of the stream in order. Submission never blocks: a full queue
// surfaces as task.ErrQueueFull.
func (s *OperationService) Submit(ctx context.Context, unit *domain.TaskUnit, observer Observer) (uuid.UUID, error) {
	t, err := s.buildTask(unit)
	if err != nil {
		return uuid.Nil, err
	}

	token, stream, err := s.pool.Submit(t)
	if err != nil {
		return uuid.Nil, err
	}

	state := &operationState{
		unit:      unit,
		token:     token,
		startedAt: time.Now().UTC(),
		percent:   0,
	}

	s.mu.Lock()
	s.ops[unit.ID] = state
	s.mu.Unlock()

	s.logger.Info("operation submitted",
		"operation_id", unit.ID,
		"operation", unit.Operation,
		"target", unit.Target())

	go s.consume(state, stream, observer)

	return unit.ID, nil
}

// Cancel requests cooperative cancellation of a running or queued
// operation. It returns immediately; the operation terminates with a
// Cancelled outcome once it observes the token. Cancelling an already
// terminated operation is a no-op.
func (s *OperationService) Cancel(id uuid.UUID) error {
	s.mu.RLock()
	state, ok := s.ops[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrOperationNotFound, id)
	}

	state.token.Cancel()
	s.logger.Info("cancellation requested", "operation_id", id)
	return nil
}

// Get returns a snapshot of the operation's current state.
func (s *OperationService) Get(id uuid.UUID) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.ops[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOperationNotFound, id)
	}

	return &Snapshot{
		ID:        state.unit.ID,
		Operation: state.unit.Operation,
		Target:    state.unit.Target(),
		Percent:   state.percent,
		Message:   state.message,
		Done:      state.done,
		Outcome:   state.outcome,
		Error:     state.errText,
		Payload:   state.payload,
		CreatedAt: state.unit.CreatedAt,
	}, nil
}

// List returns snapshots of all tracked operations, newest first.
func (s *OperationService) List() []*Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Snapshot, 0, len(s.ops))
	for id := range s.ops {
		snap, _ := s.snapshotLocked(id)
		if snap != nil {
			out = append(out, snap)
		}
	}
	return out
}

func (s *OperationService) snapshotLocked(id uuid.UUID) (*Snapshot, error) {
	state, ok := s.ops[id]
	if !ok {
		return nil, ErrOperationNotFound
	}
	return &Snapshot{
		ID:        state.unit.ID,
		Operation: state.unit.Operation,
		Target:    state.unit.Target(),
		Percent:   state.percent,
		Message:   state.message,
		Done:      state.done,
		Outcome:   state.outcome,
		Error:     state.errText,
		Payload:   state.payload,
		CreatedAt: state.unit.CreatedAt,
	}, nil
}

// consume drains one operation's event stream, keeping the tracked
// state current and forwarding each event to the observer. When the
// terminal event arrives it publishes an OperationCompletedEvent.
func (s *OperationService) consume(state *operationState, stream <-chan task.Event, observer Observer) {
	for event := range stream {
		s.mu.Lock()
		if event.Terminal {
			state.done = true
			state.outcome = event.Outcome
			state.errText = event.Err
			state.payload = event.Payload
			state.finished = time.Now().UTC()
			if event.Outcome == task.OutcomeSuccess {
				state.percent = 100
			}
		} else {
			state.percent = event.Percent
			state.message = event.Message
		}
		s.mu.Unlock()

		if observer != nil {
			observer(event)
		}

		if event.Terminal {
			s.publishCompletion(state, event)
		}
	}
}

func (s *OperationService) publishCompletion(state *operationState, event task.Event) {
	record := domain.HistoryRecord{
		ID:        uuid.New(),
		TaskID:    state.unit.ID,
		Operation: state.unit.Operation,
		Target:    state.unit.Target(),
		Outcome:   string(event.Outcome),
		Message:   event.Err,
		Duration:  state.finished.Sub(state.startedAt),
		CreatedAt: state.finished,
	}

	if report, ok := event.Payload.(*domain.AnalysisReport); ok && report != nil {
		score := report.RiskScore
		record.RiskScore = &score
		record.Message = report.Recommendation
	}

	if err := s.emitter.Emit(context.Background(), events.NewOperationCompletedEvent(record)); err != nil {
		s.logger.Error("failed to publish completion event",
			"error", err,
			"operation_id", state.unit.ID)
	}

	s.logger.Info("operation completed",
		"operation_id", state.unit.ID,
		"operation", state.unit.Operation,
		"outcome", event.Outcome,
		"duration_ms", record.Duration.Milliseconds())
}

// buildTask converts a task unit into a pool task bound to the engine.
// Parameter decoding and validation happen here so malformed requests
// fail fast, before consuming a queue slot.
func (s *OperationService) buildTask(unit *domain.TaskUnit) (task.Task, error) {
	switch unit.Operation {
	case domain.OperationEmbed:
		var params domain.EmbedParams
		if err := unit.UnmarshalParams(&params); err != nil {
			return nil, fmt.Errorf("failed to decode embed params: %w", err)
		}
		if err := params.Validate(); err != nil {
			return nil, err
		}
		if result := carrier.ValidatePath(unit.Target()); !result.Valid {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCarrier, result.Message)
		}
		return &engineTask{unit: unit, run: func(ctx context.Context, token *task.Token, progress task.ProgressFunc) (any, error) {
			return s.engine.Embed(ctx, engine.EmbedRequest{Carrier: unit.Target(), Params: params}, token, progress)
		}}, nil

	case domain.OperationExtract:
		var params domain.ExtractParams
		if err := unit.UnmarshalParams(&params); err != nil {
			return nil, fmt.Errorf("failed to decode extract params: %w", err)
		}
		if err := params.Validate(); err != nil {
			return nil, err
		}
		return &engineTask{unit: unit, run: func(ctx context.Context, token *task.Token, progress task.ProgressFunc) (any, error) {
			return s.engine.Extract(ctx, engine.ExtractRequest{StegoFile: unit.Target(), Params: params}, token, progress)
		}}, nil

	case domain.OperationAnalyze:
		var params domain.AnalyzeParams
		if err := unit.UnmarshalParams(&params); err != nil {
			return nil, fmt.Errorf("failed to decode analyze params: %w", err)
		}
		if err := params.Validate(); err != nil {
			return nil, err
		}
		return &engineTask{unit: unit, run: func(ctx context.Context, token *task.Token, progress task.ProgressFunc) (any, error) {
			return s.engine.Analyze(ctx, engine.AnalyzeRequest{Target: unit.Target(), Params: params}, token, progress)
		}}, nil

	case domain.OperationNeutralize:
		var params domain.NeutralizeParams
		if err := unit.UnmarshalParams(&params); err != nil {
			return nil, fmt.Errorf("failed to decode neutralize params: %w", err)
		}
		if err := params.Validate(); err != nil {
			return nil, err
		}
		return &engineTask{unit: unit, run: func(ctx context.Context, token *task.Token, progress task.ProgressFunc) (any, error) {
			return s.engine.Neutralize(ctx, engine.NeutralizeRequest{Target: unit.Target(), Params: params}, token, progress)
		}}, nil

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownOperation, unit.Operation)
	}
}

// engineTask adapts one engine call to the pool's Task interface.
type engineTask struct {
	unit *domain.TaskUnit
	run  func(ctx context.Context, token *task.Token, progress task.ProgressFunc) (any, error)
}

func (t *engineTask) ID() uuid.UUID { return t.unit.ID }

func (t *engineTask) Kind() string { return string(t.unit.Operation) }

func (t *engineTask) Execute(ctx context.Context, token *task.Token, progress task.ProgressFunc) (any, error) {
	return t.run(ctx, token, progress)
}
