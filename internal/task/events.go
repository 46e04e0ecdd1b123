package task

import (
	"github.com/google/uuid"
)

// Outcome classifies the single terminal result of a task.
type Outcome string

// Possible terminal outcomes.
const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFailure   Outcome = "failure"
	OutcomeCancelled Outcome = "cancelled"
)

// ProgressIndeterminate marks a progress event whose completion
// percentage is unknown.
const ProgressIndeterminate = -1

// Event is one element of a task's event stream: zero or more progress
// updates followed by exactly one terminal result, after which the
// stream is closed. Events from a single task are delivered in emission
// order to a single consumer; no ordering holds across tasks.
type Event struct {
	// TaskID identifies the task the event belongs to.
	TaskID uuid.UUID

	// Terminal is true on the final event of the stream.
	Terminal bool

	// Percent is the completion percentage (0-100) or
	// ProgressIndeterminate. Only meaningful when Terminal is false.
	Percent int

	// Message is an optional human-readable status string.
	Message string

	// Outcome is set on the terminal event.
	Outcome Outcome

	// Payload carries the operation-specific result on success.
	Payload any

	// Err carries a human-readable error description on failure.
	Err string
}

func newProgressEvent(id uuid.UUID, percent int, message string) Event {
	return Event{TaskID: id, Percent: percent, Message: message}
}

func newResultEvent(id uuid.UUID, outcome Outcome, payload any, errText string) Event {
	return Event{
		TaskID:   id,
		Terminal: true,
		Outcome:  outcome,
		Payload:  payload,
		Err:      errText,
	}
}
