package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Operation identifies one of the four steganography capabilities.
type Operation string

// Supported operations.
const (
	OperationEmbed      Operation = "embed"
	OperationExtract    Operation = "extract"
	OperationAnalyze    Operation = "analyze"
	OperationNeutralize Operation = "neutralize"
)

// Validation errors for task units.
var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrNoInputs         = errors.New("task unit requires at least one input path")
)

// Valid reports whether o names a supported operation.
func (o Operation) Valid() bool {
	switch o {
	case OperationEmbed, OperationExtract, OperationAnalyze, OperationNeutralize:
		return true
	}
	return false
}

// TaskUnit describes one requested operation: its kind, the ordered
// input file paths and an operation-specific parameter bundle. It is
// immutable after creation and discarded once the task terminates.
type TaskUnit struct {
	ID        uuid.UUID       `json:"id"`
	Operation Operation       `json:"operation"`
	Inputs    []string        `json:"inputs"`
	Params    json.RawMessage `json:"params"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewTaskUnit builds a task unit, serializing the parameter bundle.
func NewTaskUnit(op Operation, inputs []string, params any) (*TaskUnit, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	for _, input := range inputs {
		if input == "" {
			return nil, fmt.Errorf("%w: empty input path", ErrNoInputs)
		}
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	return &TaskUnit{
		ID:        uuid.New(),
		Operation: op,
		Inputs:    append([]string(nil), inputs...),
		Params:    raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Target returns the primary input path of the unit.
func (u *TaskUnit) Target() string {
	if len(u.Inputs) == 0 {
		return ""
	}
	return u.Inputs[0]
}

// UnmarshalParams decodes the parameter bundle into v.
func (u *TaskUnit) UnmarshalParams(v any) error {
	if len(u.Params) == 0 {
		return nil
	}
	return json.Unmarshal(u.Params, v)
}
