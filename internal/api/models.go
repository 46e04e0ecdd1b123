package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TokenRequest is the body of POST /auth/token.
type TokenRequest struct {
	Passphrase string `json:"passphrase" validate:"required"`
}

// TokenResponse is the body returned on successful authentication.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OperationRequest is the body of POST /operations. Params is forwarded
// verbatim to the operation's parameter bundle.
type OperationRequest struct {
	Operation string          `json:"operation" validate:"required"`
	Inputs    []string        `json:"inputs" validate:"required,min=1,dive,required"`
	Params    json.RawMessage `json:"params,omitempty"`
}

// OperationAccepted is returned with 202 when an operation is enqueued.
type OperationAccepted struct {
	ID uuid.UUID `json:"id"`
}
