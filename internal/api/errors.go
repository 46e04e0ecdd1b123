package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/stegosight/stegosight/internal/api/shared"
	"github.com/stegosight/stegosight/internal/domain"
	"github.com/stegosight/stegosight/internal/service"
	"github.com/stegosight/stegosight/internal/task"
)

// HandleServiceError maps service-layer errors to HTTP responses. The
// raw error text is only exposed for client mistakes; everything else
// gets a generic message.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors

	switch {
	case errors.Is(err, service.ErrOperationNotFound):
		shared.RespondWithError(w, r, http.StatusNotFound, "Operation not found")
	case errors.Is(err, task.ErrQueueFull):
		shared.RespondWithError(w, r, http.StatusTooManyRequests, "Queue is full, retry later")
	case errors.Is(err, task.ErrPoolStopped):
		shared.RespondWithError(w, r, http.StatusServiceUnavailable, "Service is shutting down")
	case errors.Is(err, domain.ErrUnknownOperation),
		errors.Is(err, domain.ErrNoInputs),
		errors.Is(err, service.ErrInvalidCarrier),
		errors.As(err, &verrs):
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
	default:
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}
