package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stegosight/stegosight/internal/api/shared"
	"github.com/stegosight/stegosight/internal/domain"
	"github.com/stegosight/stegosight/internal/service"
)

// OperationHandler exposes operation submission, inspection and
// cancellation over HTTP.
type OperationHandler struct {
	service *service.OperationService
	logger  *slog.Logger
}

// NewOperationHandler creates an OperationHandler.
func NewOperationHandler(svc *service.OperationService, logger *slog.Logger) *OperationHandler {
	return &OperationHandler{
		service: svc,
		logger:  logger.With("component", "operation_handler"),
	}
}

// Submit handles POST /operations. A valid request is enqueued and
// acknowledged with 202; progress is available via GET /operations/{id}.
func (h *OperationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req OperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	var params any
	if len(req.Params) > 0 {
		params = req.Params
	}

	unit, err := domain.NewTaskUnit(domain.Operation(req.Operation), req.Inputs, params)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	id, err := h.service.Submit(r.Context(), unit, nil)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, OperationAccepted{ID: id})
}

// Get handles GET /operations/{id}.
func (h *OperationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	snap, err := h.service.Get(id)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snap)
}

// List handles GET /operations.
func (h *OperationHandler) List(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.service.List())
}

// Cancel handles DELETE /operations/{id}. Cancellation is cooperative:
// 204 means the request was accepted, not that the operation has
// already terminated.
func (h *OperationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Cancel(id); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OperationHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid operation ID")
		return uuid.Nil, false
	}
	return id, true
}
