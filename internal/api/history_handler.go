package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/stegosight/stegosight/internal/api/shared"
	"github.com/stegosight/stegosight/internal/history"
)

// HistoryHandler serves the append-only operation history.
type HistoryHandler struct {
	store  history.Store
	logger *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler backed by store.
func NewHistoryHandler(store history.Store, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		store:  store,
		logger: logger.With("component", "history_handler"),
	}
}

// List handles GET /history?limit=N, newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	records, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list history", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to list history")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, records)
}

// Export handles GET /history/export, streaming the history as CSV.
func (h *HistoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context(), 0)
	if err != nil {
		h.logger.Error("failed to list history for export", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to export history")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="stegosight-history.csv"`)
	if err := history.ExportCSV(w, records); err != nil {
		h.logger.Error("failed to write CSV export", "error", err)
	}
}
