package handlers

import (
	"context"
	"log/slog"
	"net/http"
)

// DocumentCounter reports the number of persisted vector documents.
type DocumentCounter interface {
	Count(ctx context.Context) (int, error)
}

type StatsResponse struct {
	Count int `json:"count"`
}

type StatsHandler struct {
	store  DocumentCounter
	logger *slog.Logger
}

func NewStatsHandler(store DocumentCounter, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		store:  store,
		logger: logger,
	}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.Count(r.Context())
	if err != nil {
		h.logger.Error("Failed to count documents",
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to get stats: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := writeJSON(w, StatsResponse{Count: count}); err != nil {
		h.logger.Error("Failed to encode response",
			slog.String("error", err.Error()))
	}
}
