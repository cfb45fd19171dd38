package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// QueryRequest represents the incoming question.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryHandler answers natural-language questions over the corpus.
type QueryHandler struct {
	pipeline QueryRunner
	logger   *slog.Logger
}

func NewQueryHandler(pipeline QueryRunner, logger *slog.Logger) *QueryHandler {
	return &QueryHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request body",
			slog.String("error", err.Error()))
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Query == "" {
		writeJSONError(w, "Query is required", http.StatusBadRequest)
		return
	}

	result, err := h.pipeline.AnswerQuery(r.Context(), req.Query)
	if err != nil {
		h.logger.Error("Failed to process query",
			slog.String("query", req.Query),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to process query: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := writeJSON(w, result); err != nil {
		h.logger.Error("Failed to encode response",
			slog.String("error", err.Error()))
	}
}
