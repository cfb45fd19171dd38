package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/serisow/ancrage/pipeline"
	"github.com/serisow/ancrage/rag_type"
)

// IngestRequest represents a raw-text ingestion request.
type IngestRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Title  string `json:"title"`
}

type IngestResponse struct {
	Success bool                 `json:"success"`
	Stats   rag_type.IngestStats `json:"stats"`
}

// IngestHandler chunks, embeds and stores raw text documents.
type IngestHandler struct {
	pipeline IngestRunner
	logger   *slog.Logger
}

func NewIngestHandler(pipeline IngestRunner, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request body",
			slog.String("error", err.Error()))
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Text == "" || req.Source == "" {
		writeJSONError(w, "Text and source are required", http.StatusBadRequest)
		return
	}

	stats, err := h.pipeline.Ingest(r.Context(), req.Text, req.Source, req.Title)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoChunks) {
			writeJSONError(w, "No valid chunks created from text", http.StatusBadRequest)
			return
		}
		h.logger.Error("Failed to ingest document",
			slog.String("source", req.Source),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to process document: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := writeJSON(w, IngestResponse{Success: true, Stats: *stats}); err != nil {
		h.logger.Error("Failed to encode response",
			slog.String("error", err.Error()))
	}
}
