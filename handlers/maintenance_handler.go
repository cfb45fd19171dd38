package handlers

import (
	"context"
	"log/slog"
	"net/http"
)

// CollectionClearer removes every document from the collection.
type CollectionClearer interface {
	Clear(ctx context.Context) error
}

// IndexRebuilder rebuilds the vector index for the collection.
type IndexRebuilder interface {
	CreateOrUpdateIndex(ctx context.Context) error
}

// MaintenanceHandler exposes collection-level operations that live
// outside the query and ingestion pipelines.
type MaintenanceHandler struct {
	store   CollectionClearer
	indexer IndexRebuilder
	logger  *slog.Logger
}

func NewMaintenanceHandler(store CollectionClearer, indexer IndexRebuilder, logger *slog.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{
		store:   store,
		indexer: indexer,
		logger:  logger,
	}
}

func (h *MaintenanceHandler) ClearDocuments(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		h.logger.Error("Failed to clear documents",
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to clear documents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.logger.Info("Cleared document collection")
	writeJSON(w, map[string]bool{"success": true})
}

func (h *MaintenanceHandler) ReindexDocuments(w http.ResponseWriter, r *http.Request) {
	if err := h.indexer.CreateOrUpdateIndex(r.Context()); err != nil {
		h.logger.Error("Failed to rebuild vector index",
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to rebuild index: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]bool{"success": true})
}
