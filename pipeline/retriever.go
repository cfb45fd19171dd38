package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/serisow/ancrage/rag_type"
	"github.com/serisow/ancrage/services/embedding_service"
	"github.com/serisow/ancrage/vector_store"
)

// Retriever embeds a query and fetches its nearest chunks. Query
// embeddings are never cached across calls.
type Retriever struct {
	embedder embedding_service.EmbeddingService
	store    vector_store.Store
	topK     int
	logger   *slog.Logger
}

func NewRetriever(embedder embedding_service.EmbeddingService, store vector_store.Store, topK int, logger *slog.Logger) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    store,
		topK:     topK,
		logger:   logger,
	}
}

func (r *Retriever) Retrieve(ctx context.Context, query string) ([]rag_type.SearchResult, error) {
	queryEmbedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := r.store.Search(ctx, queryEmbedding, r.topK)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}

	r.logger.Debug("Retrieved documents",
		slog.Int("top_k", r.topK),
		slog.Int("result_count", len(results)))

	return results, nil
}
