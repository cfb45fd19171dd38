package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/serisow/ancrage/rag_type"
	"github.com/serisow/ancrage/services/rerank_service"
)

// Reranker reorders retrieved chunks by cross-encoder relevance and
// assigns the citation numbering everything downstream relies on.
type Reranker struct {
	service rerank_service.RerankService
	topN    int
	logger  *slog.Logger
}

func NewReranker(service rerank_service.RerankService, topN int, logger *slog.Logger) *Reranker {
	return &Reranker{
		service: service,
		topN:    topN,
		logger:  logger,
	}
}

// Rerank maps each provider result back to its source SearchResult by
// original index and assigns CitationIndex by output rank (1-based,
// provider relevance order). An empty input short-circuits without a
// provider call.
func (r *Reranker) Rerank(ctx context.Context, query string, documents []rag_type.SearchResult) ([]rag_type.RerankedResult, error) {
	if len(documents) == 0 {
		return []rag_type.RerankedResult{}, nil
	}

	contents := make([]string, len(documents))
	for i, doc := range documents {
		contents[i] = doc.Content
	}

	results, err := r.service.Rerank(ctx, query, contents, r.topN)
	if err != nil {
		return nil, fmt.Errorf("rerank documents: %w", err)
	}

	reranked := make([]rag_type.RerankedResult, 0, len(results))
	for pos, result := range results {
		if result.Index < 0 || result.Index >= len(documents) {
			return nil, fmt.Errorf("rerank returned out-of-range document index %d", result.Index)
		}
		reranked = append(reranked, rag_type.RerankedResult{
			SearchResult:  documents[result.Index],
			RerankScore:   result.RelevanceScore,
			CitationIndex: pos + 1,
		})
	}

	r.logger.Debug("Reranked documents",
		slog.Int("input_count", len(documents)),
		slog.Int("output_count", len(reranked)))

	return reranked, nil
}
