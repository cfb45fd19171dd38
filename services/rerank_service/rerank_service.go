package rerank_service

import (
	"context"
	"fmt"
)

// RerankResult is one provider result: the index into the submitted
// document list plus its relevance score.
type RerankResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

// RerankService scores documents against a query and returns the top
// topN in descending relevance order. Callers must not invoke it with
// an empty document list.
type RerankService interface {
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]RerankResult, error)
}

type ProviderError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("rerank provider error (HTTP %d): %s", e.StatusCode, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
