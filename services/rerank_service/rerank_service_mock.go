package rerank_service

import "context"

// MockRerankService lets tests script rerank behavior.
type MockRerankService struct {
	RerankFunc func(ctx context.Context, query string, documents []string, topN int) ([]RerankResult, error)
}

func (m *MockRerankService) Rerank(ctx context.Context, query string, documents []string, topN int) ([]RerankResult, error) {
	return m.RerankFunc(ctx, query, documents, topN)
}
