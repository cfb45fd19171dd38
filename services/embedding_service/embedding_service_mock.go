package embedding_service

import "context"

// MockEmbeddingService lets tests script embedding behavior.
type MockEmbeddingService struct {
	EmbedBatchFunc func(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQueryFunc func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return m.EmbedBatchFunc(ctx, texts)
}

func (m *MockEmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return m.EmbedQueryFunc(ctx, text)
}
