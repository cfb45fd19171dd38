package vector_store

import (
	"context"

	"github.com/serisow/ancrage/rag_type"
)

// MockStore lets tests script store behavior.
type MockStore struct {
	UpsertFunc func(ctx context.Context, documents []rag_type.VectorDocument) error
	SearchFunc func(ctx context.Context, queryEmbedding []float32, topK int) ([]rag_type.SearchResult, error)
	CountFunc  func(ctx context.Context) (int, error)
	ClearFunc  func(ctx context.Context) error
}

func (m *MockStore) Upsert(ctx context.Context, documents []rag_type.VectorDocument) error {
	return m.UpsertFunc(ctx, documents)
}

func (m *MockStore) Search(ctx context.Context, queryEmbedding []float32, topK int) ([]rag_type.SearchResult, error) {
	return m.SearchFunc(ctx, queryEmbedding, topK)
}

func (m *MockStore) Count(ctx context.Context) (int, error) {
	return m.CountFunc(ctx)
}

func (m *MockStore) Clear(ctx context.Context) error {
	return m.ClearFunc(ctx)
}
