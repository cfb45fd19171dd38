package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/serisow/ancrage/chunker"
	"github.com/serisow/ancrage/rag_type"
	"github.com/serisow/ancrage/services/embedding_service"
	"github.com/serisow/ancrage/vector_store"
)

func TestIngest_ChunksEmbedsAndUpserts(t *testing.T) {
	logger := testLogger()

	embedder := &embedding_service.MockEmbeddingService{
		EmbedBatchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			vectors := make([][]float32, len(texts))
			for i := range texts {
				vectors[i] = []float32{float32(i), float32(i) + 0.5}
			}
			return vectors, nil
		},
	}

	var upserted []rag_type.VectorDocument
	store := &vector_store.MockStore{
		UpsertFunc: func(ctx context.Context, documents []rag_type.VectorDocument) error {
			upserted = documents
			return nil
		},
	}

	// 4 words per chunk, 1 word overlap
	p := NewIngestionPipeline(chunker.New(6, 2), embedder, store, logger)

	stats, err := p.Ingest(context.Background(), "Alpha beta gamma. Delta epsilon zeta.", "t.txt", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.ChunksCreated != 2 {
		t.Errorf("expected 2 chunks, got %d", stats.ChunksCreated)
	}
	if len(upserted) != 2 {
		t.Fatalf("expected 2 upserted documents, got %d", len(upserted))
	}

	// Chunks pair with embeddings by position.
	if upserted[0].Content != "Alpha beta gamma. Delta" {
		t.Errorf("unexpected first document: %q", upserted[0].Content)
	}
	if got := upserted[1].Embedding.Slice(); got[0] != 1 || got[1] != 1.5 {
		t.Errorf("second document paired with wrong embedding: %v", got)
	}
	if upserted[0].Metadata.Position != 0 || upserted[1].Metadata.Position != 1 {
		t.Errorf("unexpected metadata positions: %d, %d",
			upserted[0].Metadata.Position, upserted[1].Metadata.Position)
	}

	// Token stats use the 4-chars-per-token heuristic over chunk contents.
	wantTokens := chunker.EstimateTokens(upserted[0].Content) + chunker.EstimateTokens(upserted[1].Content)
	if stats.TotalTokens != wantTokens {
		t.Errorf("expected %d tokens, got %d", wantTokens, stats.TotalTokens)
	}
	if stats.EstimatedCost != 0 {
		t.Errorf("free-tier embedding cost should be 0, got %f", stats.EstimatedCost)
	}
}

func TestIngest_EmptyTextFailsFast(t *testing.T) {
	logger := testLogger()

	embedder := &embedding_service.MockEmbeddingService{
		EmbedBatchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			t.Fatal("embedding should not run for empty text")
			return nil, nil
		},
	}
	store := &vector_store.MockStore{
		UpsertFunc: func(ctx context.Context, documents []rag_type.VectorDocument) error {
			t.Fatal("upsert should not run for empty text")
			return nil
		},
	}

	p := NewIngestionPipeline(chunker.New(1000, 100), embedder, store, logger)

	_, err := p.Ingest(context.Background(), "   ", "t.txt", "")
	if !errors.Is(err, ErrNoChunks) {
		t.Fatalf("expected ErrNoChunks, got %v", err)
	}
}

func TestIngest_EmbeddingFailureAbortsBeforeUpsert(t *testing.T) {
	logger := testLogger()

	embedder := &embedding_service.MockEmbeddingService{
		EmbedBatchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, &embedding_service.ProviderError{StatusCode: 500, Index: 0, Message: "boom"}
		},
	}

	upsertCalled := false
	store := &vector_store.MockStore{
		UpsertFunc: func(ctx context.Context, documents []rag_type.VectorDocument) error {
			upsertCalled = true
			return nil
		},
	}

	p := NewIngestionPipeline(chunker.New(6, 2), embedder, store, logger)

	_, err := p.Ingest(context.Background(), "some words to ingest here", "t.txt", "")
	if err == nil {
		t.Fatal("expected an error from the embedding stage")
	}

	var provErr *embedding_service.ProviderError
	if !errors.As(err, &provErr) {
		t.Errorf("expected a ProviderError in the chain, got %v", err)
	}
	if upsertCalled {
		t.Error("no documents may be upserted after an embedding failure")
	}
}

func TestIngest_CardinalityMismatchAborts(t *testing.T) {
	logger := testLogger()

	embedder := &embedding_service.MockEmbeddingService{
		EmbedBatchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{0.1}}, nil // one vector short
		},
	}
	upsertCalled := false
	store := &vector_store.MockStore{
		UpsertFunc: func(ctx context.Context, documents []rag_type.VectorDocument) error {
			upsertCalled = true
			return nil
		},
	}

	p := NewIngestionPipeline(chunker.New(6, 2), embedder, store, logger)

	_, err := p.Ingest(context.Background(), "Alpha beta gamma. Delta epsilon zeta.", "t.txt", "")
	if err == nil {
		t.Fatal("expected an error on embedding/chunk count mismatch")
	}
	if upsertCalled {
		t.Error("no documents may be upserted after a cardinality mismatch")
	}
}
