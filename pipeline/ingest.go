package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/serisow/ancrage/chunker"
	"github.com/serisow/ancrage/rag_type"
	"github.com/serisow/ancrage/services/embedding_service"
	"github.com/serisow/ancrage/vector_store"
)

// ErrNoChunks means the ingestion text produced no usable chunks.
// Handlers treat it as a validation failure.
var ErrNoChunks = errors.New("no valid chunks created from text")

// IngestionPipeline sequences chunk, embed and upsert. Any stage
// failure aborts the whole ingestion; partially embedded data is never
// written.
type IngestionPipeline struct {
	chunker  *chunker.Chunker
	embedder embedding_service.EmbeddingService
	store    vector_store.Store
	logger   *slog.Logger
}

func NewIngestionPipeline(c *chunker.Chunker, embedder embedding_service.EmbeddingService, store vector_store.Store, logger *slog.Logger) *IngestionPipeline {
	return &IngestionPipeline{
		chunker:  c,
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

func (p *IngestionPipeline) Ingest(ctx context.Context, text, source, title string) (*rag_type.IngestStats, error) {
	requestID := uuid.NewString()
	logger := p.logger.With(
		slog.String("request_id", requestID),
		slog.String("source", source))

	start := time.Now()

	chunks := p.chunker.Chunk(text, source, title)
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	embeddings, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		logger.Error("Embedding stage failed",
			slog.String("stage", "embed"),
			slog.Int("chunk_count", len(chunks)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("generate embeddings: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedding count %d does not match chunk count %d", len(embeddings), len(chunks))
	}

	// Chunks pair with embeddings by list position.
	documents := make([]rag_type.VectorDocument, len(chunks))
	for i, chunk := range chunks {
		documents[i] = rag_type.VectorDocument{
			Content:   chunk.Content,
			Embedding: pgvector.NewVector(embeddings[i]),
			Metadata:  chunk.Metadata,
		}
	}

	if err := p.store.Upsert(ctx, documents); err != nil {
		logger.Error("Upsert stage failed",
			slog.String("stage", "upsert"),
			slog.Int("document_count", len(documents)),
			slog.String("error", err.Error()))
		return nil, err
	}

	totalTokens := 0
	for _, chunk := range chunks {
		totalTokens += chunker.EstimateTokens(chunk.Content)
	}

	stats := &rag_type.IngestStats{
		ChunksCreated:  len(chunks),
		TotalTokens:    totalTokens,
		EstimatedCost:  embedding_service.EstimateCost(totalTokens),
		ProcessingTime: time.Since(start).Milliseconds(),
	}

	logger.Info("Ingested document",
		slog.Int("chunks_created", stats.ChunksCreated),
		slog.Int("total_tokens", stats.TotalTokens),
		slog.Int64("processing_ms", stats.ProcessingTime))

	return stats, nil
}
