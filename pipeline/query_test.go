package pipeline

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/serisow/ancrage/rag_type"
	"github.com/serisow/ancrage/services/embedding_service"
	"github.com/serisow/ancrage/services/llm_service"
	"github.com/serisow/ancrage/services/rerank_service"
	"github.com/serisow/ancrage/vector_store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQueryPipeline_EmptyEvidence(t *testing.T) {
	logger := testLogger()

	embedder := &embedding_service.MockEmbeddingService{
		EmbedQueryFunc: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{0.1, 0.2}, nil
		},
	}
	store := &vector_store.MockStore{
		SearchFunc: func(ctx context.Context, queryEmbedding []float32, topK int) ([]rag_type.SearchResult, error) {
			return []rag_type.SearchResult{}, nil
		},
	}

	rerankCalled := false
	rerank := &rerank_service.MockRerankService{
		RerankFunc: func(ctx context.Context, query string, documents []string, topN int) ([]rerank_service.RerankResult, error) {
			rerankCalled = true
			return nil, nil
		},
	}
	llmCalled := false
	llm := &llm_service.MockLLMService{
		CompleteFunc: func(ctx context.Context, prompt string) (*llm_service.ChatResult, error) {
			llmCalled = true
			return &llm_service.ChatResult{Content: "should not happen"}, nil
		},
	}

	p := NewQueryPipeline(
		NewRetriever(embedder, store, 10, logger),
		NewReranker(rerank, 5, logger),
		NewAnswerGenerator(llm, llm_service.FreeTierPricing, logger),
		logger,
	)

	result, err := p.AnswerQuery(context.Background(), "anything?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rerankCalled {
		t.Error("rerank provider was called with zero retrieved documents")
	}
	if llmCalled {
		t.Error("generation provider was called on the empty-evidence path")
	}
	if result.Answer != noEvidenceAnswer {
		t.Errorf("unexpected answer: %q", result.Answer)
	}
	if len(result.Citations) != 0 {
		t.Errorf("expected no citations, got %d", len(result.Citations))
	}
	if result.Usage.TotalTokens != 0 || result.Usage.EstimatedCost != 0 {
		t.Errorf("expected zero usage, got %+v", result.Usage)
	}
	if result.Timing.LLMMs != 0 {
		t.Errorf("expected zero llmMs, got %d", result.Timing.LLMMs)
	}
}

func TestQueryPipeline_FullPath(t *testing.T) {
	logger := testLogger()

	retrieved := []rag_type.SearchResult{
		{ID: 1, Content: "chunk A", Metadata: rag_type.ChunkMetadata{Source: "a.txt", Position: 0}, Similarity: 0.9},
		{ID: 2, Content: "chunk B", Metadata: rag_type.ChunkMetadata{Source: "b.txt", Position: 1}, Similarity: 0.8},
		{ID: 3, Content: "chunk C", Metadata: rag_type.ChunkMetadata{Source: "c.txt", Position: 2}, Similarity: 0.7},
	}

	embedder := &embedding_service.MockEmbeddingService{
		EmbedQueryFunc: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{0.5}, nil
		},
	}
	store := &vector_store.MockStore{
		SearchFunc: func(ctx context.Context, queryEmbedding []float32, topK int) ([]rag_type.SearchResult, error) {
			if topK != 10 {
				t.Errorf("expected topK 10, got %d", topK)
			}
			return retrieved, nil
		},
	}
	rerank := &rerank_service.MockRerankService{
		RerankFunc: func(ctx context.Context, query string, documents []string, topN int) ([]rerank_service.RerankResult, error) {
			if topN != 2 {
				t.Errorf("expected topN 2, got %d", topN)
			}
			// Documents must arrive in retrieval order.
			want := []string{"chunk A", "chunk B", "chunk C"}
			for i, doc := range documents {
				if doc != want[i] {
					t.Errorf("document %d = %q, want %q", i, doc, want[i])
				}
			}
			// Provider says C is most relevant, then A.
			return []rerank_service.RerankResult{
				{Index: 2, RelevanceScore: 0.95},
				{Index: 0, RelevanceScore: 0.40},
			}, nil
		},
	}

	var capturedPrompt string
	llm := &llm_service.MockLLMService{
		CompleteFunc: func(ctx context.Context, prompt string) (*llm_service.ChatResult, error) {
			capturedPrompt = prompt
			return &llm_service.ChatResult{
				Content: "The answer is C [1].",
				Usage:   llm_service.ChatUsage{PromptTokens: 120, CompletionTokens: 40, TotalTokens: 160},
			}, nil
		},
	}

	p := NewQueryPipeline(
		NewRetriever(embedder, store, 10, logger),
		NewReranker(rerank, 2, logger),
		NewAnswerGenerator(llm, llm_service.FreeTierPricing, logger),
		logger,
	)

	result, err := p.AnswerQuery(context.Background(), "which chunk?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Answer != "The answer is C [1]." {
		t.Errorf("unexpected answer: %q", result.Answer)
	}

	// Citation numbering follows the provider's relevance order.
	if len(result.Citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(result.Citations))
	}
	if result.Citations[0].Index != 1 || result.Citations[0].Content != "chunk C" {
		t.Errorf("citation 1 = %+v", result.Citations[0])
	}
	if result.Citations[1].Index != 2 || result.Citations[1].Content != "chunk A" {
		t.Errorf("citation 2 = %+v", result.Citations[1])
	}
	if result.Citations[0].RerankScore != 0.95 || result.Citations[1].RerankScore != 0.40 {
		t.Errorf("unexpected rerank scores: %+v", result.Citations)
	}

	// Prompt blocks carry the citation numbering in rerank order.
	if !strings.Contains(capturedPrompt, "[1] chunk C") || !strings.Contains(capturedPrompt, "[2] chunk A") {
		t.Errorf("prompt missing citation blocks:\n%s", capturedPrompt)
	}
	if !strings.Contains(capturedPrompt, "Question: which chunk?") {
		t.Errorf("prompt missing question:\n%s", capturedPrompt)
	}

	if result.Usage.PromptTokens != 120 || result.Usage.CompletionTokens != 40 || result.Usage.TotalTokens != 160 {
		t.Errorf("unexpected usage: %+v", result.Usage)
	}
	if result.Usage.EstimatedCost != 0 {
		t.Errorf("free-tier pricing should cost 0, got %f", result.Usage.EstimatedCost)
	}
}

func TestQueryPipeline_RetrievalErrorAborts(t *testing.T) {
	logger := testLogger()

	embedder := &embedding_service.MockEmbeddingService{
		EmbedQueryFunc: func(ctx context.Context, text string) ([]float32, error) {
			return nil, &embedding_service.ProviderError{StatusCode: 503, Index: -1, Message: "down"}
		},
	}
	store := &vector_store.MockStore{
		SearchFunc: func(ctx context.Context, queryEmbedding []float32, topK int) ([]rag_type.SearchResult, error) {
			t.Fatal("search should not run when query embedding fails")
			return nil, nil
		},
	}

	p := NewQueryPipeline(
		NewRetriever(embedder, store, 10, logger),
		NewReranker(&rerank_service.MockRerankService{}, 5, logger),
		NewAnswerGenerator(&llm_service.MockLLMService{}, llm_service.FreeTierPricing, logger),
		logger,
	)

	if _, err := p.AnswerQuery(context.Background(), "q"); err == nil {
		t.Fatal("expected an error when the embedding provider fails")
	}
}
