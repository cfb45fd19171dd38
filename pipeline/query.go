package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/serisow/ancrage/rag_type"
)

const noEvidenceAnswer = "No relevant documents found to answer your question. Please upload some documents first."

// QueryResult is the full outcome of one query request.
type QueryResult struct {
	Answer    string               `json:"answer"`
	Citations []rag_type.Citation  `json:"citations"`
	Timing    rag_type.QueryTiming `json:"timing"`
	Usage     rag_type.Usage       `json:"usage"`
}

// QueryPipeline sequences retrieve, rerank and generate. The flow is a
// linear state machine: RETRIEVE -> RERANK -> {EMPTY_EVIDENCE |
// GENERATE} -> DONE. Retrieval and rerank always run; generation is
// skipped when rerank leaves no evidence.
type QueryPipeline struct {
	retriever *Retriever
	reranker  *Reranker
	generator *AnswerGenerator
	logger    *slog.Logger
}

func NewQueryPipeline(retriever *Retriever, reranker *Reranker, generator *AnswerGenerator, logger *slog.Logger) *QueryPipeline {
	return &QueryPipeline{
		retriever: retriever,
		reranker:  reranker,
		generator: generator,
		logger:    logger,
	}
}

func (p *QueryPipeline) AnswerQuery(ctx context.Context, query string) (*QueryResult, error) {
	requestID := uuid.NewString()
	logger := p.logger.With(slog.String("request_id", requestID))

	start := time.Now()

	retrievalStart := time.Now()
	retrieved, err := p.retriever.Retrieve(ctx, query)
	if err != nil {
		logger.Error("Retrieval stage failed",
			slog.String("stage", "retrieve"),
			slog.String("error", err.Error()))
		return nil, err
	}
	retrievalMs := time.Since(retrievalStart).Milliseconds()

	rerankStart := time.Now()
	reranked, err := p.reranker.Rerank(ctx, query, retrieved)
	if err != nil {
		logger.Error("Rerank stage failed",
			slog.String("stage", "rerank"),
			slog.String("error", err.Error()))
		return nil, err
	}
	rerankMs := time.Since(rerankStart).Milliseconds()

	if len(reranked) == 0 {
		logger.Info("No relevant documents for query",
			slog.Int64("retrieval_ms", retrievalMs),
			slog.Int64("rerank_ms", rerankMs))
		return &QueryResult{
			Answer:    noEvidenceAnswer,
			Citations: []rag_type.Citation{},
			Timing: rag_type.QueryTiming{
				RetrievalMs: retrievalMs,
				RerankMs:    rerankMs,
				LLMMs:       0,
				TotalMs:     time.Since(start).Milliseconds(),
			},
			Usage: rag_type.Usage{},
		}, nil
	}

	answer, err := p.generator.Generate(ctx, query, reranked)
	if err != nil {
		logger.Error("Generation stage failed",
			slog.String("stage", "generate"),
			slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Answered query",
		slog.Int("citation_count", len(answer.Citations)),
		slog.Int("total_tokens", answer.Usage.TotalTokens),
		slog.Int64("llm_ms", answer.LLMMs))

	return &QueryResult{
		Answer:    answer.Answer,
		Citations: answer.Citations,
		Timing: rag_type.QueryTiming{
			RetrievalMs: retrievalMs,
			RerankMs:    rerankMs,
			LLMMs:       answer.LLMMs,
			TotalMs:     time.Since(start).Milliseconds(),
		},
		Usage: answer.Usage,
	}, nil
}
