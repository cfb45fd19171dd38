package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/serisow/ancrage/rag_type"
	"github.com/serisow/ancrage/services/llm_service"
)

const noAnswerPlaceholder = "No answer generated."

const answerPromptTemplate = `You are a helpful assistant that answers questions based on the provided context.
Always cite your sources using the citation numbers provided in square brackets [1], [2], etc.

Context:
%s

Question: %s

Instructions:
1. Answer the question based ONLY on the provided context
2. Use inline citations [1], [2], etc. to reference specific sources
3. If the context doesn't contain enough information, say so
4. Be concise and accurate

Answer:`

// AnswerGenerator builds the evidence-grounded prompt, runs one
// completion call and projects the contexts into citations.
type AnswerGenerator struct {
	llm     llm_service.LLMService
	pricing llm_service.PricingFunc
	logger  *slog.Logger
}

func NewAnswerGenerator(llm llm_service.LLMService, pricing llm_service.PricingFunc, logger *slog.Logger) *AnswerGenerator {
	return &AnswerGenerator{
		llm:     llm,
		pricing: pricing,
		logger:  logger,
	}
}

// Generate answers the query from the given contexts. The returned
// citations mirror the input contexts in order, regardless of which
// markers the model actually used in its text.
func (g *AnswerGenerator) Generate(ctx context.Context, query string, contexts []rag_type.RerankedResult) (*rag_type.AnswerWithCitations, error) {
	prompt := g.buildPrompt(query, contexts)

	start := time.Now()
	result, err := g.llm.Complete(ctx, prompt)
	llmMs := time.Since(start).Milliseconds()
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	answer := result.Content
	if strings.TrimSpace(answer) == "" {
		answer = noAnswerPlaceholder
	}

	citations := make([]rag_type.Citation, 0, len(contexts))
	for _, c := range contexts {
		citations = append(citations, rag_type.Citation{
			Index:       c.CitationIndex,
			Content:     c.Content,
			Source:      c.Metadata.Source,
			Title:       c.Metadata.Title,
			Position:    c.Metadata.Position,
			RerankScore: c.RerankScore,
		})
	}

	usage := rag_type.Usage{
		PromptTokens:     result.Usage.PromptTokens,
		CompletionTokens: result.Usage.CompletionTokens,
		TotalTokens:      result.Usage.PromptTokens + result.Usage.CompletionTokens,
		EstimatedCost:    g.pricing(result.Usage.PromptTokens, result.Usage.CompletionTokens),
	}

	g.logger.Debug("Generated answer",
		slog.Int("context_count", len(contexts)),
		slog.Int("total_tokens", usage.TotalTokens),
		slog.Int64("llm_ms", llmMs))

	return &rag_type.AnswerWithCitations{
		Answer:    answer,
		Citations: citations,
		Usage:     usage,
		LLMMs:     llmMs,
	}, nil
}

func (g *AnswerGenerator) buildPrompt(query string, contexts []rag_type.RerankedResult) string {
	blocks := make([]string, 0, len(contexts))
	for _, c := range contexts {
		blocks = append(blocks, fmt.Sprintf("[%d] %s", c.CitationIndex, c.Content))
	}
	return fmt.Sprintf(answerPromptTemplate, strings.Join(blocks, "\n\n"), query)
}
