package embedding_service

import (
	"context"
	"fmt"
)

// EmbeddingService turns text into fixed-length vectors. EmbedBatch is
// order-preserving and returns exactly one vector per input; any
// failure fails the whole batch.
type EmbeddingService interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ProviderError wraps a failed embedding call. Index is the offending
// input index when known, -1 otherwise.
type ProviderError struct {
	StatusCode int
	Message    string
	Index      int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("embedding provider error at input %d (HTTP %d): %s", e.Index, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("embedding provider error (HTTP %d): %s", e.StatusCode, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// EstimateCost returns the embedding cost for the given token count.
// text-embedding-004 is on the free tier.
func EstimateCost(tokenCount int) float64 {
	return 0
}
