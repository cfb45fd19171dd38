package llm_service

import "context"

type ChatUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatResult carries the completion text plus whatever token usage the
// provider reported. Missing usage fields stay zero.
type ChatResult struct {
	Content string
	Usage   ChatUsage
}

// LLMService issues one completion call per invocation. An empty
// Content with a nil error means the provider answered with no text;
// transport and API failures are returned as errors.
type LLMService interface {
	Complete(ctx context.Context, prompt string) (*ChatResult, error)
}

// PricingFunc converts token counts into a dollar cost for the
// configured provider.
type PricingFunc func(promptTokens, completionTokens int) float64

// FreeTierPricing is the pricing function for free-tier providers.
func FreeTierPricing(promptTokens, completionTokens int) float64 {
	return 0
}
