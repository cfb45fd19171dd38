package llm_service

import "context"

// MockLLMService lets tests script completion behavior.
type MockLLMService struct {
	CompleteFunc func(ctx context.Context, prompt string) (*ChatResult, error)
}

func (m *MockLLMService) Complete(ctx context.Context, prompt string) (*ChatResult, error) {
	return m.CompleteFunc(ctx, prompt)
}
