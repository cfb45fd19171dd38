package llm_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultGroqAPIURL = "https://api.groq.com/openai/v1/chat/completions"

type GroqService struct {
	httpClient  *http.Client
	logger      *slog.Logger
	apiURL      string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	retryDelay  time.Duration
}

func NewGroqService(apiKey, model string, temperature float64, maxTokens int, logger *slog.Logger) *GroqService {
	return &GroqService{
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		logger:      logger,
		apiURL:      defaultGroqAPIURL,
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		retryDelay:  5 * time.Second,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (s *GroqService) Complete(ctx context.Context, prompt string) (*ChatResult, error) {
	maxRetries := 3

	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := s.callGroq(ctx, prompt)
		if err == nil {
			return result, nil
		}

		if httpErr, ok := err.(*GroqHTTPError); ok {
			if httpErr.StatusCode == 429 {
				s.logger.Error("Groq API quota exceeded",
					slog.String("error_type", httpErr.ErrorType),
					slog.String("error_message", httpErr.Message),
					slog.String("model", s.model),
					slog.Int("status_code", httpErr.StatusCode))
				return nil, fmt.Errorf("Groq quota exceeded: %s (Type: %s)", httpErr.Message, httpErr.ErrorType)
			}

			s.logger.Error("Groq API error",
				slog.Int("attempt", attempt),
				slog.Int("status_code", httpErr.StatusCode),
				slog.String("error_type", httpErr.ErrorType),
				slog.String("error_message", httpErr.Message),
				slog.String("raw_body", httpErr.RawBody))
		}

		if attempt == maxRetries {
			s.logger.Error("Error calling Groq API after multiple attempts",
				slog.Int("attempts", maxRetries),
				slog.String("error", err.Error()),
				slog.String("model", s.model))
			return nil, fmt.Errorf("failed to call Groq API after %d attempts: %w", maxRetries, err)
		}

		s.logger.Warn("Attempt failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("retry_delay", s.retryDelay),
			slog.String("error", err.Error()))

		time.Sleep(s.retryDelay)
	}

	return nil, fmt.Errorf("failed to call Groq API after exhausting all retry attempts")
}

func (s *GroqService) callGroq(ctx context.Context, prompt string) (*ChatResult, error) {
	requestBody, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("error marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		rawBody, groqErr := extractGroqErrorDetails(resp)
		httpErr := &GroqHTTPError{
			StatusCode: resp.StatusCode,
			RawBody:    rawBody,
		}

		if groqErr != nil {
			httpErr.Message = groqErr.Error.Message
			httpErr.ErrorType = groqErr.Error.Type
		} else {
			httpErr.Message = "Unknown error"
			httpErr.ErrorType = "unknown"
		}

		return nil, httpErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %w", err)
	}

	chat := &ChatResult{
		Usage: ChatUsage{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
		},
	}
	// An empty choices list is not a transport failure; the caller
	// substitutes its own placeholder answer.
	if len(result.Choices) > 0 {
		chat.Content = result.Choices[0].Message.Content
	}

	return chat, nil
}
