package rerank_service

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

const defaultCohereAPIURL = "https://api.cohere.ai/v1/rerank"

// Cohere caps a single rerank call at 1000 documents.
const maxRerankDocuments = 1000

type CohereRerankService struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiURL     string
	apiKey     string
	model      string
	retryDelay time.Duration
}

func NewCohereRerankService(apiKey, model string, logger *slog.Logger) *CohereRerankService {
	return &CohereRerankService{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     logger,
		apiURL:     defaultCohereAPIURL,
		apiKey:     apiKey,
		model:      model,
		retryDelay: 5 * time.Second,
	}
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	Model     string   `json:"model"`
	TopN      int      `json:"top_n"`
}

type rerankResponse struct {
	Results []RerankResult `json:"results"`
}

func (s *CohereRerankService) Rerank(ctx context.Context, query string, documents []string, topN int) ([]RerankResult, error) {
	if len(documents) == 0 {
		return nil, fmt.Errorf("rerank called with no documents")
	}
	if len(documents) > maxRerankDocuments {
		documents = documents[:maxRerankDocuments]
	}

	maxRetries := 3

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		results, err := s.callCohere(ctx, query, documents, topN)
		if err == nil {
			return results, nil
		}
		lastErr = err

		if attempt == maxRetries {
			s.logger.Error("Error calling Cohere rerank API after multiple attempts",
				slog.Int("attempts", maxRetries),
				slog.String("error", err.Error()),
				slog.String("model", s.model))
			break
		}

		s.logger.Warn("Attempt failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("retry_delay", s.retryDelay),
			slog.String("error", err.Error()))
		time.Sleep(s.retryDelay)
	}

	return nil, lastErr
}

func (s *CohereRerankService) callCohere(ctx context.Context, query string, documents []string, topN int) ([]RerankResult, error) {
	reqBody := rerankRequest{
		Query:     query,
		Documents: documents,
		Model:     s.model,
		TopN:      topN,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rerank request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Message: "failed to read rerank response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	var rerankResp rerankResponse
	if err := json.Unmarshal(body, &rerankResp); err != nil {
		return nil, &ProviderError{Message: "failed to decode rerank response", Err: err}
	}

	return rerankResp.Results, nil
}
