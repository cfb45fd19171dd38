package embedding_service

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

const defaultGeminiAPIBase = "https://generativelanguage.googleapis.com/v1beta/models"

// Gemini accepts at most 100 contents per batchEmbedContents call.
const maxBatchSize = 100

type GeminiEmbeddingService struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiBase    string
	apiKey     string
	model      string
	retryDelay time.Duration
}

func NewGeminiEmbeddingService(apiKey, model string, logger *slog.Logger) *GeminiEmbeddingService {
	return &GeminiEmbeddingService{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     logger,
		apiBase:    defaultGeminiAPIBase,
		apiKey:     apiKey,
		model:      model,
		retryDelay: 5 * time.Second,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type embedContentRequest struct {
	Content geminiContent `json:"content"`
}

type batchEmbedItem struct {
	Model   string        `json:"model"`
	Content geminiContent `json:"content"`
}

type batchEmbedRequest struct {
	Requests []batchEmbedItem `json:"requests"`
}

type contentEmbedding struct {
	Values []float32 `json:"values"`
}

type embedContentResponse struct {
	Embedding contentEmbedding `json:"embedding"`
}

type batchEmbedResponse struct {
	Embeddings []contentEmbedding `json:"embeddings"`
}

// EmbedBatch embeds every text in order, using the provider's native
// batch endpoint in sub-batches of at most 100. A failed sub-batch
// fails the whole call; nothing partial is returned.
func (s *GeminiEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := s.embedSubBatch(ctx, texts[start:end], start)
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, batch...)
	}

	return embeddings, nil
}

func (s *GeminiEmbeddingService) embedSubBatch(ctx context.Context, texts []string, startIndex int) ([][]float32, error) {
	reqBody := batchEmbedRequest{
		Requests: make([]batchEmbedItem, 0, len(texts)),
	}
	for _, text := range texts {
		reqBody.Requests = append(reqBody.Requests, batchEmbedItem{
			Model:   "models/" + s.model,
			Content: geminiContent{Parts: []geminiPart{{Text: text}}},
		})
	}

	url := fmt.Sprintf("%s/%s:batchEmbedContents?key=%s", s.apiBase, s.model, s.apiKey)

	var resp batchEmbedResponse
	if err := s.postWithRetry(ctx, url, reqBody, &resp); err != nil {
		if provErr, ok := err.(*ProviderError); ok {
			provErr.Index = startIndex
		}
		return nil, err
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, &ProviderError{
			Index:   startIndex,
			Message: fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings)),
		}
	}

	vectors := make([][]float32, 0, len(texts))
	for i, emb := range resp.Embeddings {
		if len(emb.Values) == 0 {
			return nil, &ProviderError{
				Index:   startIndex + i,
				Message: "empty embedding in batch response",
			}
		}
		vectors = append(vectors, emb.Values)
	}

	return vectors, nil
}

func (s *GeminiEmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	reqBody := embedContentRequest{
		Content: geminiContent{Parts: []geminiPart{{Text: text}}},
	}

	url := fmt.Sprintf("%s/%s:embedContent?key=%s", s.apiBase, s.model, s.apiKey)

	var resp embedContentResponse
	if err := s.postWithRetry(ctx, url, reqBody, &resp); err != nil {
		return nil, err
	}

	if len(resp.Embedding.Values) == 0 {
		return nil, &ProviderError{Index: -1, Message: "no embedding data received"}
	}

	return resp.Embedding.Values, nil
}

func (s *GeminiEmbeddingService) postWithRetry(ctx context.Context, url string, reqBody, out interface{}) error {
	maxRetries := 3

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		lastErr = s.post(ctx, url, reqBody, out)
		if lastErr == nil {
			return nil
		}

		if attempt == maxRetries {
			s.logger.Error("Error calling Gemini embedding API after multiple attempts",
				slog.Int("attempts", maxRetries),
				slog.String("error", lastErr.Error()),
				slog.String("model", s.model))
			return lastErr
		}

		s.logger.Warn("Attempt failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("retry_delay", s.retryDelay),
			slog.String("error", lastErr.Error()))
		time.Sleep(s.retryDelay)
	}

	return lastErr
}

func (s *GeminiEmbeddingService) post(ctx context.Context, url string, reqBody, out interface{}) error {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &ProviderError{Index: -1, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &ProviderError{
			StatusCode: resp.StatusCode,
			Index:      -1,
			Message:    string(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProviderError{Index: -1, Message: "failed to decode embedding response", Err: err}
	}

	return nil
}
