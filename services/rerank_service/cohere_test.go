package rerank_service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCohereService(url string) *CohereRerankService {
	return &CohereRerankService{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     testLogger(),
		apiURL:     url,
		apiKey:     "test-key",
		model:      "rerank-english-v3.0",
		retryDelay: 0,
	}
}

func TestCohereRerankService_Rerank(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected Authorization header: %q", got)
		}

		var req rerankRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Query != "which?" || req.Model != "rerank-english-v3.0" || req.TopN != 2 {
			t.Errorf("unexpected request: %+v", req)
		}
		if len(req.Documents) != 3 {
			t.Errorf("expected 3 documents, got %d", len(req.Documents))
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{
				{"index": 2, "relevance_score": 0.91},
				{"index": 0, "relevance_score": 0.33},
			},
		})
	}))
	defer ts.Close()

	s := newTestCohereService(ts.URL)

	results, err := s.Rerank(context.Background(), "which?", []string{"a", "b", "c"}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Index != 2 || results[0].RelevanceScore != 0.91 {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[1].Index != 0 || results[1].RelevanceScore != 0.33 {
		t.Errorf("unexpected second result: %+v", results[1])
	}
}

func TestCohereRerankService_NoDocuments(t *testing.T) {
	s := newTestCohereService("http://unused.invalid")

	if _, err := s.Rerank(context.Background(), "q", nil, 5); err == nil {
		t.Fatal("expected an error when called with no documents")
	}
}

func TestCohereRerankService_HTTPErrorIsProviderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message":"upstream unavailable"}`))
	}))
	defer ts.Close()

	s := newTestCohereService(ts.URL)

	_, err := s.Rerank(context.Background(), "q", []string{"a"}, 1)
	if err == nil {
		t.Fatal("expected an error")
	}

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected a ProviderError, got %T: %v", err, err)
	}
	if provErr.StatusCode != http.StatusBadGateway {
		t.Errorf("unexpected status code: %d", provErr.StatusCode)
	}
}
