package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/serisow/ancrage/pipeline"
	"github.com/serisow/ancrage/rag_type"
)

type stubIngestRunner struct {
	stats *rag_type.IngestStats
	err   error

	gotText   string
	gotSource string
	gotTitle  string
}

func (s *stubIngestRunner) Ingest(ctx context.Context, text, source, title string) (*rag_type.IngestStats, error) {
	s.gotText, s.gotSource, s.gotTitle = text, source, title
	return s.stats, s.err
}

func TestIngestHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		runner         *stubIngestRunner
		expectedStatus int
	}{
		{
			name:           "missing text is a client error",
			body:           `{"source":"a.txt"}`,
			runner:         &stubIngestRunner{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing source is a client error",
			body:           `{"text":"some words"}`,
			runner:         &stubIngestRunner{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "zero chunks is a client error",
			body:           `{"text":" ","source":"a.txt"}`,
			runner:         &stubIngestRunner{err: pipeline.ErrNoChunks},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "store failure is a server error",
			body:           `{"text":"some words","source":"a.txt"}`,
			runner:         &stubIngestRunner{err: errors.New("vector store upsert failed")},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name: "successful ingestion",
			body: `{"text":"some words","source":"a.txt","title":"A"}`,
			runner: &stubIngestRunner{
				stats: &rag_type.IngestStats{ChunksCreated: 3, TotalTokens: 42, ProcessingTime: 87},
			},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewIngestHandler(tt.runner, testLogger())

			req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}

			if tt.expectedStatus == http.StatusOK {
				var resp IngestResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if !resp.Success {
					t.Error("expected success true")
				}
				if resp.Stats.ChunksCreated != 3 || resp.Stats.TotalTokens != 42 {
					t.Errorf("unexpected stats: %+v", resp.Stats)
				}
				if tt.runner.gotSource != "a.txt" || tt.runner.gotTitle != "A" {
					t.Errorf("pipeline received %q/%q", tt.runner.gotSource, tt.runner.gotTitle)
				}
			}
		})
	}
}

type stubCounter struct {
	count int
	err   error
}

func (s *stubCounter) Count(ctx context.Context) (int, error) {
	return s.count, s.err
}

func TestStatsHandler(t *testing.T) {
	h := NewStatsHandler(&stubCounter{count: 17}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 17 {
		t.Errorf("expected count 17, got %d", resp.Count)
	}
}

func TestStatsHandler_StoreError(t *testing.T) {
	h := NewStatsHandler(&stubCounter{err: errors.New("connection refused")}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
