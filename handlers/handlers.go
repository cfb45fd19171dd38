package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/serisow/ancrage/pipeline"
	"github.com/serisow/ancrage/rag_type"
)

// QueryRunner is the query pipeline surface the handlers need.
type QueryRunner interface {
	AnswerQuery(ctx context.Context, query string) (*pipeline.QueryResult, error)
}

// IngestRunner is the ingestion pipeline surface the handlers need.
type IngestRunner interface {
	Ingest(ctx context.Context, text, source, title string) (*rag_type.IngestStats, error)
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, payload interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(payload)
}
