package vector_store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/serisow/ancrage/rag_type"
)

// Store is the narrow persistence surface the pipelines need. The
// similarity metric and index structure stay internal to the
// implementation; callers only rely on descending-similarity order
// with a deterministic tie-break.
type Store interface {
	Upsert(ctx context.Context, documents []rag_type.VectorDocument) error
	Search(ctx context.Context, queryEmbedding []float32, topK int) ([]rag_type.SearchResult, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// StoreError wraps a failed store operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("vector store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// PgVectorStore persists documents in a pgvector-enabled Postgres
// table, one collection per table.
type PgVectorStore struct {
	db     *pgxpool.Pool
	table  string
	logger *slog.Logger
}

func NewPgVectorStore(db *pgxpool.Pool, table string, logger *slog.Logger) *PgVectorStore {
	return &PgVectorStore{
		db:     db,
		table:  table,
		logger: logger,
	}
}

// Upsert inserts all documents in one transaction: either every
// document becomes visible to subsequent searches or none does. Ids
// are assigned by the database.
func (s *PgVectorStore) Upsert(ctx context.Context, documents []rag_type.VectorDocument) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return &StoreError{Op: "upsert", Err: err}
	}
	defer tx.Rollback(ctx)

	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (content, metadata, embedding) VALUES ($1, $2, $3)", s.table)

	for _, doc := range documents {
		metadata, err := json.Marshal(doc.Metadata)
		if err != nil {
			return &StoreError{Op: "upsert", Err: fmt.Errorf("marshal metadata: %w", err)}
		}

		if _, err := tx.Exec(ctx, insertSQL, doc.Content, metadata, doc.Embedding); err != nil {
			return &StoreError{Op: "upsert", Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return &StoreError{Op: "upsert", Err: err}
	}

	s.logger.Debug("Upserted documents",
		slog.Int("count", len(documents)),
		slog.String("table", s.table))

	return nil
}

// Search returns at most topK rows ordered by cosine similarity
// descending. Ties break on id ascending so results are stable for a
// fixed store state.
func (s *PgVectorStore) Search(ctx context.Context, queryEmbedding []float32, topK int) ([]rag_type.SearchResult, error) {
	searchSQL := fmt.Sprintf(`
        SELECT id, content, metadata, 1 - (embedding <=> $1) AS similarity
        FROM %s
        ORDER BY embedding <=> $1, id
        LIMIT $2
    `, s.table)

	rows, err := s.db.Query(ctx, searchSQL, pgvector.NewVector(queryEmbedding), topK)
	if err != nil {
		return nil, &StoreError{Op: "search", Err: err}
	}
	defer rows.Close()

	results := make([]rag_type.SearchResult, 0, topK)
	for rows.Next() {
		var result rag_type.SearchResult
		var metadata []byte
		if err := rows.Scan(&result.ID, &result.Content, &metadata, &result.Similarity); err != nil {
			return nil, &StoreError{Op: "search", Err: err}
		}
		if err := json.Unmarshal(metadata, &result.Metadata); err != nil {
			return nil, &StoreError{Op: "search", Err: fmt.Errorf("unmarshal metadata for document %d: %w", result.ID, err)}
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "search", Err: err}
	}

	return results, nil
}

func (s *PgVectorStore) Count(ctx context.Context) (int, error) {
	var count int
	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table)
	if err := s.db.QueryRow(ctx, countSQL).Scan(&count); err != nil {
		return 0, &StoreError{Op: "count", Err: err}
	}
	return count, nil
}

// Clear removes every document in the collection. Maintenance flows
// only; the pipelines never call it.
func (s *PgVectorStore) Clear(ctx context.Context) error {
	deleteSQL := fmt.Sprintf("DELETE FROM %s", s.table)
	if _, err := s.db.Exec(ctx, deleteSQL); err != nil {
		return &StoreError{Op: "clear", Err: err}
	}
	return nil
}
