package vector_store

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/jackc/pgx/v5/pgxpool"
)

// IndexManager handles ivfflat index maintenance for a collection
// table. The index is advisory: searches stay correct without it.
type IndexManager struct {
	db     *pgxpool.Pool
	table  string
	logger *slog.Logger
}

func NewIndexManager(db *pgxpool.Pool, table string, logger *slog.Logger) *IndexManager {
	return &IndexManager{
		db:     db,
		table:  table,
		logger: logger,
	}
}

func (im *IndexManager) indexName() string {
	return fmt.Sprintf("idx_%s_embedding", im.table)
}

// CreateOrUpdateIndex rebuilds the vector index with a list count
// sized to the current row count (sqrt, floor 100).
func (im *IndexManager) CreateOrUpdateIndex(ctx context.Context) error {
	var count int
	err := im.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", im.table)).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}

	lists := int(math.Sqrt(float64(count)))
	if lists < 100 {
		lists = 100
	}

	_, err = im.db.Exec(ctx, fmt.Sprintf("DROP INDEX IF EXISTS %s", im.indexName()))
	if err != nil {
		return fmt.Errorf("failed to drop existing index: %w", err)
	}

	createIndexSQL := fmt.Sprintf(`
        CREATE INDEX %s
        ON %s
        USING ivfflat (embedding vector_cosine_ops)
        WITH (lists = %d)
    `, im.indexName(), im.table, lists)

	_, err = im.db.Exec(ctx, createIndexSQL)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	im.logger.Info("Vector index created/updated successfully",
		slog.Int("document_count", count),
		slog.Int("list_count", lists))

	return nil
}

// ReindexIfNeeded rebuilds the index when the stored list count has
// drifted more than 50% from the optimal value for the current size.
func (im *IndexManager) ReindexIfNeeded(ctx context.Context) error {
	var currentLists int
	err := im.db.QueryRow(ctx, `
        SELECT reloptions[1]::text::int
        FROM pg_class c
        LEFT JOIN pg_index i ON c.oid = i.indexrelid
        WHERE c.relname = $1
        AND reloptions IS NOT NULL
    `, im.indexName()).Scan(&currentLists)

	if err != nil {
		// Index doesn't exist or other error
		return im.CreateOrUpdateIndex(ctx)
	}

	var count int
	err = im.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", im.table)).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}

	optimalLists := int(math.Sqrt(float64(count)))
	if optimalLists < 100 {
		optimalLists = 100
	}

	if math.Abs(float64(currentLists-optimalLists)) > float64(optimalLists)*0.5 {
		im.logger.Info("Rebuilding vector index due to significant size change",
			slog.Int("current_lists", currentLists),
			slog.Int("optimal_lists", optimalLists))
		return im.CreateOrUpdateIndex(ctx)
	}

	return nil
}
