package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// Connect waits for the database to come up, bootstraps the pgvector
// extension plus the documents table for the configured collection, and
// returns a pool with the vector type registered on every connection.
func Connect(databaseURL, collectionName string, embeddingDimension int) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	if err := bootstrap(databaseURL, collectionName, embeddingDimension); err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse DATABASE_URL: %v", err)
	}

	// Register the vector type on every connection so embeddings can be
	// bound and scanned directly. Registration needs the extension to
	// exist already, hence the bootstrap above.
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %v", err)
	}

	return pool, nil
}

// bootstrap connects with a plain connection, retrying while the
// database comes up, and creates the extension and table.
func bootstrap(databaseURL, collectionName string, embeddingDimension int) error {
	var conn *pgx.Conn
	var err error
	maxRetries := 10
	retryDelay := time.Second * 10

	for i := 0; i < maxRetries; i++ {
		conn, err = pgx.Connect(context.Background(), databaseURL)
		if err == nil {
			err = conn.Ping(context.Background())
			if err == nil {
				log.Println("Successfully connected to the database")
				break
			}
			conn.Close(context.Background())
		}

		log.Printf("Failed to connect to the database (attempt %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Printf("Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		return fmt.Errorf("failed to connect to the database after %d attempts: %v", maxRetries, err)
	}
	defer conn.Close(context.Background())

	_, err = conn.Exec(context.Background(), "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("unable to create vector extension: %v", err)
	}

	createTableSQL := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            id bigserial PRIMARY KEY,
            content text NOT NULL,
            metadata jsonb NOT NULL DEFAULT '{}'::jsonb,
            embedding vector(%d) NOT NULL
        )
    `, collectionName, embeddingDimension)

	_, err = conn.Exec(context.Background(), createTableSQL)
	if err != nil {
		return fmt.Errorf("unable to create %s table: %v", collectionName, err)
	}

	return nil
}
