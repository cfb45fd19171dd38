package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/serisow/ancrage/chunker"
	"github.com/serisow/ancrage/config"
	"github.com/serisow/ancrage/db"
	"github.com/serisow/ancrage/handlers"
	"github.com/serisow/ancrage/logging"
	"github.com/serisow/ancrage/pipeline"
	"github.com/serisow/ancrage/server"
	"github.com/serisow/ancrage/services/embedding_service"
	"github.com/serisow/ancrage/services/llm_service"
	"github.com/serisow/ancrage/services/rerank_service"
	"github.com/serisow/ancrage/vector_store"
	"github.com/urfave/negroni"
)

func main() {
	cfg := config.Load()

	logger, err := initLogger(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	pool, err := db.Connect(cfg.DatabaseURL, cfg.CollectionName, cfg.EmbeddingDimension)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// One handle per provider per process.
	embedder := embedding_service.NewGeminiEmbeddingService(cfg.GoogleAPIKey, cfg.EmbeddingModel, logger)
	reranker := rerank_service.NewCohereRerankService(cfg.CohereAPIKey, cfg.RerankModel, logger)
	llm := llm_service.NewGroqService(cfg.GroqAPIKey, cfg.LLMModel, cfg.LLMTemperature, cfg.LLMMaxTokens, logger)

	store := vector_store.NewPgVectorStore(pool, cfg.CollectionName, logger)
	indexManager := vector_store.NewIndexManager(pool, cfg.CollectionName, logger)

	queryPipeline := pipeline.NewQueryPipeline(
		pipeline.NewRetriever(embedder, store, cfg.TopKRetrieval, logger),
		pipeline.NewReranker(reranker, cfg.TopKRerank, logger),
		pipeline.NewAnswerGenerator(llm, llm_service.FreeTierPricing, logger),
		logger,
	)
	ingestionPipeline := pipeline.NewIngestionPipeline(
		chunker.New(cfg.ChunkSize, cfg.ChunkOverlap),
		embedder,
		store,
		logger,
	)

	r := server.SetupRoutes(server.Handlers{
		Query:       handlers.NewQueryHandler(queryPipeline, logger),
		Ingest:      handlers.NewIngestHandler(ingestionPipeline, logger),
		Upload:      handlers.NewUploadHandler(ingestionPipeline, logger),
		Stats:       handlers.NewStatsHandler(store, logger),
		Maintenance: handlers.NewMaintenanceHandler(store, indexManager, logger),
	})
	n := setupNegroni(r)

	if cfg.Environment == "production" {
		server.ServeProduction(n, cfg.Domains, cfg.CertCacheDir)
	} else {
		srv := &http.Server{
			Addr:        ":" + cfg.HTTPPort,
			Handler:     n,
			IdleTimeout: time.Minute,
			ReadTimeout: 30 * time.Second,
			// Query responses wait on provider calls that can take up
			// to two minutes.
			WriteTimeout: 3 * time.Minute,
		}
		server.ServeDevelopment(srv)
	}
}

func setupNegroni(r *mux.Router) *negroni.Negroni {
	n := negroni.New()

	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())

	n.UseHandler(r)
	return n
}

func initLogger(logDir string) (*slog.Logger, error) {
	fileHandler, err := logging.NewDailyFileHandler(logDir, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	if err != nil {
		return nil, err
	}

	return slog.New(fileHandler), nil
}
