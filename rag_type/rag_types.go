package rag_type

import "github.com/pgvector/pgvector-go"

// ChunkMetadata travels with a chunk from ingestion through retrieval
// and is stored verbatim in the documents table.
type ChunkMetadata struct {
	Source    string `json:"source"`
	Title     string `json:"title,omitempty"`
	Position  int    `json:"position"`
	ChunkSize int    `json:"chunkSize"`
	Overlap   int    `json:"overlap"`
}

// TextChunk is one window of a source document, the unit of embedding.
type TextChunk struct {
	Content  string
	Metadata ChunkMetadata
}

// VectorDocument is the persisted form of a chunk. The id is assigned
// by the store on insert, never by the caller.
type VectorDocument struct {
	ID        int
	Content   string
	Embedding pgvector.Vector
	Metadata  ChunkMetadata
}

// SearchResult is one row of a similarity search, ordered by
// similarity descending.
type SearchResult struct {
	ID         int           `json:"id"`
	Content    string        `json:"content"`
	Metadata   ChunkMetadata `json:"metadata"`
	Similarity float64       `json:"similarity"`
}

// RerankedResult is a SearchResult after cross-encoder scoring.
// CitationIndex is 1-based and follows the rerank order, not the
// retrieval order.
type RerankedResult struct {
	SearchResult
	RerankScore   float64 `json:"rerankScore"`
	CitationIndex int     `json:"citationIndex"`
}

// Citation is the externally visible evidence record attached to an
// answer.
type Citation struct {
	Index       int     `json:"index"`
	Content     string  `json:"content"`
	Source      string  `json:"source"`
	Title       string  `json:"title,omitempty"`
	Position    int     `json:"position"`
	RerankScore float64 `json:"rerankScore"`
}

type Usage struct {
	PromptTokens     int     `json:"promptTokens"`
	CompletionTokens int     `json:"completionTokens"`
	TotalTokens      int     `json:"totalTokens"`
	EstimatedCost    float64 `json:"estimatedCost"`
}

// AnswerWithCitations is built once per generation call and never
// mutated afterwards.
type AnswerWithCitations struct {
	Answer    string
	Citations []Citation
	Usage     Usage
	LLMMs     int64
}

type QueryTiming struct {
	RetrievalMs int64 `json:"retrievalMs"`
	RerankMs    int64 `json:"rerankMs"`
	LLMMs       int64 `json:"llmMs"`
	TotalMs     int64 `json:"totalMs"`
}

type IngestStats struct {
	ChunksCreated  int     `json:"chunksCreated"`
	TotalTokens    int     `json:"totalTokens"`
	EstimatedCost  float64 `json:"estimatedCost"`
	ProcessingTime int64   `json:"processingTime"`
}
