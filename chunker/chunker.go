package chunker

import (
	"strings"

	"github.com/serisow/ancrage/rag_type"
)

// Chunker splits raw text into overlapping word windows. Sizes are
// configured in tokens and converted to words with the usual
// 1 token ~= 0.75 words approximation.
type Chunker struct {
	chunkSize int
	overlap   int
}

func New(chunkSize, overlap int) *Chunker {
	return &Chunker{
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// Chunk is a pure function: identical input always yields the
// identical chunk sequence. Empty text yields an empty slice, which
// ingestion treats as a hard failure.
func (c *Chunker) Chunk(text, source, title string) []rag_type.TextChunk {
	words := strings.Fields(text)

	wordsPerChunk := c.chunkSize * 3 / 4
	if wordsPerChunk < 1 {
		wordsPerChunk = 1
	}
	overlapWords := c.overlap * 3 / 4

	// If overlap >= chunk size the naive stride goes to zero or
	// negative and the window never advances. Clamp to 1.
	stride := wordsPerChunk - overlapWords
	if stride < 1 {
		stride = 1
	}

	chunks := make([]rag_type.TextChunk, 0)
	position := 0

	for i := 0; i < len(words); i += stride {
		end := i + wordsPerChunk
		if end > len(words) {
			end = len(words)
		}

		content := strings.Join(words[i:end], " ")
		if strings.TrimSpace(content) == "" {
			// Skipped windows do not consume a position number.
			continue
		}

		chunks = append(chunks, rag_type.TextChunk{
			Content: content,
			Metadata: rag_type.ChunkMetadata{
				Source:    source,
				Title:     title,
				Position:  position,
				ChunkSize: c.chunkSize,
				Overlap:   c.overlap,
			},
		})
		position++
	}

	return chunks
}

// EstimateTokens approximates token count as 1 token ~= 4 characters,
// rounded up. Used for ingestion cost accounting, independent of any
// counts the embedding provider reports.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
