package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing over the product SKU.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Product represents a single catalog entry.
// It may be enriched with an embedding vector during indexing.
type Product struct {
	Id          ID
	SKU         string
	Name        string
	Description string
	Price       float64
	StockLevel  int32
	Categories  []string
	Vector      []float32 // Embedding vector for semantic search (populated by the index pipeline)
	InsertedAt  time.Time // When the product was inserted into the catalog
	UpdatedAt   time.Time // When the product was last updated
}

// EmbeddingText returns the text that is embedded for this product.
// Name, description, and categories are joined into a single passage.
func (p *Product) EmbeddingText() string {
	parts := make([]string, 0, 3)
	if p.Name != "" {
		parts = append(parts, p.Name)
	}
	if p.Description != "" {
		parts = append(parts, p.Description)
	}
	if len(p.Categories) > 0 {
		parts = append(parts, strings.Join(p.Categories, " "))
	}
	return strings.Join(parts, " ")
}

// SearchResult represents a search result with the full product and relevance score.
// RerankerScore is only populated when the result has passed a reranking stage.
type SearchResult struct {
	Product       *Product
	Score         float32
	RerankerScore float32
}

// Checkpoint records the progress of a resumable batch job,
// such as a full catalog reembedding.
type Checkpoint struct {
	Job       string
	Position  ID // Last product ID processed, in ascending ID order
	UpdatedAt time.Time
}
