package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Reranker scores candidate passages against a query.
// Implementations must be thread-safe for concurrent use.
type Reranker interface {
	// RerankScores returns a relevance score in [0, 1] for each passage,
	// in the same order as the input passages. Higher scores mean the
	// passage is a better answer to the query.
	// Returns an error if scoring fails.
	RerankScores(ctx context.Context, query string, passages []string) ([]float32, error)
}

// AnswerGenerator produces a grounded natural-language answer from retrieved context.
// Implementations must be thread-safe for concurrent use.
type AnswerGenerator interface {
	// GenerateAnswer answers the query using only the provided context
	// passages. Passages are numbered from 1 in the order given, and the
	// answer may cite them by number.
	// Returns an error if generation fails.
	GenerateAnswer(ctx context.Context, query string, passages []string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder, Reranker, and AnswerGenerator instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Reranker returns the passage reranking service.
	// The returned Reranker is safe for concurrent use.
	Reranker() Reranker

	// AnswerGenerator returns the grounded answer generation service.
	// The returned AnswerGenerator is safe for concurrent use.
	AnswerGenerator() AnswerGenerator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
