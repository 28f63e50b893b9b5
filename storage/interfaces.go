package storage

import (
	"context"

	"github.com/zavalabs/prodsearch/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// FindSimilar finds products similar to the given vector.
	// Returns products with cosine similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ProductRepository provides operations for managing catalog products.
type ProductRepository interface {
	Repository
	// UpsertProducts adds or replaces one or more products in storage.
	// IDs are derived from the SKU (core.IDFromContent), so uploading the
	// same SKU twice replaces the earlier document.
	// Sets InsertedAt on first insert and UpdatedAt on every write.
	// Returns the products with IDs and timestamps populated.
	UpsertProducts(ctx context.Context, products ...*core.Product) ([]*core.Product, error)

	// DeleteProducts removes products by their IDs.
	// Also removes associated category index entries.
	// Returns ErrNotFound if any product doesn't exist.
	DeleteProducts(ctx context.Context, ids ...core.ID) error

	// GetProduct retrieves a single product by ID.
	// Returns ErrNotFound if the product doesn't exist.
	GetProduct(ctx context.Context, id core.ID) (*core.Product, error)

	// GetProductBySKU retrieves a single product by SKU.
	// Returns ErrNotFound if the product doesn't exist.
	GetProductBySKU(ctx context.Context, sku string) (*core.Product, error)

	// GetProducts retrieves multiple products by their IDs.
	// Returns only the products that exist (no error for missing products).
	GetProducts(ctx context.Context, ids ...core.ID) ([]*core.Product, error)

	// GetAllProducts retrieves every product in the catalog.
	GetAllProducts(ctx context.Context) ([]*core.Product, error)

	// GetProductsAfter retrieves up to limit products with ID > after,
	// in ascending ID order. Used for resumable batch iteration.
	GetProductsAfter(ctx context.Context, after core.ID, limit int) ([]*core.Product, error)

	// GetProductsByCategory retrieves IDs of products assigned to a category.
	// Returns only product IDs, not full products.
	GetProductsByCategory(ctx context.Context, category string) ([]core.ID, error)

	// GetCategoryCounts returns the number of products per category.
	GetCategoryCounts(ctx context.Context) (map[string]int, error)

	// CountProducts returns the total number of products in the catalog.
	CountProducts(ctx context.Context) (int, error)
}

// CheckpointRepository persists progress markers for resumable batch jobs.
type CheckpointRepository interface {
	// SaveCheckpoint persists a checkpoint for a job.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a job.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, job string) (*core.Checkpoint, error)

	// DeleteCheckpoint removes the checkpoint for a job.
	// Removing a missing checkpoint is not an error.
	DeleteCheckpoint(ctx context.Context, job string) error
}
