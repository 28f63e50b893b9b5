// Copyright 2025 Zava Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package index

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/zavalabs/prodsearch/ai"
	"github.com/zavalabs/prodsearch/core"
	"github.com/zavalabs/prodsearch/storage"
)

// reembedJob is the checkpoint job name for catalog reembedding.
const reembedJob = "reembed"

// ReembedConfig holds configuration for the reembedding operation.
type ReembedConfig struct {
	// BatchSize is the number of products to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of products)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed embedding calls
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultReembedConfig returns a ReembedConfig with sensible defaults.
func DefaultReembedConfig() *ReembedConfig {
	return &ReembedConfig{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder regenerates embeddings for every product in the catalog,
// typically after switching embedding models. Progress is checkpointed so an
// interrupted run resumes where it left off.
type Reembedder struct {
	productRepo    storage.ProductRepository
	checkpointRepo storage.CheckpointRepository
	embedder       ai.Embedder
	config         *ReembedConfig
	progress       io.Writer
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(
	productRepo storage.ProductRepository,
	checkpointRepo storage.CheckpointRepository,
	provider ai.AIProvider,
	config *ReembedConfig,
	progress io.Writer,
) (*Reembedder, error) {
	if productRepo == nil {
		return nil, ErrProductRepositoryRequired
	}
	if checkpointRepo == nil {
		return nil, ErrCheckpointRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if config == nil {
		config = DefaultReembedConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		productRepo:    productRepo,
		checkpointRepo: checkpointRepo,
		embedder:       provider.Embedder(),
		config:         config,
		progress:       progress,
	}, nil
}

// Run executes the reembedding operation.
// Every product after the last checkpoint is reembedded and stored; the
// checkpoint is advanced after each batch and removed on completion.
func (r *Reembedder) Run(ctx context.Context) error {
	total, err := r.productRepo.CountProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No products found in catalog (0 products)\n")
		return nil
	}

	var after core.ID
	checkpoint, err := r.checkpointRepo.LoadCheckpoint(ctx, reembedJob)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if checkpoint != nil {
		after = checkpoint.Position
		fmt.Fprintf(r.progress, "Resuming reembedding from checkpoint (position %d)\n", after)
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d products (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	for {
		products, err := r.productRepo.GetProductsAfter(ctx, after, r.config.BatchSize)
		if err != nil {
			return fmt.Errorf("failed to load product batch: %w", err)
		}
		if len(products) == 0 {
			break
		}

		if err := r.reembedBatch(ctx, products); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		after = products[len(products)-1].Id
		if err := r.checkpointRepo.SaveCheckpoint(ctx, &core.Checkpoint{
			Job:      reembedJob,
			Position: after,
		}); err != nil {
			return fmt.Errorf("failed to save checkpoint: %w", err)
		}

		tracker.Increment(len(products))
	}

	tracker.Finish()

	if err := r.checkpointRepo.DeleteCheckpoint(ctx, reembedJob); err != nil {
		return fmt.Errorf("failed to clear checkpoint: %w", err)
	}

	fmt.Fprintf(r.progress, "Reembedding complete in %s\n", tracker.Elapsed().Round(time.Millisecond))
	return nil
}

// reembedBatch embeds one batch with retries and stores the updated products.
func (r *Reembedder) reembedBatch(ctx context.Context, products []*core.Product) error {
	texts := make([]string, len(products))
	for i, product := range products {
		texts[i] = product.EmbeddingText()
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = r.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, r.config.MaxRetries, r.config.RetryDelay)
	if err != nil {
		return err
	}
	if len(vectors) != len(products) {
		return ErrEmbeddingCountMismatch
	}

	for i, product := range products {
		product.Vector = vectors[i]
	}

	_, err = r.productRepo.UpsertProducts(ctx, products...)
	return err
}
