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
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/zavalabs/prodsearch/ai"
	"github.com/zavalabs/prodsearch/core"
	"github.com/zavalabs/prodsearch/storage"
)

// Default pipeline parameters.
const (
	// DefaultUploadBatchSize is the number of products stored per upsert.
	DefaultUploadBatchSize = 1000
	// DefaultEmbedBatchSize is the number of texts sent per embedding call.
	DefaultEmbedBatchSize = 64
	// DefaultReportInterval is how often progress is reported, in products.
	DefaultReportInterval = 100
)

// Pipeline orchestrates catalog indexing: it embeds product text and stores
// products in batches, with concurrent embedding calls.
type Pipeline struct {
	productRepo    storage.ProductRepository
	embedder       ai.Embedder
	pool           *ants.Pool
	batchSize      int
	embedBatchSize int
	reportInterval int
	maxRetries     int
	retryDelay     time.Duration
	progress       io.Writer
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding calls.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets the number of products stored per upsert.
// Default is DefaultUploadBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithEmbedBatchSize sets the number of texts sent per embedding call.
// Default is DefaultEmbedBatchSize.
func WithEmbedBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.embedBatchSize = size
		return nil
	}
}

// WithProgress sets the writer for progress output.
// Default is io.Discard.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		if w == nil {
			w = io.Discard
		}
		p.progress = w
		return nil
	}
}

// WithRetry sets the retry policy for embedding calls.
// Defaults are 3 attempts with a 1 second base delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts < 1 {
			return ErrInvalidMaxAttempts
		}
		p.maxRetries = maxAttempts
		p.retryDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new indexing pipeline.
func NewPipeline(
	productRepo storage.ProductRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if productRepo == nil {
		return nil, ErrProductRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		productRepo:    productRepo,
		embedder:       provider.Embedder(),
		pool:           pool,
		batchSize:      DefaultUploadBatchSize,
		embedBatchSize: DefaultEmbedBatchSize,
		reportInterval: DefaultReportInterval,
		maxRetries:     3,
		retryDelay:     1 * time.Second,
		progress:       io.Discard,
		logger:         slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// IndexProducts embeds and stores the given products.
// Products are embedded in concurrent batches and stored in upload batches;
// returns the number of products stored. Indexing stops at the first batch
// that fails, so a returned count lower than len(products) means a partial
// index.
func (p *Pipeline) IndexProducts(ctx context.Context, products []*core.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	for _, product := range products {
		if err := core.ValidateProduct(product); err != nil {
			return 0, err
		}
	}

	tracker := NewProgressTracker(p.progress, len(products), p.reportInterval)
	tracker.Start()

	stored := 0
	for start := 0; start < len(products); start += p.batchSize {
		end := min(start+p.batchSize, len(products))
		batch := products[start:end]

		if err := p.embedProducts(ctx, batch); err != nil {
			p.logger.Error("error embedding product batch", "start", start, "err", err)
			return stored, err
		}

		added, err := p.productRepo.UpsertProducts(ctx, batch...)
		if err != nil {
			p.logger.Error("error storing product batch", "start", start, "err", err)
			return stored, err
		}

		stored += len(added)
		tracker.Increment(len(batch))
	}

	tracker.Finish()
	p.logger.Info("catalog indexed", "products", stored, "elapsed", tracker.Elapsed())
	return stored, nil
}

// embedProducts generates embeddings for all products in the batch,
// fanning sub-batches out to the worker pool.
func (p *Pipeline) embedProducts(ctx context.Context, products []*core.Product) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for start := 0; start < len(products); start += p.embedBatchSize {
		end := min(start+p.embedBatchSize, len(products))
		chunk := products[start:end]

		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			if err := p.embedChunk(ctx, chunk); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()
	return firstErr
}

// embedChunk embeds one sub-batch with retries and assigns the vectors.
func (p *Pipeline) embedChunk(ctx context.Context, products []*core.Product) error {
	texts := make([]string, len(products))
	for i, product := range products {
		texts[i] = product.EmbeddingText()
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = p.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, p.maxRetries, p.retryDelay)
	if err != nil {
		return err
	}
	if len(vectors) != len(products) {
		return ErrEmbeddingCountMismatch
	}

	for i, product := range products {
		product.Vector = vectors[i]
	}
	return nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
