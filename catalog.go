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


package prodsearch

import (
	"io"
	"log/slog"

	"github.com/zavalabs/prodsearch/ai"
	"github.com/zavalabs/prodsearch/ai/openai"
	"github.com/zavalabs/prodsearch/index"
	"github.com/zavalabs/prodsearch/rag"
	"github.com/zavalabs/prodsearch/search"
	"github.com/zavalabs/prodsearch/storage"
	"github.com/zavalabs/prodsearch/storage/badger"
)

// Catalog is the top-level handle to a product catalog: storage, AI services,
// and factories for the indexing, search, and answering components.
type Catalog struct {
	backend        *badger.Backend
	productRepo    storage.ProductRepository
	checkpointRepo storage.CheckpointRepository
	provider       ai.AIProvider
	logger         *slog.Logger
}

// CatalogOption configures a Catalog.
type CatalogOption func(*catalogOptions)

type catalogOptions struct {
	aiConfig *ai.Config
}

// WithAIConfig sets the AI service configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) CatalogOption {
	return func(o *catalogOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// OpenCatalog opens the catalog store at filePath and connects AI services.
func OpenCatalog(filePath string, opts ...CatalogOption) (*Catalog, error) {
	// Apply options
	options := &catalogOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	// Create product repository
	productRepo, err := badger.NewProductRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create checkpoint repository
	checkpointRepo := badger.NewCheckpointRepository(backend)

	// Create AI provider with configured settings
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		productRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Catalog{
		backend:        backend,
		productRepo:    productRepo,
		checkpointRepo: checkpointRepo,
		provider:       provider,
		logger:         slog.Default(),
	}, nil
}

func (c *Catalog) Close() error {
	// Close AI provider first
	if err := c.provider.Close(); err != nil {
		c.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := c.productRepo.Close(); err != nil {
		c.logger.Error("error closing product repository", "err", err)
		return err
	}

	// Close backend
	if err := c.backend.Close(); err != nil {
		c.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (c *Catalog) ProductRepository() storage.ProductRepository {
	return c.productRepo
}

func (c *Catalog) CheckpointRepository() storage.CheckpointRepository {
	return c.checkpointRepo
}

func (c *Catalog) NewIndexPipeline(opts ...index.Option) (*index.Pipeline, error) {
	return index.NewPipeline(c.productRepo, c.provider, opts...)
}

func (c *Catalog) NewReembedder(config *index.ReembedConfig, progress io.Writer) (*index.Reembedder, error) {
	return index.NewReembedder(c.productRepo, c.checkpointRepo, c.provider, config, progress)
}

func (c *Catalog) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(c.productRepo, c.provider, opts...)
}

func (c *Catalog) NewAnswerer(opts ...rag.Option) (*rag.Answerer, error) {
	searcher, err := c.NewSearcher()
	if err != nil {
		return nil, err
	}
	return rag.NewAnswerer(searcher, c.provider, opts...)
}
