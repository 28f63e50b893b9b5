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


package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zavalabs/prodsearch/ai"
	"github.com/zavalabs/prodsearch/core"
	"github.com/zavalabs/prodsearch/search"
)

// DefaultTopK is the number of products retrieved to ground an answer.
const DefaultTopK = 5

// Answer is a grounded answer with the products it was built from.
// Sources are in the retrieval order the generator saw them, so a citation
// [n] in the text refers to Sources[n-1].
type Answer struct {
	Text    string
	Sources []*core.SearchResult
}

// Answerer answers natural-language questions about the product catalog by
// retrieving relevant products and generating a grounded answer.
type Answerer struct {
	searcher  *search.Searcher
	generator ai.AnswerGenerator
	topK      int
	mode      search.Mode
	logger    *slog.Logger
}

// Option configures an Answerer.
type Option func(*Answerer) error

// WithTopK sets the number of products retrieved per question.
// Default is DefaultTopK.
func WithTopK(k int) Option {
	return func(a *Answerer) error {
		if k < 1 {
			k = 1
		}
		a.topK = k
		return nil
	}
}

// WithMode sets the retrieval mode used for grounding.
// Default is search.ModeSemantic.
func WithMode(mode search.Mode) Option {
	return func(a *Answerer) error {
		a.mode = mode
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Answerer) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAnswerer creates a new answerer.
func NewAnswerer(searcher *search.Searcher, provider ai.AIProvider, opts ...Option) (*Answerer, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	a := &Answerer{
		searcher:  searcher,
		generator: provider.AnswerGenerator(),
		topK:      DefaultTopK,
		mode:      search.ModeSemantic,
		logger:    slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Ask retrieves products relevant to the question and generates an answer
// grounded in them. Returns ErrNoResults if retrieval finds nothing.
func (a *Answerer) Ask(ctx context.Context, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	results, err := a.searcher.Search(ctx, search.Query{
		Text:    question,
		Mode:    a.mode,
		MaxHits: a.topK,
	})
	if err != nil {
		a.logger.Error("error retrieving products for question", "err", err)
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	passages := make([]string, len(results))
	for i, result := range results {
		passages[i] = formatPassage(result.Product)
	}

	text, err := a.generator.GenerateAnswer(ctx, question, passages)
	if err != nil {
		a.logger.Error("error generating answer", "err", err)
		return nil, err
	}

	return &Answer{
		Text:    text,
		Sources: results,
	}, nil
}

// formatPassage renders a product as a context passage for the generator.
func formatPassage(product *core.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", product.Name)
	fmt.Fprintf(&b, "SKU: %s\n", product.SKU)
	fmt.Fprintf(&b, "Price: $%.2f\n", product.Price)
	fmt.Fprintf(&b, "In stock: %d\n", product.StockLevel)
	if len(product.Categories) > 0 {
		fmt.Fprintf(&b, "Categories: %s\n", strings.Join(product.Categories, ", "))
	}
	fmt.Fprintf(&b, "Description: %s", product.Description)
	return b.String()
}
