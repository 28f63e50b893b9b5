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


package search

import (
	"math"
	"slices"
	"sync"

	"github.com/zavalabs/prodsearch/core"
)

// BM25 parameters. Standard Okapi values.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// keywordDoc holds per-product term statistics for BM25 scoring.
type keywordDoc struct {
	product   *core.Product
	termFreqs map[string]int
	length    int
}

// KeywordIndex is an in-memory BM25 inverted index over product text.
// Products are indexed on SKU, name, description, and categories.
// Safe for concurrent use; Build replaces the whole index atomically.
type KeywordIndex struct {
	mu        sync.RWMutex
	docs      []keywordDoc
	docFreqs  map[string]int
	avgLength float64
}

// NewKeywordIndex creates an empty keyword index.
func NewKeywordIndex() *KeywordIndex {
	return &KeywordIndex{
		docFreqs: make(map[string]int),
	}
}

// Build replaces the index contents with the given products.
func (idx *KeywordIndex) Build(products []*core.Product) {
	docs := make([]keywordDoc, 0, len(products))
	docFreqs := make(map[string]int)
	totalLength := 0

	for _, product := range products {
		terms := tokenizeAndFilter(product.SKU + " " + product.EmbeddingText())
		termFreqs := make(map[string]int, len(terms))
		for _, term := range terms {
			termFreqs[term]++
		}
		for term := range termFreqs {
			docFreqs[term]++
		}
		totalLength += len(terms)
		docs = append(docs, keywordDoc{
			product:   product,
			termFreqs: termFreqs,
			length:    len(terms),
		})
	}

	avgLength := 0.0
	if len(docs) > 0 {
		avgLength = float64(totalLength) / float64(len(docs))
	}

	idx.mu.Lock()
	idx.docs = docs
	idx.docFreqs = docFreqs
	idx.avgLength = avgLength
	idx.mu.Unlock()
}

// Len returns the number of indexed products.
func (idx *KeywordIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// Search scores all indexed products against the query with Okapi BM25.
// Returns up to limit results with positive scores, highest first.
func (idx *KeywordIndex) Search(query string, limit int) []*core.SearchResult {
	queryTerms := tokenizeAndFilter(query)
	if len(queryTerms) == 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.docs) == 0 {
		return nil
	}

	docCount := float64(len(idx.docs))
	var results []*core.SearchResult

	for i := range idx.docs {
		doc := &idx.docs[i]
		score := 0.0
		for _, term := range queryTerms {
			tf := doc.termFreqs[term]
			if tf == 0 {
				continue
			}
			df := float64(idx.docFreqs[term])
			// Okapi IDF with +1 to keep scores positive for common terms
			idf := math.Log(1 + (docCount-df+0.5)/(df+0.5))
			norm := 1 - bm25B + bm25B*float64(doc.length)/idx.avgLength
			score += idf * float64(tf) * (bm25K1 + 1) / (float64(tf) + bm25K1*norm)
		}
		if score > 0 {
			results = append(results, &core.SearchResult{
				Product: doc.product,
				Score:   float32(score),
			})
		}
	}

	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
