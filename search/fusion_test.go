package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zavalabs/prodsearch/core"
)

func fusionResult(id core.ID, score float32) *core.SearchResult {
	return &core.SearchResult{
		Product: &core.Product{Id: id, SKU: "SKU", Name: "Product"},
		Score:   score,
	}
}

func TestFuseRRF(t *testing.T) {
	t.Run("empty lists", func(t *testing.T) {
		results := fuseRRF(nil, nil, DefaultRRFConstant, DefaultKeywordWeight, DefaultVectorWeight, 10)
		assert.Empty(t, results)
	})

	t.Run("single list passes through in order", func(t *testing.T) {
		keyword := []*core.SearchResult{
			fusionResult(1, 5.0),
			fusionResult(2, 3.0),
			fusionResult(3, 1.0),
		}
		results := fuseRRF(keyword, nil, DefaultRRFConstant, DefaultKeywordWeight, DefaultVectorWeight, 10)
		require.Len(t, results, 3)
		assert.Equal(t, core.ID(1), results[0].Product.Id)
		assert.Equal(t, core.ID(2), results[1].Product.Id)
		assert.Equal(t, core.ID(3), results[2].Product.Id)
	})

	t.Run("product in both lists outranks single-list products", func(t *testing.T) {
		keyword := []*core.SearchResult{
			fusionResult(1, 5.0),
			fusionResult(2, 3.0),
		}
		vector := []*core.SearchResult{
			fusionResult(3, 0.9),
			fusionResult(2, 0.8),
		}
		results := fuseRRF(keyword, vector, DefaultRRFConstant, DefaultKeywordWeight, DefaultVectorWeight, 10)
		require.Len(t, results, 3)
		// ID 2 accumulates from both lists: 0.35/62 + 0.65/62
		assert.Equal(t, core.ID(2), results[0].Product.Id)
		expected := float32(0.35)/62 + float32(0.65)/62
		assert.InDelta(t, expected, results[0].Score, 1e-6)
	})

	t.Run("vector weight dominates at equal ranks", func(t *testing.T) {
		keyword := []*core.SearchResult{fusionResult(1, 10.0)}
		vector := []*core.SearchResult{fusionResult(2, 0.5)}
		results := fuseRRF(keyword, vector, DefaultRRFConstant, DefaultKeywordWeight, DefaultVectorWeight, 10)
		require.Len(t, results, 2)
		// Both rank 1, but the vector list carries the higher weight
		assert.Equal(t, core.ID(2), results[0].Product.Id)
	})

	t.Run("original scores ignored", func(t *testing.T) {
		// BM25 and cosine scores are on different scales; only ranks count
		keyword := []*core.SearchResult{
			fusionResult(1, 100.0),
			fusionResult(2, 99.0),
		}
		vector := []*core.SearchResult{
			fusionResult(2, 0.99),
			fusionResult(1, 0.98),
		}
		results := fuseRRF(keyword, vector, DefaultRRFConstant, 0.5, 0.5, 10)
		require.Len(t, results, 2)
		// Symmetric ranks and weights, fused scores tie, ID breaks it
		assert.InDelta(t, results[0].Score, results[1].Score, 1e-6)
		assert.Equal(t, core.ID(1), results[0].Product.Id)
	})

	t.Run("limit respected", func(t *testing.T) {
		keyword := []*core.SearchResult{
			fusionResult(1, 3.0),
			fusionResult(2, 2.0),
			fusionResult(3, 1.0),
		}
		results := fuseRRF(keyword, nil, DefaultRRFConstant, DefaultKeywordWeight, DefaultVectorWeight, 2)
		assert.Len(t, results, 2)
	})
}
