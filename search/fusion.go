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
	"slices"

	"github.com/zavalabs/prodsearch/core"
)

// Default reciprocal rank fusion parameters. The rank constant of 60 is
// the standard value from the original RRF paper; the weights favor the
// semantic list over the keyword list.
const (
	DefaultRRFConstant   = 60
	DefaultKeywordWeight = 0.35
	DefaultVectorWeight  = 0.65
)

// fuseRRF merges two ranked result lists with weighted reciprocal rank
// fusion: each product scores sum(weight / (k + rank)) over the lists it
// appears in, with rank starting at 1. Products present in both lists are
// deduplicated by ID. Returns up to limit results, highest fused score
// first.
func fuseRRF(keyword, vector []*core.SearchResult, k int, keywordWeight, vectorWeight float32, limit int) []*core.SearchResult {
	type fused struct {
		product *core.Product
		score   float32
	}
	byID := make(map[core.ID]*fused)

	accumulate := func(results []*core.SearchResult, weight float32) {
		for rank, result := range results {
			contribution := weight / float32(k+rank+1)
			if entry, ok := byID[result.Product.Id]; ok {
				entry.score += contribution
				continue
			}
			byID[result.Product.Id] = &fused{
				product: result.Product,
				score:   contribution,
			}
		}
	}
	accumulate(keyword, keywordWeight)
	accumulate(vector, vectorWeight)

	results := make([]*core.SearchResult, 0, len(byID))
	for _, entry := range byID {
		results = append(results, &core.SearchResult{
			Product: entry.product,
			Score:   entry.score,
		})
	}

	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		// Tie-break on ID for deterministic ordering
		if a.Product.Id < b.Product.Id {
			return -1
		}
		if a.Product.Id > b.Product.Id {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
