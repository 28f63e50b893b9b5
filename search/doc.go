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


// Package search provides keyword, vector, hybrid, and reranked search over
// the product catalog.
//
// The Searcher type implements four retrieval modes:
//   - Keyword search using BM25 scoring with stop-word filtering
//   - Vector search using embedding similarity
//   - Hybrid search fusing both ranked lists with reciprocal rank fusion
//   - Semantic search, which reranks hybrid results with an LLM judge
//
// Results carry the retrieval score and, for semantic mode, a separate
// reranker score in the [0, 1] range.
package search
