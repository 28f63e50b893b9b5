package mock

import (
	"context"
	"strings"
)

// MockReranker is a test double for ai.Reranker.
// It allows custom behavior injection via function fields.
type MockReranker struct {
	// RerankScoresFunc is called by RerankScores if set.
	// If nil, uses default term-overlap behavior.
	RerankScoresFunc func(ctx context.Context, query string, passages []string) ([]float32, error)

	callCount int
}

// NewMockReranker creates a mock reranker with default deterministic behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockReranker() *MockReranker {
	return &MockReranker{}
}

// RerankScores returns a deterministic relevance score per passage based on
// the fraction of query terms that appear in the passage.
func (m *MockReranker) RerankScores(ctx context.Context, query string, passages []string) ([]float32, error) {
	m.callCount++

	if m.RerankScoresFunc != nil {
		return m.RerankScoresFunc(ctx, query, passages)
	}

	queryTerms := strings.Fields(strings.ToLower(query))
	scores := make([]float32, len(passages))
	for i, passage := range passages {
		if len(queryTerms) == 0 {
			continue
		}
		lowered := strings.ToLower(passage)
		matched := 0
		for _, term := range queryTerms {
			if strings.Contains(lowered, term) {
				matched++
			}
		}
		scores[i] = float32(matched) / float32(len(queryTerms))
	}
	return scores, nil
}

// CallCount returns the number of times RerankScores was called.
func (m *MockReranker) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockReranker) Reset() {
	m.callCount = 0
	m.RerankScoresFunc = nil
}
