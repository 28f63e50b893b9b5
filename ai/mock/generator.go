package mock

import (
	"context"
	"fmt"
)

// MockAnswerGenerator is a test double for ai.AnswerGenerator.
// It allows custom behavior injection via function fields.
type MockAnswerGenerator struct {
	// GenerateAnswerFunc is called by GenerateAnswer if set.
	// If nil, returns a canned answer naming the query and source count.
	GenerateAnswerFunc func(ctx context.Context, query string, passages []string) (string, error)

	callCount int
}

// NewMockAnswerGenerator creates a mock answer generator with canned behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockAnswerGenerator() *MockAnswerGenerator {
	return &MockAnswerGenerator{}
}

// GenerateAnswer returns a deterministic canned answer.
func (m *MockAnswerGenerator) GenerateAnswer(ctx context.Context, query string, passages []string) (string, error) {
	m.callCount++

	if m.GenerateAnswerFunc != nil {
		return m.GenerateAnswerFunc(ctx, query, passages)
	}

	return fmt.Sprintf("Answer to %q based on %d sources [1]", query, len(passages)), nil
}

// CallCount returns the number of times GenerateAnswer was called.
func (m *MockAnswerGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockAnswerGenerator) Reset() {
	m.callCount = 0
	m.GenerateAnswerFunc = nil
}
