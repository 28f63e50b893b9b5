package rag

import "errors"

var (
	// ErrSearcherRequired is returned when a searcher is not provided.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmptyQuestion is returned when the question is empty.
	ErrEmptyQuestion = errors.New("question must not be empty")

	// ErrNoResults is returned when retrieval finds nothing to ground an answer on.
	ErrNoResults = errors.New("no products found for question")
)
