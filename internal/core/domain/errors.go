package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable indicates the LLM service is not configured or
	// unreachable. Retrieval-augmented answering cannot proceed without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrCollectionUnavailable indicates the collection store is not configured.
	ErrCollectionUnavailable = errors.New("collection store unavailable")

	// ErrIndexInProgress indicates an index build is already running for
	// the collection.
	ErrIndexInProgress = errors.New("index build in progress")
)
