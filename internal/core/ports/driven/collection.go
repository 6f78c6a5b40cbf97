package driven

import (
	"context"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
)

// CollectionStore persists named collections of passages with their
// embedding vectors and normalized scalar metadata.
//
// A collection is either empty or fully populated from a reader's point of
// view: InsertBatch commits all passages atomically. Queries share the same
// read-only handle after the build.
type CollectionStore interface {
	// Count returns the number of passages in the named collection.
	// A collection that was never written counts as zero.
	Count(ctx context.Context, collection string) (int, error)

	// InsertBatch persists all passages into the collection in one atomic
	// operation. Insertion order is retained for tiebreaks.
	InsertBatch(ctx context.Context, collection string, passages []domain.Passage) error

	// Search returns the k nearest passages to the query vector by cosine
	// similarity, descending; ties broken by insertion order. An empty
	// collection returns no hits and no error.
	Search(ctx context.Context, collection string, query []float32, k int) ([]SimilarityHit, error)

	// Peek returns up to n passages in insertion order, for auditing.
	Peek(ctx context.Context, collection string, n int) ([]domain.Passage, error)

	// Close releases resources.
	Close() error
}

// SimilarityHit is one nearest-neighbour result.
type SimilarityHit struct {
	// Passage is the stored passage, embedding included.
	Passage domain.Passage

	// Similarity is the cosine similarity to the query vector.
	Similarity float64
}
