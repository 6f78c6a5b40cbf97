package driving

import (
	"context"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
)

// IndexService manages the one-time collection build.
type IndexService interface {
	// EnsureIndex opens the configured collection, building it first if it
	// is empty. Calling it against a populated collection performs no
	// writes. Zero source documents produce an empty collection, not an
	// error.
	EnsureIndex(ctx context.Context) (IndexStats, error)

	// Peek returns up to n indexed passages in insertion order, for audit.
	Peek(ctx context.Context, n int) ([]domain.Passage, error)
}

// IndexStats summarises an EnsureIndex call.
type IndexStats struct {
	// Collection is the collection name that was opened or built.
	Collection string

	// Passages is the number of passages now in the collection.
	Passages int

	// Built is true when this call performed the ingestion, false when an
	// existing non-empty collection was reused.
	Built bool
}
