// Package memory provides in-memory storage implementations, primarily
// for tests and ephemeral runs.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
	"github.com/custodia-labs/finsight-cli/internal/core/ports/driven"
)

// Ensure CollectionStore implements the interface.
var _ driven.CollectionStore = (*CollectionStore)(nil)

// CollectionStore is an in-memory implementation of driven.CollectionStore.
// Collections appear atomically: InsertBatch swaps the whole passage slice
// in under the lock.
type CollectionStore struct {
	mu          sync.RWMutex
	collections map[string][]domain.Passage

	// InsertCalls counts InsertBatch invocations, for idempotence tests.
	insertCalls int
}

// NewCollectionStore creates an empty in-memory collection store.
func NewCollectionStore() *CollectionStore {
	return &CollectionStore{
		collections: make(map[string][]domain.Passage),
	}
}

// Count returns the number of passages in the named collection.
func (s *CollectionStore) Count(_ context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection]), nil
}

// InsertBatch persists all passages atomically, appending to any existing
// content in insertion order.
func (s *CollectionStore) InsertBatch(_ context.Context, collection string, passages []domain.Passage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCalls++
	s.collections[collection] = append(s.collections[collection], passages...)
	return nil
}

// Search returns the k nearest passages by cosine similarity, descending,
// ties broken by insertion order. An empty collection yields no hits.
func (s *CollectionStore) Search(_ context.Context, collection string, query []float32, k int) ([]driven.SimilarityHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	passages := s.collections[collection]
	hits := make([]driven.SimilarityHit, 0, len(passages))
	for _, p := range passages {
		hits = append(hits, driven.SimilarityHit{
			Passage:    p,
			Similarity: cosine(query, p.Embedding),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Peek returns up to n passages in insertion order.
func (s *CollectionStore) Peek(_ context.Context, collection string, n int) ([]domain.Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	passages := s.collections[collection]
	if n > 0 && len(passages) > n {
		passages = passages[:n]
	}
	out := make([]domain.Passage, len(passages))
	copy(out, passages)
	return out, nil
}

// Close releases resources.
func (s *CollectionStore) Close() error {
	return nil
}

// InsertCalls returns how many times InsertBatch ran.
func (s *CollectionStore) InsertCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.insertCalls
}

// cosine computes cosine similarity between two vectors. Mismatched or
// zero-magnitude vectors score zero.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
