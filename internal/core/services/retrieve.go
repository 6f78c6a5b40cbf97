package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
	"github.com/custodia-labs/finsight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/finsight-cli/internal/logger"
)

// Retriever performs first-stage nearest-neighbour lookup across one or
// more retrieval queries and merges the results into a deduplicated
// candidate set.
type Retriever struct {
	store      driven.CollectionStore
	embedder   driven.EmbeddingService
	collection string
	topK       int
}

// NewRetriever creates a retriever bound to one collection.
func NewRetriever(store driven.CollectionStore, embedder driven.EmbeddingService, collection string, topK int) *Retriever {
	if topK <= 0 {
		topK = domain.DefaultRetrieveK
	}
	return &Retriever{
		store:      store,
		embedder:   embedder,
		collection: collection,
		topK:       topK,
	}
}

// Retrieve embeds every retrieval query, fetches the top-k passages for
// each, and merges by passage identity keeping the best similarity per
// duplicate. The merged set is ordered by best similarity descending with
// the original retrieval rank as a stable tiebreak. An empty collection
// yields an empty candidate set, not an error.
func (r *Retriever) Retrieve(ctx context.Context, queries []string) ([]domain.RetrievalCandidate, error) {
	return r.RetrieveTopK(ctx, queries, r.topK)
}

// RetrieveTopK is Retrieve with an explicit per-query k, used by health
// checks and agent-facing search.
func (r *Retriever) RetrieveTopK(ctx context.Context, queries []string, k int) ([]domain.RetrievalCandidate, error) {
	if k <= 0 {
		k = r.topK
	}
	if r.store == nil {
		return nil, domain.ErrCollectionUnavailable
	}
	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	best := make(map[string]domain.RetrievalCandidate)
	firstSeen := make(map[string]int)
	seen := 0

	for _, query := range queries {
		vector, err := r.embedder.Embed(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("embed retrieval query: %w", err)
		}

		hits, err := r.store.Search(ctx, r.collection, vector, k)
		if err != nil {
			return nil, fmt.Errorf("collection search: %w", err)
		}
		logger.Debug("Retrieval query %.60q: %d hits", query, len(hits))

		for _, hit := range hits {
			id := hit.Passage.ID
			if _, ok := firstSeen[id]; !ok {
				firstSeen[id] = seen
				seen++
			}
			if existing, ok := best[id]; !ok || hit.Similarity > existing.Similarity {
				best[id] = domain.RetrievalCandidate{
					Passage:    hit.Passage,
					Similarity: hit.Similarity,
				}
			}
		}
	}

	merged := make([]domain.RetrievalCandidate, 0, len(best))
	for _, c := range best {
		merged = append(merged, c)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Similarity != merged[j].Similarity {
			return merged[i].Similarity > merged[j].Similarity
		}
		return firstSeen[merged[i].Passage.ID] < firstSeen[merged[j].Passage.ID]
	})

	for i := range merged {
		merged[i].Rank = i
	}

	logger.Info("Retrieved %d unique candidates from %d queries", len(merged), len(queries))
	return merged, nil
}
