package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
	"github.com/custodia-labs/finsight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/finsight-cli/internal/core/ports/driving"
	"github.com/custodia-labs/finsight-cli/internal/logger"
	"github.com/custodia-labs/finsight-cli/internal/postprocessors/chunker"
)

// Ensure IndexerService implements the interface.
var _ driving.IndexService = (*IndexerService)(nil)

// embedBatchSize is how many passages are embedded per service call.
const embedBatchSize = 32

// defaultEmbedRate caps embedding calls during bulk ingestion so a local
// inference server is not flooded.
var defaultEmbedRate = rate.Limit(8)

// IndexerService drives the one-time collection build: load documents,
// chunk, normalize metadata, embed, persist. Subsequent runs against a
// populated collection are read-only opens.
type IndexerService struct {
	settings domain.Settings
	source   driven.DocumentSource
	embedder driven.EmbeddingService
	store    driven.CollectionStore
	splitter *chunker.Splitter
	limiter  *rate.Limiter

	// mu makes the build exclusive within this process; cross-process
	// exclusivity comes from the store's atomic InsertBatch.
	mu       sync.Mutex
	building bool
}

// NewIndexerService creates an indexer for the configured collection.
func NewIndexerService(
	settings domain.Settings,
	source driven.DocumentSource,
	embedder driven.EmbeddingService,
	store driven.CollectionStore,
) *IndexerService {
	return &IndexerService{
		settings: settings,
		source:   source,
		embedder: embedder,
		store:    store,
		splitter: chunker.New(
			chunker.WithChunkSize(settings.ChunkSize),
			chunker.WithOverlap(settings.ChunkOverlap),
		),
		limiter: rate.NewLimiter(defaultEmbedRate, 1),
	}
}

// EnsureIndex opens the collection, building it first when empty.
// The build is idempotent: a non-empty collection is never written again;
// renaming the collection in the settings is the rebuild path. A corpus
// with zero documents completes with an empty collection and no error.
func (s *IndexerService) EnsureIndex(ctx context.Context) (driving.IndexStats, error) {
	stats := driving.IndexStats{Collection: s.settings.Collection}

	if s.store == nil {
		return stats, domain.ErrCollectionUnavailable
	}

	s.mu.Lock()
	if s.building {
		s.mu.Unlock()
		return stats, domain.ErrIndexInProgress
	}
	s.building = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.building = false
		s.mu.Unlock()
	}()

	logger.Section("Index Build")

	count, err := s.store.Count(ctx, s.settings.Collection)
	if err != nil {
		return stats, fmt.Errorf("count collection: %w", err)
	}
	if count > 0 {
		logger.Info("Collection %q already has %d passages, skipping ingestion", s.settings.Collection, count)
		stats.Passages = count
		return stats, nil
	}

	docs, err := s.source.Load(ctx)
	if err != nil {
		return stats, fmt.Errorf("load documents: %w", err)
	}
	logger.Info("Loaded %d documents", len(docs))

	stats.Built = true
	if len(docs) == 0 {
		logger.Warn("No source documents found; collection %q stays empty", s.settings.Collection)
		return stats, nil
	}

	var passages []domain.Passage
	for _, doc := range docs {
		split := s.splitter.Split(doc)
		for i := range split {
			split[i].Metadata = NormalizeMetadata(split[i].Metadata)
		}
		logger.Debug("Document %q: %d passages", doc.FileName, len(split))
		passages = append(passages, split...)
	}

	if err := s.embedPassages(ctx, passages); err != nil {
		return stats, err
	}

	if err := s.store.InsertBatch(ctx, s.settings.Collection, passages); err != nil {
		return stats, fmt.Errorf("persist passages: %w", err)
	}

	stats.Passages = len(passages)
	logger.Info("Indexed %d passages into %q", len(passages), s.settings.Collection)
	return stats, nil
}

// Peek returns up to n indexed passages in insertion order.
func (s *IndexerService) Peek(ctx context.Context, n int) ([]domain.Passage, error) {
	if s.store == nil {
		return nil, domain.ErrCollectionUnavailable
	}
	return s.store.Peek(ctx, s.settings.Collection, n)
}

// embedPassages fills in embeddings batch by batch, rate limited.
func (s *IndexerService) embedPassages(ctx context.Context, passages []domain.Passage) error {
	if s.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}

	for start := 0; start < len(passages); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(passages) {
			end = len(passages)
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		texts := make([]string, end-start)
		for i := start; i < end; i++ {
			texts[i-start] = passages[i].Content
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed passages %d-%d: %w", start, end, err)
		}
		if len(vectors) != end-start {
			return fmt.Errorf("embed passages %d-%d: got %d vectors for %d texts", start, end, len(vectors), end-start)
		}

		for i := start; i < end; i++ {
			passages[i].Embedding = vectors[i-start]
		}
		logger.Debug("Embedded passages %d-%d", start, end)
	}

	return nil
}
