package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
	"github.com/custodia-labs/finsight-cli/internal/core/services"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "finsight-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

func testPassages() []domain.Passage {
	return []domain.Passage{
		{
			ID:        "p1",
			Content:   "EBITDA sasniedza 120 miljonus eiro.",
			Position:  0,
			Embedding: []float32{1, 0, 0},
			Metadata:  map[string]any{"file_name": "Report.pdf", "page_no": 3},
		},
		{
			ID:        "p2",
			Content:   "Generation output grew by 8 percent.",
			Position:  1,
			Embedding: []float32{0, 1, 0},
			Metadata:  map[string]any{"file_name": "Report.pdf", "page_no": 5},
		},
		{
			ID:        "p3",
			Content:   "Dividend policy remained unchanged.",
			Position:  2,
			Embedding: []float32{0.5, 0.5, 0},
			Metadata:  map[string]any{"file_name": "Report.pdf", "page_no": "N/A"},
		},
	}
}

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "finsight-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	dbPath := filepath.Join(tempDir, "collections.db")
	assert.Equal(t, dbPath, store.Path())

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestCount_EmptyCollection(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	count, err := store.Count(context.Background(), "never_written")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestInsertBatch_RoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.InsertBatch(ctx, "reports", testPassages()))

	count, err := store.Count(ctx, "reports")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	passages, err := store.Peek(ctx, "reports", 10)
	require.NoError(t, err)
	require.Len(t, passages, 3)

	// Insertion order and full passage contents survive the round trip.
	got := passages[0]
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, "EBITDA sasniedza 120 miljonus eiro.", got.Content)
	assert.Equal(t, 0, got.Position)
	assert.Equal(t, []float32{1, 0, 0}, got.Embedding)
	assert.Equal(t, "Report.pdf", got.FileName())
	assert.Equal(t, "3", got.PageNo())
}

func TestInsertBatch_NormalizedMetadataSurvivesRoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	// Metadata exactly as the indexer persists it: JSON encoding turns
	// the normalizer's int page into a float64 on the way back out.
	passage := domain.Passage{
		ID:        "p1",
		Content:   "EBITDA sasniedza 120 miljonus eiro.",
		Embedding: []float32{1, 0, 0},
		Metadata: services.NormalizeMetadata(map[string]any{
			"file_name": "Report.pdf",
			"page_no":   3,
		}),
	}
	require.NoError(t, store.InsertBatch(ctx, "reports", []domain.Passage{passage}))

	peeked, err := store.Peek(ctx, "reports", 1)
	require.NoError(t, err)
	require.Len(t, peeked, 1)
	assert.Equal(t, "Report.pdf", peeked[0].FileName())
	assert.Equal(t, "3", peeked[0].PageNo())

	found, err := store.Search(ctx, "reports", []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "3", found[0].Passage.PageNo())
}

func TestInsertBatch_CollectionsAreIsolated(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.InsertBatch(ctx, "reports_a", testPassages()[:1]))
	require.NoError(t, store.InsertBatch(ctx, "reports_b", testPassages()))

	countA, err := store.Count(ctx, "reports_a")
	require.NoError(t, err)
	countB, err := store.Count(ctx, "reports_b")
	require.NoError(t, err)
	assert.Equal(t, 1, countA)
	assert.Equal(t, 3, countB)
}

func TestInsertBatch_DuplicateIDRollsBackWholeBatch(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.InsertBatch(ctx, "reports", testPassages()[:1]))

	// Second batch collides on p1; nothing from it may land.
	err := store.InsertBatch(ctx, "reports", []domain.Passage{
		{ID: "p9", Content: "fresh", Embedding: []float32{1, 0, 0}},
		{ID: "p1", Content: "duplicate", Embedding: []float32{0, 1, 0}},
	})
	require.Error(t, err)

	count, err := store.Count(ctx, "reports")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSearch_OrdersBySimilarityDescending(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.InsertBatch(ctx, "reports", testPassages()))

	hits, err := store.Search(ctx, "reports", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "p1", hits[0].Passage.ID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.Equal(t, "p3", hits[1].Passage.ID)
	assert.Equal(t, "p2", hits[2].Passage.ID)
	assert.InDelta(t, 0.0, hits[2].Similarity, 1e-6)
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.InsertBatch(ctx, "reports", []domain.Passage{
		{ID: "first", Content: "a", Embedding: []float32{1, 0, 0}},
		{ID: "second", Content: "b", Embedding: []float32{1, 0, 0}},
	}))

	hits, err := store.Search(ctx, "reports", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "first", hits[0].Passage.ID)
	assert.Equal(t, "second", hits[1].Passage.ID)
}

func TestSearch_RespectsK(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.InsertBatch(ctx, "reports", testPassages()))

	hits, err := store.Search(ctx, "reports", []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "p1", hits[0].Passage.ID)
}

func TestSearch_EmptyCollection(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	hits, err := store.Search(context.Background(), "reports", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestPeek_ZeroLimit(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.InsertBatch(ctx, "reports", testPassages()))

	passages, err := store.Peek(ctx, "reports", 0)
	require.NoError(t, err)
	assert.Empty(t, passages)
}

func TestStore_SurvivesReopen(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "finsight-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)
	ctx := context.Background()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, store.InsertBatch(ctx, "reports", testPassages()))
	require.NoError(t, store.Close())

	reopened, err := NewStore(tempDir)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count(ctx, "reports")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	passages, err := reopened.Peek(ctx, "reports", 1)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Equal(t, []float32{1, 0, 0}, passages[0].Embedding)
}

func TestFloat32BlobRoundTrip(t *testing.T) {
	in := []float32{0.1, -2.5, 3e-7, 0}
	out := bytesToFloat32Slice(float32SliceToBytes(in))
	assert.Equal(t, in, out)

	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
