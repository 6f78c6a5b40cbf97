package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/finsight-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/finsight-cli/internal/core/domain"
	"github.com/custodia-labs/finsight-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CollectionStore = (*Store)(nil)

// Store is a SQLite-backed collection store. One database file holds any
// number of named collections.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store under the specified data directory.
// If dataDir is empty, defaults to ~/.finsight/data/collections.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".finsight", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "collections.db")

	// WAL mode keeps readers unblocked while a build commits.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Count returns the number of passages in the named collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM passages WHERE collection = ?", collection,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting passages: %w", err)
	}
	return count, nil
}

// InsertBatch persists all passages in one transaction; either every
// passage lands or none do. Row order within the transaction preserves
// insertion order for tiebreaks.
func (s *Store) InsertBatch(ctx context.Context, collection string, passages []domain.Passage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO passages (collection, id, content, position, embedding, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range passages {
		metadataJSON, err := json.Marshal(p.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling passage metadata: %w", err)
		}

		embeddingBlob := float32SliceToBytes(p.Embedding)

		if _, err := stmt.ExecContext(ctx, collection, p.ID, p.Content,
			p.Position, embeddingBlob, string(metadataJSON)); err != nil {
			return fmt.Errorf("inserting passage: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Search returns the k nearest passages by cosine similarity, descending,
// ties broken by insertion order. The scan is brute-force over the
// collection's rows.
func (s *Store) Search(ctx context.Context, collection string, query []float32, k int) ([]driven.SimilarityHit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, position, embedding, metadata
		FROM passages WHERE collection = ?
		ORDER BY seq
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("querying passages: %w", err)
	}
	defer rows.Close()

	var hits []driven.SimilarityHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		passage, err := scanPassage(rows)
		if err != nil {
			return nil, err
		}
		hits = append(hits, driven.SimilarityHit{
			Passage:    *passage,
			Similarity: cosineSimilarity(query, passage.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating passages: %w", err)
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
func (s *Store) Peek(ctx context.Context, collection string, n int) ([]domain.Passage, error) {
	if n <= 0 {
		return []domain.Passage{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, position, embedding, metadata
		FROM passages WHERE collection = ?
		ORDER BY seq LIMIT ?
	`, collection, n)
	if err != nil {
		return nil, fmt.Errorf("querying passages: %w", err)
	}
	defer rows.Close()

	var passages []domain.Passage //nolint:prealloc // size unknown from query
	for rows.Next() {
		passage, err := scanPassage(rows)
		if err != nil {
			return nil, err
		}
		passages = append(passages, *passage)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating passages: %w", err)
	}

	return passages, nil
}

// scanPassage scans one passage row.
func scanPassage(rows *sql.Rows) (*domain.Passage, error) {
	var passage domain.Passage
	var embeddingBlob []byte
	var metadataJSON string

	if err := rows.Scan(&passage.ID, &passage.Content, &passage.Position,
		&embeddingBlob, &metadataJSON); err != nil {
		return nil, fmt.Errorf("scanning passage: %w", err)
	}

	passage.Embedding = bytesToFloat32Slice(embeddingBlob)

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &passage.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling passage metadata: %w", err)
		}
	}

	return &passage, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// cosineSimilarity computes cosine similarity between two vectors.
// Mismatched or zero-magnitude vectors score zero.
func cosineSimilarity(a, b []float32) float64 {
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
