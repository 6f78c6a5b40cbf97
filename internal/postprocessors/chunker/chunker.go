// Package chunker splits extracted document text into overlapping passages.
package chunker

import (
	"github.com/google/uuid"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
)

// Splitter derives passages from document content using a fixed target
// length with overlap between consecutive passages, so context spanning a
// passage boundary survives retrieval. Exact boundaries are policy, not a
// correctness property.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the target passage length in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive passages in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: domain.DefaultChunkSize,
		overlap:   domain.DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// Split cuts the document content into passages. Each passage carries a
// fresh ID, its ordinal position, and a copy of the document's raw
// metadata with the file name added; metadata normalization happens at
// index time, not here. Empty content produces no passages.
//
// Lengths count runes, not bytes, so multibyte text never splits inside a
// character.
func (s *Splitter) Split(doc domain.Document) []domain.Passage {
	if doc.Content == "" {
		return nil
	}

	content := []rune(doc.Content)
	contentLen := len(content)

	step := s.chunkSize - s.overlap
	if step <= 0 {
		step = s.chunkSize
	}

	passages := make([]domain.Passage, 0, contentLen/step+1)
	position := 0

	for start := 0; start < contentLen; start += step {
		end := start + s.chunkSize
		if end > contentLen {
			end = contentLen
		}

		passages = append(passages, domain.Passage{
			ID:       uuid.New().String(),
			Content:  string(content[start:end]),
			Position: position,
			Metadata: passageMetadata(doc),
		})
		position++

		if end == contentLen {
			break
		}
	}

	return passages
}

// passageMetadata copies the document metadata and stamps the file name.
func passageMetadata(doc domain.Document) map[string]any {
	md := make(map[string]any, len(doc.Metadata)+1)
	for k, v := range doc.Metadata {
		md[k] = v
	}
	if doc.FileName != "" {
		md[domain.MetadataKeyFileName] = doc.FileName
	}
	return md
}
