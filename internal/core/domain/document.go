package domain

import "strconv"

// MetadataKeyFileName is the normalized metadata key for the source file name.
const MetadataKeyFileName = "file_name"

// MetadataKeyPageNo is the normalized metadata key for the page number.
const MetadataKeyPageNo = "page_no"

// PageUnknown is the sentinel page value when no page number could be derived.
const PageUnknown = "N/A"

// FileNameUnknown is the fallback file name when the source did not supply one.
const FileNameUnknown = "Unknown"

// Document represents one extracted source document before chunking.
// It exists only during ingestion; once its passages are persisted the
// document itself is discarded.
type Document struct {
	// FileName is the raw source identifier (e.g. "Report_9M_2025.pdf").
	FileName string

	// Content is the full extracted text.
	Content string

	// Metadata contains arbitrary, possibly nested key-value pairs as
	// supplied by the extraction step. Normalised per passage at index time.
	Metadata map[string]any
}

// Passage is a bounded span of a document's content plus normalized
// metadata. It is the atomic retrieval unit and is immutable once persisted.
type Passage struct {
	// ID is the unique identifier for the passage.
	ID string

	// Content is the text content of this passage.
	Content string

	// Position is the ordinal position within the source document.
	Position int

	// Embedding is the vector representation for similarity search.
	Embedding []float32

	// Metadata contains only scalar values (string, int, float64, bool).
	// Always includes "file_name" and "page_no".
	Metadata map[string]any
}

// FileName returns the normalized source file name of the passage.
func (p Passage) FileName() string {
	if v, ok := p.Metadata[MetadataKeyFileName].(string); ok && v != "" {
		return v
	}
	return FileNameUnknown
}

// PageNo returns the normalized page number as a display string.
// Pages are normalized to an int or the "N/A" sentinel, but metadata
// that went through a JSON round trip comes back with float64 numbers.
func (p Passage) PageNo() string {
	switch v := p.Metadata[MetadataKeyPageNo].(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		return PageUnknown
	}
}
