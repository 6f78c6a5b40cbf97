package driven

import (
	"context"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
)

// DocumentSource supplies extracted documents for ingestion.
// Format conversion happens upstream; the source only hands over
// (file name, extracted text, raw metadata) per document.
type DocumentSource interface {
	// Load returns all available documents. An empty corpus returns an
	// empty slice, not an error.
	Load(ctx context.Context) ([]domain.Document, error)
}
