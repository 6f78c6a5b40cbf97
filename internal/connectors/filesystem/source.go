// Package filesystem provides a document source reading extracted report
// text from a local directory.
//
// The corpus layout is one .txt or .md file per document, named after the
// original report file. An optional sidecar <name>.meta.json carries the
// raw extraction metadata, which the indexer later normalizes.
package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
	"github.com/custodia-labs/finsight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/finsight-cli/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// metaSuffix is the sidecar metadata file suffix.
const metaSuffix = ".meta.json"

// textExtensions are the file extensions treated as document text.
var textExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// Source loads documents from a directory of extracted text files.
type Source struct {
	dir string
}

// New creates a filesystem source over the given directory.
func New(dir string) *Source {
	return &Source{dir: dir}
}

// Load reads every document in the directory, in file name order. A missing
// directory is not an error; it is an empty corpus.
func (s *Source) Load(ctx context.Context) ([]domain.Document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("Documents directory %q does not exist", s.dir)
			return nil, nil
		}
		return nil, fmt.Errorf("reading documents directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if textExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var docs []domain.Document //nolint:prealloc // sidecar-only entries are skipped
	for _, name := range names {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		doc, err := s.loadOne(name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	logger.Debug("Loaded %d documents from %q", len(docs), s.dir)
	return docs, nil
}

// loadOne reads one document file and its optional metadata sidecar.
func (s *Source) loadOne(name string) (domain.Document, error) {
	content, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return domain.Document{}, fmt.Errorf("reading document %s: %w", name, err)
	}

	doc := domain.Document{
		FileName: docFileName(name),
		Content:  string(content),
		Metadata: map[string]any{},
	}

	metaPath := filepath.Join(s.dir, strings.TrimSuffix(name, filepath.Ext(name))+metaSuffix)
	raw, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return domain.Document{}, fmt.Errorf("reading metadata %s: %w", metaPath, err)
	}

	if err := json.Unmarshal(raw, &doc.Metadata); err != nil {
		return domain.Document{}, fmt.Errorf("parsing metadata %s: %w", metaPath, err)
	}
	return doc, nil
}

// docFileName derives the original document name. Extraction tools name
// the text file after the source report, so "Report.pdf.txt" and
// "Report.pdf.md" both refer to "Report.pdf"; a plain "notes.txt" keeps
// its own name.
func docFileName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if ext := filepath.Ext(base); ext != "" && !textExtensions[strings.ToLower(ext)] {
		return base
	}
	return name
}
