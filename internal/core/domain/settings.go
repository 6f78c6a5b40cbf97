package domain

import (
	"fmt"
	"time"
)

// Default pipeline parameters.
const (
	// DefaultCollection is the collection name queried when none is
	// configured. Bumping the name is the documented rebuild/migration path.
	DefaultCollection = "finreports_2025"

	// DefaultChunkSize is the target passage length in characters.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the overlap between consecutive passages.
	DefaultChunkOverlap = 200

	// DefaultRetrieveK is the first-stage candidate count per collection lookup.
	DefaultRetrieveK = 20

	// DefaultRerankK is the number of passages kept after reranking.
	DefaultRerankK = 4

	// DefaultRerankBatch is the judge batch size.
	DefaultRerankBatch = 8

	// DefaultMinAnswerRunes is the minimal answer length before the
	// refusal normalization replaces it.
	DefaultMinAnswerRunes = 2
)

// Settings is the explicit configuration object passed into every component
// constructor. There is no process-wide model or configuration singleton.
type Settings struct {
	// DataDir is where the collection database lives.
	DataDir string `toml:"data_dir"`

	// DocsDir is the directory of extracted document text.
	DocsDir string `toml:"docs_dir"`

	// Collection is the active collection name.
	Collection string `toml:"collection"`

	// ChunkSize is the passage target length in characters.
	ChunkSize int `toml:"chunk_size"`

	// ChunkOverlap is the overlap between consecutive passages.
	ChunkOverlap int `toml:"chunk_overlap"`

	// RetrieveK is the first-stage top-k per retrieval query.
	RetrieveK int `toml:"retrieve_k"`

	// RerankK is the second-stage top-k, strictly below RetrieveK.
	// Zero disables grounding entirely and forces the refusal answer.
	RerankK int `toml:"rerank_k"`

	// RerankBatch is the number of candidates scored per judge call.
	RerankBatch int `toml:"rerank_batch"`

	// HyDE enables hypothetical-answer query expansion.
	HyDE bool `toml:"hyde"`

	// MinAnswerRunes is the minimal trimmed answer length.
	MinAnswerRunes int `toml:"min_answer_runes"`

	// LLM configures the language model service.
	LLM ServiceSettings `toml:"llm"`

	// Embedding configures the embedding service.
	Embedding ServiceSettings `toml:"embedding"`
}

// ServiceSettings configures one AI service endpoint.
type ServiceSettings struct {
	// BaseURL is the service API base URL.
	BaseURL string `toml:"base_url"`

	// Model is the model name.
	Model string `toml:"model"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `toml:"timeout"`
}

// DefaultSettings returns settings with all pipeline defaults applied.
func DefaultSettings() Settings {
	return Settings{
		DocsDir:        "./docs",
		Collection:     DefaultCollection,
		ChunkSize:      DefaultChunkSize,
		ChunkOverlap:   DefaultChunkOverlap,
		RetrieveK:      DefaultRetrieveK,
		RerankK:        DefaultRerankK,
		RerankBatch:    DefaultRerankBatch,
		HyDE:           true,
		MinAnswerRunes: DefaultMinAnswerRunes,
		LLM: ServiceSettings{
			BaseURL: "http://localhost:11434",
			Model:   "deepseek-r1:70b",
			Timeout: 600 * time.Second,
		},
		Embedding: ServiceSettings{
			BaseURL: "http://localhost:11434",
			Model:   "bge-m3",
			Timeout: 30 * time.Second,
		},
	}
}

// Validate checks the pipeline invariants that are correctness properties.
func (s Settings) Validate() error {
	if s.Collection == "" {
		return fmt.Errorf("%w: collection name is empty", ErrInvalidInput)
	}
	if s.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", ErrInvalidInput)
	}
	if s.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk overlap must be non-negative", ErrInvalidInput)
	}
	if s.RetrieveK <= 0 {
		return fmt.Errorf("%w: retrieve_k must be positive", ErrInvalidInput)
	}
	if s.RerankK < 0 {
		return fmt.Errorf("%w: rerank_k must be non-negative", ErrInvalidInput)
	}
	if s.RerankK >= s.RetrieveK {
		return fmt.Errorf("%w: rerank_k must be less than retrieve_k", ErrInvalidInput)
	}
	if s.RerankBatch <= 0 {
		return fmt.Errorf("%w: rerank batch must be positive", ErrInvalidInput)
	}
	return nil
}
