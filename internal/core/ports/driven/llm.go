package driven

import "context"

// LLMService provides language model operations for the answer pipeline.
// It serves three callers: hypothetical-answer expansion, relevance judging,
// and final answer synthesis. Timeouts surface as ordinary errors on the
// specific call, never as a crash.
//
// Implementations may include:
//   - Ollama (local models, the default)
//   - Any OpenAI-compatible inference server
type LLMService interface {
	// Generate produces a full text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// GenerateStream produces an incremental token stream for a prompt.
	// The returned channel is closed when generation finishes, fails, or
	// the context is cancelled; a failure is delivered as the final chunk's
	// Err. The channel has a single consumer and must be drained.
	GenerateStream(ctx context.Context, prompt string, opts GenerateOptions) (<-chan StreamChunk, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// NumCtx bounds the model context window, limiting KV-cache memory.
	NumCtx int

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}

// StreamChunk is one fragment of a streamed completion.
type StreamChunk struct {
	// Text is the fragment content.
	Text string

	// Err is non-nil on the terminal chunk when generation failed.
	Err error
}
