package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
	"github.com/custodia-labs/finsight-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	mu sync.Mutex

	// generateFn computes the reply for a Generate call.
	generateFn func(prompt string) (string, error)

	// streamFragments are emitted in order by GenerateStream.
	streamFragments []string
	streamErr       error

	generatePrompts []string
	streamPrompts   []string
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.generatePrompts = append(m.generatePrompts, prompt)
	fn := m.generateFn
	m.mu.Unlock()
	if fn == nil {
		return "", nil
	}
	return fn(prompt)
}

func (m *mockLLM) GenerateStream(ctx context.Context, prompt string, _ driven.GenerateOptions) (<-chan driven.StreamChunk, error) {
	m.mu.Lock()
	m.streamPrompts = append(m.streamPrompts, prompt)
	fragments := m.streamFragments
	streamErr := m.streamErr
	m.mu.Unlock()

	ch := make(chan driven.StreamChunk)
	go func() {
		defer close(ch)
		for _, f := range fragments {
			select {
			case ch <- driven.StreamChunk{Text: f}:
			case <-ctx.Done():
				return
			}
		}
		if streamErr != nil {
			select {
			case ch <- driven.StreamChunk{Err: streamErr}:
			case <-ctx.Done():
			}
		}
	}()
	return ch, nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }

func (m *mockLLM) Ping(_ context.Context) error { return nil }

func (m *mockLLM) Close() error { return nil }

func (m *mockLLM) generateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.generatePrompts)
}

func (m *mockLLM) streamCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.streamPrompts)
}

// mockEmbedder implements driven.EmbeddingService with deterministic
// per-text vectors.
type mockEmbedder struct {
	// vectors maps text to its embedding; missing texts get fallback.
	vectors  map[string][]float32
	fallback []float32
	embedErr error
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	if m.fallback != nil {
		return m.fallback, nil
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return 3 }

func (m *mockEmbedder) ModelName() string { return "mock-embed" }

func (m *mockEmbedder) Ping(_ context.Context) error { return nil }

func (m *mockEmbedder) Close() error { return nil }

// mockSource implements driven.DocumentSource.
type mockSource struct {
	docs    []domain.Document
	loadErr error
}

func (m *mockSource) Load(_ context.Context) ([]domain.Document, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.docs, nil
}
