package cli

import (
	"context"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
	"github.com/custodia-labs/finsight-cli/internal/core/ports/driving"
)

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	record     domain.AnswerRecord
	tokens     []domain.StreamToken
	candidates []domain.RetrievalCandidate
	err        error

	askedQuestions []string
}

func (m *mockAskService) Ask(_ context.Context, query string) (*driving.AskStream, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.askedQuestions = append(m.askedQuestions, query)

	tokens := make(chan domain.StreamToken, len(m.tokens)+1)
	for _, tok := range m.tokens {
		tokens <- tok
	}
	close(tokens)

	result := make(chan driving.AskResult, 1)
	result <- driving.AskResult{Record: m.record}
	return &driving.AskStream{Tokens: tokens, Result: result}, nil
}

func (m *mockAskService) AskOnce(_ context.Context, query string) (domain.AnswerRecord, error) {
	if m.err != nil {
		return domain.AnswerRecord{}, m.err
	}
	m.askedQuestions = append(m.askedQuestions, query)
	return m.record, nil
}

func (m *mockAskService) Retrieve(_ context.Context, _ string, _ int) ([]domain.RetrievalCandidate, error) {
	return m.candidates, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	stats    driving.IndexStats
	passages []domain.Passage
	err      error
}

func (m *mockIndexService) EnsureIndex(_ context.Context) (driving.IndexStats, error) {
	return m.stats, m.err
}

func (m *mockIndexService) Peek(_ context.Context, n int) ([]domain.Passage, error) {
	if m.err != nil {
		return nil, m.err
	}
	if n > 0 && len(m.passages) > n {
		return m.passages[:n], nil
	}
	return m.passages, nil
}

var _ driving.AskService = (*mockAskService)(nil)
var _ driving.IndexService = (*mockIndexService)(nil)

// setupTestServices installs mock services and returns a cleanup function
// restoring the previous wiring.
func setupTestServices(ask *mockAskService, index *mockIndexService) func() {
	oldAsk, oldIndex := askService, indexService
	askService = ask
	indexService = index
	return func() {
		askService = oldAsk
		indexService = oldIndex
	}
}
