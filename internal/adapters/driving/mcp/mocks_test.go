package mcp

import (
	"context"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
	"github.com/custodia-labs/finsight-cli/internal/core/ports/driving"
)

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	record     domain.AnswerRecord
	candidates []domain.RetrievalCandidate
	err        error

	askedQuestions []string
	retrievedK     int
}

func (m *mockAskService) Ask(_ context.Context, query string) (*driving.AskStream, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.askedQuestions = append(m.askedQuestions, query)

	tokens := make(chan domain.StreamToken)
	result := make(chan driving.AskResult, 1)
	close(tokens)
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

func (m *mockAskService) Retrieve(_ context.Context, _ string, k int) ([]domain.RetrievalCandidate, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.retrievedK = k
	return m.candidates, nil
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	stats       driving.IndexStats
	passages    []domain.Passage
	err         error
	ensureCalls int
}

func (m *mockIndexService) EnsureIndex(_ context.Context) (driving.IndexStats, error) {
	m.ensureCalls++
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
