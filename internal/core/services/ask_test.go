package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finsight-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/finsight-cli/internal/core/domain"
	"github.com/custodia-labs/finsight-cli/internal/core/ports/driving"
)

// reportPassages is a small corpus from one annual report: pages 3, 5
// and 5 again, all matching the default query embedding.
func reportPassages() []domain.Passage {
	meta := func(page string) map[string]any {
		return map[string]any{
			domain.MetadataKeyFileName: "Report.pdf",
			domain.MetadataKeyPageNo:   page,
		}
	}
	return []domain.Passage{
		{ID: "p1", Content: "segment overview", Embedding: []float32{1, 0, 0}, Metadata: meta("3")},
		{ID: "p2", Content: "revenue breakdown", Embedding: []float32{1, 0, 0}, Metadata: meta("5")},
		{ID: "p3", Content: "dividend policy", Embedding: []float32{1, 0, 0}, Metadata: meta("5")},
	}
}

// newAskService wires a full pipeline over an in-memory collection with
// query expansion off, so the only LLM traffic is the judge and synthesis.
func newAskService(t *testing.T, passages []domain.Passage, judge, synth *mockLLM) *AnswerService {
	t.Helper()

	settings := domain.DefaultSettings()
	settings.Collection = "test"

	store := memory.NewCollectionStore()
	if len(passages) > 0 {
		seedCollection(t, store, settings.Collection, passages)
	}

	return NewAnswerService(
		settings,
		NewQueryExpander(nil, false),
		NewRetriever(store, &mockEmbedder{}, settings.Collection, settings.RetrieveK),
		NewReranker(judge, settings.RerankK, settings.RerankBatch),
		synth,
	)
}

// collect drains a stream, returning tokens grouped by kind plus the result.
func collect(t *testing.T, stream *driving.AskStream) (reasoning, answer string, res driving.AskResult) {
	t.Helper()
	var rb, ab strings.Builder
	for tok := range stream.Tokens {
		switch tok.Kind {
		case domain.TokenReasoning:
			rb.WriteString(tok.Text)
		case domain.TokenAnswer:
			ab.WriteString(tok.Text)
		}
	}
	return rb.String(), ab.String(), <-stream.Result
}

func TestAsk_StreamsReasoningAndAnswerWithCitations(t *testing.T) {
	judge := scoringLLM(map[string]int{
		"segment overview": 7, "revenue breakdown": 9, "dividend policy": 4,
	})
	synth := &mockLLM{streamFragments: []string{
		"<thi", "nk>Skatos avotus", " par peļņu.</think>", "Peļņa pieauga", " par 12%.",
	}}
	svc := newAskService(t, reportPassages(), judge, synth)

	stream, err := svc.Ask(context.Background(), "Par cik pieauga peļņa?")
	require.NoError(t, err)

	reasoningText, answerText, res := collect(t, stream)

	require.NoError(t, res.Err)
	assert.Equal(t, "Skatos avotus par peļņu.", strings.TrimSpace(reasoningText))
	assert.Equal(t, "Peļņa pieauga par 12%.", strings.TrimSpace(answerText))

	record := res.Record
	assert.Equal(t, "Peļņa pieauga par 12%.", record.Answer)
	assert.Equal(t, "Skatos avotus par peļņu.", record.Reasoning)
	assert.True(t, record.HasReasoning())

	// Citations in reranked order: page 5 appears twice, page 3 once.
	require.Len(t, record.Citations, 3)
	assert.Equal(t, domain.Citation{FileName: "Report.pdf", PageNo: "5", Preview: "revenue breakdown", Score: "9.000"}, record.Citations[0])
	assert.Equal(t, domain.Citation{FileName: "Report.pdf", PageNo: "3", Preview: "segment overview", Score: "7.000"}, record.Citations[1])
	assert.Equal(t, domain.Citation{FileName: "Report.pdf", PageNo: "5", Preview: "dividend policy", Score: "4.000"}, record.Citations[2])
}

func TestAsk_PromptCarriesRankedSources(t *testing.T) {
	judge := scoringLLM(map[string]int{
		"segment overview": 2, "revenue breakdown": 9, "dividend policy": 1,
	})
	synth := &mockLLM{streamFragments: []string{"ok"}}
	svc := newAskService(t, reportPassages(), judge, synth)

	_, err := svc.AskOnce(context.Background(), "What drove revenue?")
	require.NoError(t, err)

	require.Equal(t, 1, synth.streamCalls())
	prompt := synth.streamPrompts[0]
	assert.Contains(t, prompt, "[Source 1: Report.pdf, page 5]\nrevenue breakdown")
	assert.Contains(t, prompt, "Question: What drove revenue?")
	assert.Less(t, strings.Index(prompt, "revenue breakdown"), strings.Index(prompt, "segment overview"))
}

func TestAsk_EmptyRetrieval_RefusesWithoutSynthesis(t *testing.T) {
	judge := &mockLLM{}
	synth := &mockLLM{streamFragments: []string{"must not appear"}}
	svc := newAskService(t, nil, judge, synth)

	stream, err := svc.Ask(context.Background(), "Kas ir uzņēmuma EBITDA?")
	require.NoError(t, err)

	_, answerText, res := collect(t, stream)

	require.NoError(t, res.Err)
	assert.Equal(t, domain.RefusalMessage, res.Record.Answer)
	assert.Equal(t, domain.RefusalMessage, answerText)
	assert.Empty(t, res.Record.Reasoning)
	assert.NotNil(t, res.Record.Citations)
	assert.Empty(t, res.Record.Citations)
	assert.Zero(t, judge.generateCalls())
	assert.Zero(t, synth.streamCalls())
}

func TestAsk_ShortAnswerNormalizedToRefusal(t *testing.T) {
	judge := scoringLLM(map[string]int{
		"segment overview": 5, "revenue breakdown": 5, "dividend policy": 5,
	})
	synth := &mockLLM{streamFragments: []string{"<think>nothing useful here</think> x"}}
	svc := newAskService(t, reportPassages(), judge, synth)

	record, err := svc.AskOnce(context.Background(), "Cik lieli bija zaudējumi?")

	require.NoError(t, err)
	assert.Equal(t, domain.RefusalMessage, record.Answer)
	assert.Equal(t, "nothing useful here", record.Reasoning)
	assert.Len(t, record.Citations, 3, "grounding context still gets cited")
}

func TestAsk_FailedJudge_CitationsWithoutScores(t *testing.T) {
	judge := &mockLLM{generateFn: func(_ string) (string, error) {
		return "", errors.New("judge down")
	}}
	synth := &mockLLM{streamFragments: []string{"The dividend was unchanged."}}
	svc := newAskService(t, reportPassages(), judge, synth)

	record, err := svc.AskOnce(context.Background(), "Dividends?")

	require.NoError(t, err)
	require.Len(t, record.Citations, 3)
	for _, c := range record.Citations {
		assert.Equal(t, "N/A", c.Score)
	}
}

func TestAsk_StreamErrorIsTerminal(t *testing.T) {
	judge := scoringLLM(map[string]int{
		"segment overview": 5, "revenue breakdown": 5, "dividend policy": 5,
	})
	streamErr := errors.New("model evicted")
	synth := &mockLLM{streamFragments: []string{"partial "}, streamErr: streamErr}
	svc := newAskService(t, reportPassages(), judge, synth)

	stream, err := svc.Ask(context.Background(), "Anything?")
	require.NoError(t, err)

	_, _, res := collect(t, stream)

	require.ErrorIs(t, res.Err, streamErr)
	assert.Empty(t, res.Record.Answer)
	assert.Empty(t, res.Record.Citations)
}

func TestAsk_CancelledContext_NoRecord(t *testing.T) {
	judge := scoringLLM(map[string]int{
		"segment overview": 5, "revenue breakdown": 5, "dividend policy": 5,
	})
	synth := &mockLLM{streamFragments: []string{"never ", "finishes"}}
	svc := newAskService(t, reportPassages(), judge, synth)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stream, err := svc.Ask(ctx, "Anything?")
	require.NoError(t, err)

	_, _, res := collect(t, stream)

	require.ErrorIs(t, res.Err, context.Canceled)
	assert.Empty(t, res.Record.Answer)
}

func TestAsk_EmptyQueryRejected(t *testing.T) {
	svc := newAskService(t, nil, &mockLLM{}, &mockLLM{})

	_, err := svc.Ask(context.Background(), "   ")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAskOnce_ReturnsAssembledRecord(t *testing.T) {
	judge := scoringLLM(map[string]int{
		"segment overview": 1, "revenue breakdown": 8, "dividend policy": 2,
	})
	synth := &mockLLM{streamFragments: []string{"<think>check p2</think>", "Revenue grew 12%."}}
	svc := newAskService(t, reportPassages(), judge, synth)

	record, err := svc.AskOnce(context.Background(), "How much did revenue grow?")

	require.NoError(t, err)
	assert.Equal(t, "Revenue grew 12%.", record.Answer)
	assert.Equal(t, "check p2", record.Reasoning)
	assert.Equal(t, "5", record.Citations[0].PageNo)
}
