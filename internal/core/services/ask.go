package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
	"github.com/custodia-labs/finsight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/finsight-cli/internal/core/ports/driving"
	"github.com/custodia-labs/finsight-cli/internal/logger"
	"github.com/custodia-labs/finsight-cli/internal/reasoning"
)

// Ensure AnswerService implements the interface.
var _ driving.AskService = (*AnswerService)(nil)

// groundingPrompt embeds the ranked passages and the question. The model
// is told to stay inside the context, to delimit its deliberation, and to
// answer in the question's language.
const groundingPrompt = `You are a strategic intelligence analyst. You provide expert analysis based on financial reports.
Context information is below. Answer the question using only the context provided.
If the answer is not in the context, state that you do not have enough information.
Put your internal reasoning between <think> and </think>, then write the final answer.
Respond in the language the user uses (Latvian or English).
---------------------
%s
---------------------
Question: %s
Answer:`

// tokenBuffer decouples the producer from a slow consumer without
// unbounded memory.
const tokenBuffer = 64

// AnswerService runs the full question pipeline: expansion, retrieval,
// reranking and streaming synthesis, terminating in one AnswerRecord.
type AnswerService struct {
	settings  domain.Settings
	expander  *QueryExpander
	retriever *Retriever
	reranker  *Reranker
	llm       driven.LLMService
}

// NewAnswerService wires the pipeline stages together.
func NewAnswerService(
	settings domain.Settings,
	expander *QueryExpander,
	retriever *Retriever,
	reranker *Reranker,
	llm driven.LLMService,
) *AnswerService {
	return &AnswerService{
		settings:  settings,
		expander:  expander,
		retriever: retriever,
		reranker:  reranker,
		llm:       llm,
	}
}

// Ask runs the pipeline and streams the answer. The returned stream's
// Tokens channel closes before Result delivers exactly once. Cancelling
// ctx abandons the question: no AnswerRecord is produced and the shared
// collection store is untouched.
func (s *AnswerService) Ask(ctx context.Context, query string) (*driving.AskStream, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	tokens := make(chan domain.StreamToken, tokenBuffer)
	result := make(chan driving.AskResult, 1)

	go s.run(ctx, query, tokens, result)

	return &driving.AskStream{Tokens: tokens, Result: result}, nil
}

// AskOnce runs the pipeline without incremental consumption.
func (s *AnswerService) AskOnce(ctx context.Context, query string) (domain.AnswerRecord, error) {
	stream, err := s.Ask(ctx, query)
	if err != nil {
		return domain.AnswerRecord{}, err
	}
	for range stream.Tokens {
		// Drain; the terminal record carries the assembled text.
	}
	res := <-stream.Result
	return res.Record, res.Err
}

// Retrieve exposes first-stage retrieval for health checks and search.
func (s *AnswerService) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievalCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	return s.retriever.RetrieveTopK(ctx, []string{query}, k)
}

// run executes one question end to end. It owns both channels: tokens is
// closed before the single result is sent.
func (s *AnswerService) run(ctx context.Context, query string, tokens chan<- domain.StreamToken, result chan<- driving.AskResult) {
	record, err := s.answer(ctx, query, tokens)
	close(tokens)
	result <- driving.AskResult{Record: record, Err: err}
}

func (s *AnswerService) answer(ctx context.Context, query string, tokens chan<- domain.StreamToken) (domain.AnswerRecord, error) {
	logger.Section("Answer Pipeline")
	logger.Debug("Question: %q", query)

	queries := s.expander.Expand(ctx, query)

	candidates, err := s.retriever.Retrieve(ctx, queries)
	if err != nil {
		return domain.AnswerRecord{}, fmt.Errorf("retrieve: %w", err)
	}

	ranked, err := s.reranker.Rerank(ctx, query, candidates)
	if err != nil {
		return domain.AnswerRecord{}, fmt.Errorf("rerank: %w", err)
	}

	if len(ranked) == 0 {
		logger.Info("No grounding passages, returning refusal")
		record := domain.AnswerRecord{
			Answer:    domain.RefusalMessage,
			Citations: []domain.Citation{},
		}
		s.send(ctx, tokens, domain.StreamToken{Kind: domain.TokenAnswer, Text: record.Answer})
		return record, nil
	}

	prompt := s.buildPrompt(query, ranked)
	stream, err := s.llm.GenerateStream(ctx, prompt, driven.GenerateOptions{
		Temperature: 0.1,
		NumCtx:      4096,
	})
	if err != nil {
		return domain.AnswerRecord{}, fmt.Errorf("synthesize: %w", err)
	}

	parser := reasoning.NewParser()
	for chunk := range stream {
		if chunk.Err != nil {
			return domain.AnswerRecord{}, fmt.Errorf("synthesize stream: %w", chunk.Err)
		}
		for _, tok := range parser.Feed(chunk.Text) {
			if !s.send(ctx, tokens, tok) {
				return domain.AnswerRecord{}, ctx.Err()
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return domain.AnswerRecord{}, err
	}

	res := parser.Finish()
	record := domain.AnswerRecord{
		Answer:    reasoning.NormalizeAnswer(res.Answer, res.Reasoning != "", s.settings.MinAnswerRunes),
		Reasoning: res.Reasoning,
		Citations: buildCitations(ranked),
	}
	logger.Debug("Answer: %d chars, reasoning: %d chars, citations: %d",
		len(record.Answer), len(record.Reasoning), len(record.Citations))
	return record, nil
}

// send delivers one token unless the question was abandoned.
func (s *AnswerService) send(ctx context.Context, tokens chan<- domain.StreamToken, tok domain.StreamToken) bool {
	select {
	case tokens <- tok:
		return true
	case <-ctx.Done():
		return false
	}
}

// buildPrompt lays out the ranked passages as numbered context blocks.
func (s *AnswerService) buildPrompt(query string, ranked []domain.RankedPassage) string {
	var sb strings.Builder
	for i, rp := range ranked {
		fmt.Fprintf(&sb, "[Source %d: %s, page %s]\n%s\n\n",
			i+1, rp.Passage.FileName(), rp.Passage.PageNo(), rp.Passage.Content)
	}
	return fmt.Sprintf(groundingPrompt, strings.TrimRight(sb.String(), "\n"), query)
}

// buildCitations creates one citation per context passage, in the ranked
// (descending relevance) order.
func buildCitations(ranked []domain.RankedPassage) []domain.Citation {
	citations := make([]domain.Citation, len(ranked))
	for i, rp := range ranked {
		score := "N/A"
		if rp.Scored {
			score = fmt.Sprintf("%.3f", rp.Score)
		}
		citations[i] = domain.Citation{
			FileName: rp.Passage.FileName(),
			PageNo:   rp.Passage.PageNo(),
			Preview:  preview(rp.Passage.Content, domain.CitationPreviewLimit),
			Score:    score,
		}
	}
	return citations
}

// preview truncates content to limit runes, marking the cut.
func preview(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "..."
}
