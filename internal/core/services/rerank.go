package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
	"github.com/custodia-labs/finsight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/finsight-cli/internal/logger"
)

// judgePrompt asks the relevance judge to score one batch of candidates.
// One line per passage keeps parsing trivial and scores per-candidate, so
// batch boundaries cannot change the outcome.
const judgePrompt = `You are a relevance judge. Score how well each passage answers the question.
Use an integer from 0 (irrelevant) to 10 (directly answers it).
Output exactly one line per passage in the form "index: score". No other text.

Question: %s

%s`

// judgeContentLimit truncates passage content in the judge prompt, in runes.
const judgeContentLimit = 800

// scoreLine matches one "index: score" judge output line.
var scoreLine = regexp.MustCompile(`(?m)^\s*(\d+)\s*[:.)]\s*(\d+(?:\.\d+)?)\s*$`)

// Reranker re-scores retrieval candidates against the original question
// using an LLM judge and keeps the highest-precision subset.
type Reranker struct {
	llm       driven.LLMService
	topK      int
	batchSize int
}

// NewReranker creates a reranker keeping the top-k candidates, judging
// batchSize candidates per LLM call.
func NewReranker(llm driven.LLMService, topK, batchSize int) *Reranker {
	if batchSize <= 0 {
		batchSize = domain.DefaultRerankBatch
	}
	return &Reranker{llm: llm, topK: topK, batchSize: batchSize}
}

// Rerank scores the candidates against the original query and returns the
// top-k by judge score, descending, ties broken by retrieval rank.
//
// An empty candidate set returns empty without invoking the judge, as does
// a configured top-k of zero (the refusal mechanism). A failing judge
// batch falls back to the retrieval similarity for its candidates so the
// ordering degrades instead of the query failing.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []domain.RetrievalCandidate) ([]domain.RankedPassage, error) {
	if len(candidates) == 0 || r.topK == 0 {
		logger.Debug("Rerank short-circuit: %d candidates, top-k %d", len(candidates), r.topK)
		return []domain.RankedPassage{}, nil
	}
	if r.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	ranked := make([]domain.RankedPassage, 0, len(candidates))
	for start := 0; start < len(candidates); start += r.batchSize {
		end := start + r.batchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		ranked = append(ranked, r.judgeBatch(ctx, query, candidates[start:end])...)
	}

	// Judge score descending; retrieval rank is the stable tiebreak.
	order := make(map[string]int, len(candidates))
	for _, c := range candidates {
		order[c.Passage.ID] = c.Rank
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return order[ranked[i].Passage.ID] < order[ranked[j].Passage.ID]
	})

	if r.topK > 0 && len(ranked) > r.topK {
		ranked = ranked[:r.topK]
	}
	logger.Info("Reranked to %d passages", len(ranked))
	return ranked, nil
}

// judgeBatch scores one batch, falling back to retrieval similarity for
// candidates the judge failed to score.
func (r *Reranker) judgeBatch(ctx context.Context, query string, batch []domain.RetrievalCandidate) []domain.RankedPassage {
	var sb strings.Builder
	for i, c := range batch {
		content := c.Passage.Content
		if runes := []rune(content); len(runes) > judgeContentLimit {
			content = string(runes[:judgeContentLimit])
		}
		fmt.Fprintf(&sb, "Passage %d:\n%s\n\n", i+1, content)
	}

	scores := map[int]float64{}
	reply, err := r.llm.Generate(ctx, fmt.Sprintf(judgePrompt, query, sb.String()), driven.GenerateOptions{
		MaxTokens:   16 * len(batch),
		Temperature: 0,
	})
	if err != nil {
		logger.Warn("Relevance judge failed for batch of %d, keeping retrieval order: %v", len(batch), err)
	} else {
		scores = parseJudgeScores(reply, len(batch))
	}

	out := make([]domain.RankedPassage, len(batch))
	for i, c := range batch {
		if score, ok := scores[i+1]; ok {
			out[i] = domain.RankedPassage{Passage: c.Passage, Score: score, Scored: true}
			continue
		}
		// Similarity lives in [0,1], below any judged score >= 1, so
		// unjudged candidates sink rather than jump the queue.
		out[i] = domain.RankedPassage{Passage: c.Passage, Score: c.Similarity, Scored: false}
	}
	return out
}

// parseJudgeScores extracts "index: score" lines, ignoring anything the
// model added around them. Out-of-range indices are dropped.
func parseJudgeScores(reply string, batchLen int) map[int]float64 {
	scores := make(map[int]float64, batchLen)
	for _, m := range scoreLine.FindAllStringSubmatch(reply, -1) {
		idx, err := strconv.Atoi(m[1])
		if err != nil || idx < 1 || idx > batchLen {
			continue
		}
		score, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		scores[idx] = score
	}
	return scores
}
