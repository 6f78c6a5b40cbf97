package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/finsight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/finsight-cli/internal/logger"
)

// hydePrompt asks the model for a hypothetical answer passage. The passage
// is never shown to the user; it only serves as an auxiliary retrieval
// query that sits closer to the indexed passages in embedding space.
const hydePrompt = `Write a short, plausible excerpt from a financial report that would answer the question below.
Write it as factual report prose, in the language of the question. Do not explain, do not add commentary.

Question: %s

Excerpt:`

// hydeMaxTokens bounds the hypothetical passage length.
const hydeMaxTokens = 200

// QueryExpander turns a user question into one or more retrieval queries.
// The original question always comes first; a hypothetical-answer expansion
// is appended when the LLM cooperates.
type QueryExpander struct {
	llm     driven.LLMService
	enabled bool
}

// NewQueryExpander creates a query expander. When enabled is false or llm
// is nil, Expand returns the original query only.
func NewQueryExpander(llm driven.LLMService, enabled bool) *QueryExpander {
	return &QueryExpander{llm: llm, enabled: enabled}
}

// Expand returns the ordered retrieval queries for a question. It never
// returns an empty slice and never fails: a missing, erroring or
// empty-handed LLM degrades the result to the original query alone.
func (e *QueryExpander) Expand(ctx context.Context, query string) []string {
	queries := []string{query}

	if !e.enabled || e.llm == nil {
		logger.Debug("Query expansion disabled, using original query only")
		return queries
	}

	hypothetical, err := e.llm.Generate(ctx, fmt.Sprintf(hydePrompt, query), driven.GenerateOptions{
		MaxTokens:   hydeMaxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		logger.Warn("Hypothetical-answer expansion failed, degrading to original query: %v", err)
		return queries
	}

	hypothetical = strings.TrimSpace(hypothetical)
	if hypothetical == "" {
		logger.Debug("Hypothetical-answer expansion returned nothing")
		return queries
	}

	logger.Debug("Hypothetical answer (%d chars): %.80s...", len(hypothetical), hypothetical)
	return append(queries, hypothetical)
}
