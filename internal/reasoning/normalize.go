package reasoning

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
)

// refusalPhrases are stock non-answers models produce when the context is
// empty or irrelevant. Compared case-insensitively after trimming trailing
// punctuation.
var refusalPhrases = []string{
	"i don't know",
	"i do not know",
	"i don't have enough information",
	"i do not have enough information",
	"not enough information",
	"nezinu",
	"nav pietiekamas informācijas",
	"man nav pietiekamas informācijas",
}

// NormalizeAnswer applies the presentation-layer refusal normalization.
// A degenerate final answer (empty, shorter than minRunes, or a stock
// refusal while no reasoning was captured) is replaced by the fixed
// localized refusal message. Everything else passes through trimmed.
func NormalizeAnswer(answer string, hasReasoning bool, minRunes int) string {
	answer = strings.TrimSpace(answer)
	if answer == "" || utf8.RuneCountInString(answer) < minRunes {
		return domain.RefusalMessage
	}
	if !hasReasoning && isRefusalPhrase(answer) {
		return domain.RefusalMessage
	}
	return answer
}

// isRefusalPhrase reports whether the answer equals one of the stock
// refusal phrases, ignoring case and trailing punctuation.
func isRefusalPhrase(answer string) bool {
	trimmed := strings.TrimRight(strings.TrimSpace(answer), ".!…")
	for _, phrase := range refusalPhrases {
		if strings.EqualFold(trimmed, phrase) {
			return true
		}
	}
	return false
}
