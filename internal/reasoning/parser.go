// Package reasoning separates a streamed model response into a reasoning
// segment and a user-visible answer segment.
//
// Reasoning models wrap their deliberation in a delimiter pair such as
// <think>...</think>. The tag name varies by model family, casing is
// inconsistent, and the closing tag is sometimes missing entirely. The
// parser here works incrementally on arbitrary stream fragments, so a UI
// can render partial output long before EOF.
package reasoning

import (
	"strings"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
)

// State identifies the parser's position in the stream.
type State int

// Parser states.
const (
	// StateAccumulating is the initial state, before any opening delimiter.
	StateAccumulating State = iota

	// StateInReasoning is entered after an accepted opening delimiter.
	StateInReasoning

	// StateInAnswer is entered after the matching closing delimiter.
	StateInAnswer

	// StateDone is terminal, after Finish.
	StateDone
)

// acceptedTags are the delimiter names recognised as reasoning markers.
// Matching is case-insensitive. The first opener seen fixes which closing
// delimiter is awaited.
var acceptedTags = []string{"think", "thinking", "reasoning", "thought"}

// maxDelimLen is the longest possible delimiter, "</reasoning>".
const maxDelimLen = len("</reasoning>")

// Parser is an incremental reasoning-tag parser. It is not safe for
// concurrent use; one question gets one parser.
type Parser struct {
	state State

	// buf holds the unclassified tail of the stream. Kept short: only a
	// possible partial delimiter is held back between Feed calls.
	buf string

	// openTag is the accepted tag name that opened the reasoning block.
	openTag string

	preamble  strings.Builder
	reasoning strings.Builder
	answer    strings.Builder
}

// Result is the resolved segmentation of a complete stream.
type Result struct {
	// Answer is the trimmed, delimiter-free answer text.
	Answer string

	// Reasoning is the trimmed reasoning block; empty when the stream had
	// no delimiters or the pair never closed.
	Reasoning string
}

// NewParser returns a parser in the accumulating state.
func NewParser() *Parser {
	return &Parser{state: StateAccumulating}
}

// State returns the current parser state.
func (p *Parser) State() State {
	return p.state
}

// Feed consumes one stream fragment and returns the tokens it resolves.
// Token classification follows the current state; fragments that may end in
// a partial delimiter are held back until the next Feed or Finish.
func (p *Parser) Feed(fragment string) []domain.StreamToken {
	if p.state == StateDone || fragment == "" {
		return nil
	}

	p.buf += fragment
	var tokens []domain.StreamToken

	for {
		switch p.state {
		case StateAccumulating:
			tag, start, end := findOpener(p.buf)
			if tag == "" {
				hold := holdbackLen(p.buf, openerPrefixes())
				emit := p.buf[:len(p.buf)-hold]
				p.buf = p.buf[len(p.buf)-hold:]
				if emit != "" {
					p.preamble.WriteString(emit)
					tokens = append(tokens, domain.StreamToken{Kind: domain.TokenAnswer, Text: emit})
				}
				return tokens
			}
			if pre := p.buf[:start]; pre != "" {
				p.preamble.WriteString(pre)
				tokens = append(tokens, domain.StreamToken{Kind: domain.TokenAnswer, Text: pre})
			}
			p.openTag = tag
			p.buf = p.buf[end:]
			p.state = StateInReasoning

		case StateInReasoning:
			closer := "</" + p.openTag + ">"
			idx := indexFold(p.buf, closer)
			if idx < 0 {
				hold := holdbackLen(p.buf, []string{closer})
				emit := p.buf[:len(p.buf)-hold]
				p.buf = p.buf[len(p.buf)-hold:]
				if emit != "" {
					p.reasoning.WriteString(emit)
					tokens = append(tokens, domain.StreamToken{Kind: domain.TokenReasoning, Text: emit})
				}
				return tokens
			}
			if body := p.buf[:idx]; body != "" {
				p.reasoning.WriteString(body)
				tokens = append(tokens, domain.StreamToken{Kind: domain.TokenReasoning, Text: body})
			}
			p.buf = p.buf[idx+len(closer):]
			p.state = StateInAnswer

		case StateInAnswer:
			// No further delimiters are interpreted once the pair closed.
			if p.buf != "" {
				p.answer.WriteString(p.buf)
				tokens = append(tokens, domain.StreamToken{Kind: domain.TokenAnswer, Text: p.buf})
				p.buf = ""
			}
			return tokens

		default:
			return tokens
		}
	}
}

// Finish marks end of stream and resolves the segmentation.
//
// No delimiter at all: the whole stream is the answer, reasoning absent.
// An opener without its closer: pre-tag and post-tag text together form the
// answer (the orphan tag is stripped) and no reasoning is extracted.
func (p *Parser) Finish() Result {
	switch p.state {
	case StateAccumulating:
		p.preamble.WriteString(p.buf)

	case StateInReasoning:
		// Orphan opener. The held-back tail and everything scanned as
		// reasoning belong to the answer after all.
		p.answer.WriteString(p.reasoning.String())
		p.answer.WriteString(p.buf)
		p.reasoning.Reset()

	case StateInAnswer:
		p.answer.WriteString(p.buf)
	}
	p.buf = ""
	p.state = StateDone

	answer := strings.TrimSpace(p.preamble.String() + p.answer.String())
	return Result{
		Answer:    answer,
		Reasoning: strings.TrimSpace(p.reasoning.String()),
	}
}

// findOpener returns the earliest accepted opening delimiter in s, with its
// byte offsets. An empty tag means none was found.
func findOpener(s string) (tag string, start, end int) {
	start = -1
	for _, name := range acceptedTags {
		opener := "<" + name + ">"
		if idx := indexFold(s, opener); idx >= 0 && (start < 0 || idx < start) {
			tag = name
			start = idx
			end = idx + len(opener)
		}
	}
	if start < 0 {
		return "", 0, 0
	}
	return tag, start, end
}

// openerPrefixes lists the full opening delimiters used for holdback checks.
func openerPrefixes() []string {
	prefixes := make([]string, len(acceptedTags))
	for i, name := range acceptedTags {
		prefixes[i] = "<" + name + ">"
	}
	return prefixes
}

// holdbackLen returns how many trailing bytes of s could still grow into one
// of the given delimiters and must not be emitted yet.
func holdbackLen(s string, delims []string) int {
	from := len(s) - maxDelimLen
	if from < 0 {
		from = 0
	}
	for i := from; i < len(s); i++ {
		if s[i] != '<' {
			continue
		}
		tail := s[i:]
		for _, d := range delims {
			if len(tail) <= len(d) && asciiEqualFold(tail, d[:len(tail)]) {
				return len(s) - i
			}
		}
	}
	return 0
}

// indexFold is a case-insensitive strings.Index for ASCII delimiters.
// Byte-wise folding keeps offsets stable in the presence of multibyte text,
// which strings.ToLower does not guarantee.
func indexFold(s, substr string) int {
	n := len(substr)
	for i := 0; i+n <= len(s); i++ {
		if asciiEqualFold(s[i:i+n], substr) {
			return i
		}
	}
	return -1
}

// asciiEqualFold compares two equal-length strings ignoring ASCII letter case.
func asciiEqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
