package domain

// RefusalMessage is the fixed localized reply when no grounded answer exists.
// Latvian first, English second, matching the bilingual corpus.
const RefusalMessage = "Atvainojiet, atbilde nav atrodama pievienotajos dokumentos. / " +
	"Sorry, the answer is not found in the provided documents."

// CitationPreviewLimit bounds the content preview attached to a citation, in runes.
const CitationPreviewLimit = 600

// StreamTokenKind classifies an incremental fragment of model output.
type StreamTokenKind string

// Stream token kinds.
const (
	// TokenReasoning is a fragment inside the model's reasoning block.
	TokenReasoning StreamTokenKind = "reasoning"

	// TokenAnswer is a fragment of the user-visible answer.
	TokenAnswer StreamTokenKind = "answer"
)

// StreamToken is one incremental fragment of a streamed answer.
// Tokens are ordered and append-only within one question's lifetime.
type StreamToken struct {
	// Kind says whether the fragment belongs to reasoning or to the answer.
	Kind StreamTokenKind

	// Text is the fragment content. May be empty while the parser holds
	// back a possible partial delimiter.
	Text string
}

// Citation records one context passage that grounded an answer.
type Citation struct {
	// FileName is the source document name.
	FileName string `json:"file_name"`

	// PageNo is the page number, or "N/A" when unknown.
	PageNo string `json:"page_no"`

	// Preview is a bounded excerpt of the passage content.
	Preview string `json:"preview"`

	// Score is the reranker relevance score formatted to three decimals,
	// or "N/A" when no score was assigned.
	Score string `json:"score"`
}

// AnswerRecord is the final structured result of one question.
// It is created once by the answer synthesizer and immutable afterwards.
type AnswerRecord struct {
	// Answer is the user-visible answer text, trimmed and delimiter-free.
	// Never empty: degenerate answers are replaced by RefusalMessage.
	Answer string `json:"answer"`

	// Reasoning is the extracted reasoning block, or empty when the model
	// emitted none (or the delimiters were malformed).
	Reasoning string `json:"reasoning,omitempty"`

	// Citations lists the context passages in descending relevance order.
	Citations []Citation `json:"citations"`
}

// HasReasoning returns true when a reasoning block was extracted.
func (r AnswerRecord) HasReasoning() bool {
	return r.Reasoning != ""
}
