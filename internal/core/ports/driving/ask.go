package driving

import (
	"context"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
)

// AskService answers natural-language questions over the indexed corpus.
type AskService interface {
	// Ask runs the full pipeline (expansion, retrieval, rerank, synthesis)
	// and streams the answer. Tokens arrive on Stream.Tokens in order;
	// the terminal record arrives on Stream.Result after Tokens closes.
	// Cancelling ctx abandons the stream: Tokens closes, Result carries
	// the context error, and no AnswerRecord is produced.
	Ask(ctx context.Context, query string) (*AskStream, error)

	// AskOnce runs the pipeline without incremental streaming and returns
	// the terminal record directly.
	AskOnce(ctx context.Context, query string) (domain.AnswerRecord, error)

	// Retrieve exposes the first-stage retrieval on its own, for health
	// checks and agent-facing search.
	Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievalCandidate, error)
}

// AskStream carries one question's streamed answer.
// Tokens is closed before Result delivers; Result always delivers exactly once.
type AskStream struct {
	// Tokens is the ordered, single-consumer token stream.
	Tokens <-chan domain.StreamToken

	// Result delivers the terminal record or error.
	Result <-chan AskResult
}

// AskResult is the terminal outcome of one streamed question.
type AskResult struct {
	// Record is the final structured answer. Valid only when Err is nil.
	Record domain.AnswerRecord

	// Err is non-nil when the pipeline failed or was cancelled.
	Err error
}
