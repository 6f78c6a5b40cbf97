package tui

import (
	"github.com/custodia-labs/finsight-cli/internal/core/domain"
	"github.com/custodia-labs/finsight-cli/internal/core/ports/driving"
)

// indexReadyMsg reports the collection open/build that runs at startup.
type indexReadyMsg struct {
	stats driving.IndexStats
	err   error
}

// streamStartedMsg carries a freshly opened answer stream.
type streamStartedMsg struct {
	stream *driving.AskStream
	err    error
}

// streamTokenMsg is one token read off the answer stream.
type streamTokenMsg struct {
	token domain.StreamToken
}

// streamDoneMsg is the terminal result of one question.
type streamDoneMsg struct {
	result driving.AskResult
}
