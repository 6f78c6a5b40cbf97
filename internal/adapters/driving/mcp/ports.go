package mcp

import (
	"github.com/custodia-labs/finsight-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ask answers questions over the indexed corpus.
	Ask driving.AskService

	// Index opens or builds the collection. Optional: when set, the ask
	// tool ensures the index exists before answering.
	Index driving.IndexService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
