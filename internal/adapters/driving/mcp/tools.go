package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
	"github.com/custodia-labs/finsight-cli/internal/logger"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed financial reports, in Latvian or English"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string           `json:"answer"`
	Reasoning string           `json:"reasoning,omitempty"`
	Citations []CitationOutput `json:"citations"`
}

// CitationOutput represents one cited source passage.
type CitationOutput struct {
	FileName string `json:"file_name"`
	PageNo   string `json:"page_no"`
	Preview  string `json:"preview"`
	Score    string `json:"score"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the query to match against indexed passages"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of passages to return (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single retrieved passage.
type SearchResultOutput struct {
	FileName   string  `json:"file_name"`
	PageNo     string  `json:"page_no"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the indexed financial reports, with citations",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Retrieve the passages most similar to a query, without answer synthesis",
	}, s.handleSearch)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Index != nil {
		if _, err := s.ports.Index.EnsureIndex(ctx); err != nil {
			logger.Error("Ask tool: preparing index: %v", err)
			return nil, AskOutput{}, err
		}
	}

	record, err := s.ports.Ask.AskOnce(ctx, input.Question)
	if err != nil {
		// Tool errors travel back over JSON-RPC; surface them on the
		// server side too.
		logger.Error("Ask tool failed: %v", err)
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:    record.Answer,
		Reasoning: record.Reasoning,
		Citations: make([]CitationOutput, len(record.Citations)),
	}
	for i, c := range record.Citations {
		output.Citations[i] = CitationOutput{
			FileName: c.FileName,
			PageNo:   c.PageNo,
			Preview:  c.Preview,
			Score:    c.Score,
		}
	}

	return nil, output, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 5
	}

	candidates, err := s.ports.Ask.Retrieve(ctx, input.Query, limit)
	if err != nil {
		logger.Error("Search tool failed: %v", err)
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(candidates)),
		Count:   len(candidates),
	}
	for i, c := range candidates {
		output.Results[i] = SearchResultOutput{
			FileName:   c.Passage.FileName(),
			PageNo:     c.Passage.PageNo(),
			Content:    preview(c.Passage.Content),
			Similarity: c.Similarity,
		}
	}

	return nil, output, nil
}

// preview bounds passage content in tool output.
func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= domain.CitationPreviewLimit {
		return content
	}
	return string(runes[:domain.CitationPreviewLimit]) + "..."
}
