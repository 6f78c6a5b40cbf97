package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
)

var (
	askJSON          bool
	askShowReasoning bool
)

// Muted style for the streamed reasoning block.
var reasoningStyle = lipgloss.NewStyle().Faint(true)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indexed reports",
	Long: `Answers a question using the indexed report passages.

The index is built on first use; subsequent runs reuse it. The answer
streams as it is generated, followed by the source passages it was
grounded on. Use --reasoning to also stream the model's deliberation.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the full answer record as JSON")
	askCmd.Flags().BoolVar(&askShowReasoning, "reasoning", false, "show the model's reasoning stream")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil || indexService == nil {
		return errors.New("ask service not configured")
	}

	ctx := cmd.Context()

	if _, err := indexService.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("preparing index: %w", err)
	}

	if askJSON {
		record, err := askService.AskOnce(ctx, args[0])
		if err != nil {
			return fmt.Errorf("answering: %w", err)
		}
		return outputRecordJSON(cmd, record)
	}

	stream, err := askService.Ask(ctx, args[0])
	if err != nil {
		return fmt.Errorf("answering: %w", err)
	}

	inReasoning := false
	for tok := range stream.Tokens {
		switch tok.Kind {
		case domain.TokenReasoning:
			if !askShowReasoning {
				continue
			}
			inReasoning = true
			cmd.Print(reasoningStyle.Render(tok.Text))
		case domain.TokenAnswer:
			if inReasoning {
				// Separate the reasoning block from the answer.
				cmd.Println()
				cmd.Println()
				inReasoning = false
			}
			cmd.Print(tok.Text)
		}
	}
	cmd.Println()

	res := <-stream.Result
	if res.Err != nil {
		return fmt.Errorf("answering: %w", res.Err)
	}

	printCitations(cmd, res.Record.Citations)
	return nil
}

func outputRecordJSON(cmd *cobra.Command, record domain.AnswerRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printCitations(cmd *cobra.Command, citations []domain.Citation) {
	if len(citations) == 0 {
		return
	}

	cmd.Println()
	cmd.Println("Sources:")
	for i, c := range citations {
		cmd.Printf("  [%d] %s, page %s (score %s)\n", i+1, c.FileName, c.PageNo, c.Score)
	}
}
