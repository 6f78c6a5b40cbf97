package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var indexCheck bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or open the passage collection",
	Long: `Builds the passage collection from the documents directory.

A collection that already has passages is left untouched; change the
collection name in the configuration to index a new corpus revision.
Use --check to verify the AI services and the collection before asking.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexCheck, "check", false, "check service connectivity and collection health")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	if indexCheck {
		return runHealthCheck(cmd)
	}

	stats, err := indexService.EnsureIndex(cmd.Context())
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	if stats.Built {
		cmd.Printf("Indexed %d passages into collection %q.\n", stats.Passages, stats.Collection)
	} else {
		cmd.Printf("Collection %q already holds %d passages.\n", stats.Collection, stats.Passages)
	}
	return nil
}

// runHealthCheck pings the AI services and reports collection state.
func runHealthCheck(cmd *cobra.Command) error {
	ctx := cmd.Context()
	failed := false

	if llmService != nil {
		if err := llmService.Ping(ctx); err != nil {
			cmd.Printf("LLM (%s): UNREACHABLE: %v\n", llmService.ModelName(), err)
			failed = true
		} else {
			cmd.Printf("LLM (%s): ok\n", llmService.ModelName())
		}
	}

	if embedService != nil {
		if err := embedService.Ping(ctx); err != nil {
			cmd.Printf("Embedding (%s): UNREACHABLE: %v\n", embedService.ModelName(), err)
			failed = true
		} else {
			cmd.Printf("Embedding (%s): ok\n", embedService.ModelName())
		}
	}

	passages, err := indexService.Peek(ctx, 1)
	if err != nil {
		cmd.Printf("Collection %q: ERROR: %v\n", currentSettings.Collection, err)
		failed = true
	} else if len(passages) == 0 {
		cmd.Printf("Collection %q: empty (run 'finsight index' first)\n", currentSettings.Collection)
	} else {
		cmd.Printf("Collection %q: ok\n", currentSettings.Collection)
	}

	if failed {
		return errors.New("health check failed")
	}
	return nil
}
