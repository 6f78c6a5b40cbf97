// Package cli provides the cobra-based command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
	"github.com/custodia-labs/finsight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/finsight-cli/internal/core/ports/driving"
	"github.com/custodia-labs/finsight-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// verbose enables debug logging on stderr.
var verbose bool

// Services injected by the composition root before Execute.
var (
	askService      driving.AskService
	indexService    driving.IndexService
	llmService      driven.LLMService
	embedService    driven.EmbeddingService
	currentSettings = domain.DefaultSettings()
)

// Services groups everything the commands need.
type Services struct {
	Ask       driving.AskService
	Index     driving.IndexService
	LLM       driven.LLMService
	Embedding driven.EmbeddingService
	Settings  domain.Settings
}

// SetServices installs the wired services for the commands to use.
func SetServices(s Services) {
	askService = s.Ask
	indexService = s.Index
	llmService = s.LLM
	embedService = s.Embedding
	currentSettings = s.Settings
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "finsight",
	Short: "Question answering over financial report documents",
	Long: `Finsight answers questions about a local corpus of financial reports.

Documents are chunked, embedded and indexed into a local collection on
first use; questions are answered by retrieving the most relevant
passages and synthesizing a grounded answer with a local LLM, with the
sources cited. Questions can be asked in Latvian or English.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
