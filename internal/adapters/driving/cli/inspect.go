package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var inspectLimit int

// inspectPreviewLen bounds how much passage text one row shows.
const inspectPreviewLen = 120

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show indexed passages",
	Long:  `Prints the first passages of the collection with their metadata, for auditing what the index actually contains.`,
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().IntVarP(&inspectLimit, "limit", "n", 5, "maximum number of passages to show")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	passages, err := indexService.Peek(cmd.Context(), inspectLimit)
	if err != nil {
		return fmt.Errorf("reading collection: %w", err)
	}

	if len(passages) == 0 {
		cmd.Printf("Collection %q is empty.\n", currentSettings.Collection)
		return nil
	}

	for i, p := range passages {
		content := strings.Join(strings.Fields(p.Content), " ")
		if len([]rune(content)) > inspectPreviewLen {
			content = string([]rune(content)[:inspectPreviewLen]) + "..."
		}
		cmd.Printf("[%d] %s, page %s (dim %d)\n", i+1, p.FileName(), p.PageNo(), len(p.Embedding))
		cmd.Printf("    %s\n", content)
	}
	return nil
}
