package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
)

var benchCmd = &cobra.Command{
	Use:   "bench [dataset.csv]",
	Short: "Run the pipeline against a golden question set",
	Long: `Runs every question of a golden dataset through the full pipeline and
reports per-question timing plus a keyword-containment score.

The dataset is a CSV file with a header row and two columns: the
question and the expected answer fragment. A question whose expected
fragment is empty counts as a refusal probe: it passes when the
pipeline refuses.`,
	Args: cobra.ExactArgs(1),
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	if askService == nil || indexService == nil {
		return errors.New("ask service not configured")
	}

	questions, err := loadBenchDataset(args[0])
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return fmt.Errorf("dataset %s has no questions", args[0])
	}

	ctx := cmd.Context()
	if _, err := indexService.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("preparing index: %w", err)
	}

	passed := 0
	for i, q := range questions {
		start := time.Now()
		record, err := askService.AskOnce(ctx, q.question)
		elapsed := time.Since(start).Round(10 * time.Millisecond)
		if err != nil {
			cmd.Printf("[%d/%d] ERROR (%s): %v\n", i+1, len(questions), elapsed, err)
			continue
		}

		ok := benchPass(record, q.expected)
		if ok {
			passed++
		}
		status := "FAIL"
		if ok {
			status = "pass"
		}
		cmd.Printf("[%d/%d] %s (%s) %s\n", i+1, len(questions), status, elapsed, q.question)
	}

	cmd.Printf("\n%d/%d passed\n", passed, len(questions))
	if passed < len(questions) {
		return fmt.Errorf("%d of %d questions failed", len(questions)-passed, len(questions))
	}
	return nil
}

type benchQuestion struct {
	question string
	expected string
}

// loadBenchDataset reads the CSV dataset, skipping the header row.
func loadBenchDataset(path string) ([]benchQuestion, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing dataset: %w", err)
	}

	var questions []benchQuestion
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		questions = append(questions, benchQuestion{
			question: strings.TrimSpace(row[0]),
			expected: strings.TrimSpace(row[1]),
		})
	}
	return questions, nil
}

// benchPass decides whether one answer satisfies its expectation.
func benchPass(record domain.AnswerRecord, expected string) bool {
	if expected == "" {
		return record.Answer == domain.RefusalMessage
	}
	return strings.Contains(strings.ToLower(record.Answer), strings.ToLower(expected))
}
