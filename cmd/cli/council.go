package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevigo/code-council/internal/core"
	"github.com/sevigo/code-council/internal/llm"
	"github.com/sevigo/code-council/internal/review"
)

var (
	councilType        string
	councilContextFile string
)

var councilCmd = &cobra.Command{
	Use:   "council",
	Short: "Run a three-reviewer council in parallel",
	Long: `Run three role-specialized reviewers in parallel over the same context
and print the aggregated result as JSON.

Code and PR reviews get a correctness/performance/security council; plan
reviews get design/scalability/security. One member failing does not stop
the others: the output always contains all three seats.

Examples:
  council-cli council --type code --context-file ctx.json
  council-cli council --type plan --context-file ctx.json`,
	RunE: runCouncil,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	councilCmd.Flags().StringVar(&councilType, "type", "", "Type of review: plan, code, or pr (required)")
	councilCmd.Flags().StringVar(&councilContextFile, "context-file", "", "Path to JSON file with review context (required)")
	_ = councilCmd.MarkFlagRequired("type")
	_ = councilCmd.MarkFlagRequired("context-file")
	rootCmd.AddCommand(councilCmd)
}

func runCouncil(cmd *cobra.Command, _ []string) error {
	mode, ok := core.ParseMode(councilType)
	if !ok {
		return fmt.Errorf("invalid review type %q (want plan, code, or pr)", councilType)
	}

	d, err := buildDeps()
	if err != nil {
		return err
	}

	rctx, err := review.Load(councilContextFile)
	if err != nil {
		return err
	}

	council := llm.NewCouncil(d.client, d.prompts, d.cfg, d.log, os.Stderr)
	result := council.Run(cmd.Context(), rctx, mode)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode council result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
