package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevigo/code-council/internal/core"
	"github.com/sevigo/code-council/internal/llm"
	"github.com/sevigo/code-council/internal/review"
)

var (
	reviewType  string
	contextFile string
	modelArg    string
	noStream    bool
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Run a single-reviewer code, plan, or PR review",
	Long: `Run a single-reviewer review over a context file.

The context file is JSON holding the diff, file contents, documentation,
and optional developer-intent notes. By default the review is streamed to
stdout token by token; --no-stream waits for the full response instead.

Examples:
  council-cli review --type code --context-file ctx.json
  council-cli review --type plan --context-file ctx.json --model gpt
  council-cli review --type pr --context-file ctx.json --no-stream`,
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().StringVar(&reviewType, "type", "", "Type of review: plan, code, or pr (required)")
	reviewCmd.Flags().StringVar(&contextFile, "context-file", "", "Path to JSON file with review context (required)")
	reviewCmd.Flags().StringVarP(&modelArg, "model", "m", "", "Model shortcut (gpt, kimi, deepseek, free) or full model ID")
	reviewCmd.Flags().BoolVar(&noStream, "no-stream", false, "Disable streaming (wait for full response)")
	_ = reviewCmd.MarkFlagRequired("type")
	_ = reviewCmd.MarkFlagRequired("context-file")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, _ []string) error {
	mode, ok := core.ParseMode(reviewType)
	if !ok {
		return fmt.Errorf("invalid review type %q (want plan, code, or pr)", reviewType)
	}

	d, err := buildDeps()
	if err != nil {
		return err
	}

	rctx, err := review.Load(contextFile)
	if err != nil {
		return err
	}

	model := d.cfg.ResolveModel(modelArg)
	if modelArg != "" {
		dimColor.Fprintf(os.Stderr, "Using model: %s\n", model)
	}

	reviewer := llm.NewReviewer(d.client, d.prompts, d.cfg)
	result := reviewer.Review(cmd.Context(), llm.Request{
		Mode:    mode,
		Context: rctx,
		Model:   model,
		Stream:  !noStream,
		Out:     os.Stdout,
	})

	// The streaming path already printed every token.
	if noStream {
		fmt.Println(renderMarkdown(result.Content))
	}

	dimColor.Fprintf(os.Stderr, "\nReview finished in %.1fs\n", float64(result.ElapsedMS)/1000)
	return nil
}
