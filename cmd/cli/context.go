package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/github"
	"github.com/sevigo/code-council/internal/logger"
)

var contextOut string

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Gather review context into a context file",
}

var contextPRCmd = &cobra.Command{
	Use:   "pr [pr-url]",
	Short: "Build a context file from a GitHub pull request",
	Long: `Fetch a pull request's metadata, diff, and changed-file contents from
GitHub and write them as a review context file.

Examples:
  council-cli context pr https://github.com/owner/repo/pull/123
  council-cli context pr --out pr-123.json https://github.com/owner/repo/pull/123 -t <token>`,
	Args: cobra.ExactArgs(1),
	RunE: runContextPR,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	contextPRCmd.Flags().StringVarP(&contextOut, "out", "o", "context.json", "Output path for the context file")
	contextCmd.AddCommand(contextPRCmd)
	rootCmd.AddCommand(contextCmd)
}

func runContextPR(cmd *cobra.Command, args []string) error {
	owner, repo, number, err := github.ParsePRURL(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, "text", nil)

	token := viper.GetString("GITHUB_TOKEN")
	if token == "" {
		warnColor.Fprintln(os.Stderr, "No GitHub token set; only public repositories will work.")
	}

	client := github.NewClient(cmd.Context(), token, log)

	titleColor.Fprintf(os.Stderr, "Gathering context for %s/%s#%d...\n", owner, repo, number)
	rctx, err := client.GatherPRContext(cmd.Context(), owner, repo, number)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(rctx, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode context: %w", err)
	}
	if err := os.WriteFile(contextOut, data, 0o600); err != nil {
		return fmt.Errorf("failed to write context file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Wrote %s (%d files, %d-line diff)\n",
		contextOut, len(rctx.FileContents)+len(rctx.TestFiles)+len(rctx.Documentation), countLines(rctx.Diff))
	return nil
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := 1
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
