package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/logger"
	"github.com/sevigo/code-council/internal/openrouter"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List free models available on OpenRouter, newest first",
	RunE:  runModels,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The catalog endpoint needs no credentials.
	client := openrouter.NewClient(openrouter.ClientConfig{Timeout: cfg.RequestTimeout},
		logger.New(cfg.LogLevel, "text", nil))

	fmt.Println("Fetching models from OpenRouter...")
	fmt.Println()

	models, err := client.ListModels(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch models: %w\n\nTry browsing manually:\n  https://openrouter.ai/models?fmt=table&order=newest", err)
	}

	free := openrouter.FreeModels(models)
	if len(free) == 0 {
		fmt.Println("No free models found at the moment.")
		fmt.Println("\nCheck manually: https://openrouter.ai/models?fmt=table&order=newest")
		return nil
	}

	printModelTable(free)
	return nil
}

func printModelTable(free []openrouter.Model) {
	titleColor.Println("FREE MODELS ON OPENROUTER (newest first)")
	fmt.Println(strings.Repeat("-", 78))
	fmt.Println()
	fmt.Printf(" %-3s %-43s %-10s %-10s %-10s\n", "#", "Model ID", "Type", "Context", "Released")
	fmt.Printf(" %-3s %-43s %-10s %-10s %-10s\n", "--", strings.Repeat("-", 41), strings.Repeat("-", 8), strings.Repeat("-", 8), strings.Repeat("-", 10))

	for i, m := range free {
		displayID := displayModelID(m.ID)

		var tag string
		switch m.ThinkingClass() {
		case openrouter.ClassThinking:
			tag = "THINKING"
		case openrouter.ClassStandard:
			tag = "standard"
		default:
			tag = "-"
		}

		contextStr := "?"
		if m.ContextLength > 0 {
			contextStr = formatThousands(m.ContextLength)
		}

		released := "-"
		if !m.Created.IsZero() {
			released = m.Created.Format("2006-01-02")
		}

		fmt.Printf(" %-3d %-43s %-10s %-10s %-10s\n", i+1, displayID, tag, contextStr, released)
	}

	fmt.Println()
	fmt.Println(strings.Repeat("-", 78))
	fmt.Println()
	fmt.Println("LEGEND:")
	fmt.Println("   THINKING  = Extended reasoning (recommended for code reviews)")
	fmt.Println("   standard  = Regular model (faster)")
	fmt.Println("   -         = Unknown type / no date available")
	fmt.Println()
	fmt.Println("TO USE A FREE MODEL:")
	fmt.Println()
	fmt.Printf("   1. Edit: %s/config.json\n", config.Dir())
	fmt.Println(`   2. Set:  "free_model": "<model-id-from-above>"`)
	fmt.Println("   3. Run:  council-cli review --model free ...")
	fmt.Println()
	fmt.Println("Tip: Newer models (at top) are more likely to still be free!")
}

// displayModelID fits a model ID into the table's 41-column slot,
// cutting on rune boundaries.
func displayModelID(id string) string {
	runes := []rune(id)
	if len(runes) <= 41 {
		return id
	}
	return string(runes[:38]) + "..."
}

// formatThousands renders 200000 as "200,000".
func formatThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	rem := len(s) % 3
	if rem > 0 {
		b.WriteString(s[:rem])
	}
	for i := rem; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
