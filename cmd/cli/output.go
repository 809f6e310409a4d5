package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
)

// renderMarkdown pretty-prints a finished review when stdout is a
// terminal; piped output stays raw so it can be post-processed.
func renderMarkdown(content string) string {
	content = stripMarkdownFence(content)

	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return content
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// stripMarkdownFence removes ```markdown ... ``` wrapping that some LLMs
// add around their output.
func stripMarkdownFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```markdown") && !strings.HasPrefix(trimmed, "```md") {
		return s
	}
	idx := strings.Index(trimmed, "\n")
	if idx < 0 {
		return s
	}
	inner := trimmed[idx+1:]
	if lastFence := strings.LastIndex(inner, "```"); lastFence >= 0 {
		inner = inner[:lastFence]
	}
	return strings.TrimSpace(inner)
}
