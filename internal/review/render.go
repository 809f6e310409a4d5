package review

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sevigo/code-council/internal/core"
)

// TruncationMarker is appended whenever the rendered prompt is cut to fit
// the configured context ceiling.
const TruncationMarker = "\n\n[... truncated ...]"

// maxExchangeChars caps each quoted conversation exchange.
const maxExchangeChars = 500

// BuildUserMessage renders the context into the user prompt for the given
// review mode. Section order is fixed; absent fields contribute nothing,
// not even their headers. The function is pure: same inputs, same output.
func BuildUserMessage(ctx *Context, mode core.Mode) string {
	var b strings.Builder

	// Developer intent first: it frames everything that follows.
	if !ctx.ConversationContext.empty() {
		cc := ctx.ConversationContext
		b.WriteString("## Developer Intent\n\n")
		if cc.OriginalRequest != "" {
			fmt.Fprintf(&b, "**Original Request:** %s\n\n", cc.OriginalRequest)
		}
		if cc.ApproachNotes != "" {
			fmt.Fprintf(&b, "**Approach Notes:** %s\n\n", cc.ApproachNotes)
		}
		if len(cc.RelevantExchanges) > 0 {
			b.WriteString("**Relevant Discussion:**\n")
			for _, msg := range cc.RelevantExchanges {
				label := "Agent"
				if msg.Role == "user" {
					label = "User"
				}
				content := truncateRunes(msg.Content, maxExchangeChars)
				fmt.Fprintf(&b, "- **%s:** %s\n", label, content)
			}
			b.WriteString("\n")
		}
		if cc.PreviousReviewFindings != "" {
			fmt.Fprintf(&b, "**Prior Review Notes:** %s\n\n", cc.PreviousReviewFindings)
		}
		b.WriteString("---\n\n")
	}

	if mode == core.ModePlan {
		b.WriteString("## Plan to Review\n")
		if ctx.PlanContent != "" {
			b.WriteString(ctx.PlanContent)
		} else {
			b.WriteString("No plan content provided")
		}
		b.WriteString("\n\n")
	}

	if mode == core.ModePR && ctx.PRMetadata != nil {
		pr := ctx.PRMetadata
		b.WriteString("## Pull Request Information\n")
		fmt.Fprintf(&b, "**PR #%d**: %s\n", pr.Number, pr.Title)
		fmt.Fprintf(&b, "**Author**: %s\n", pr.Author)
		fmt.Fprintf(&b, "**Branch**: %s → %s\n", orUnknown(pr.HeadBranch), orUnknown(pr.BaseBranch))
		fmt.Fprintf(&b, "**Changes**: +%d / -%d\n\n", pr.Additions, pr.Deletions)
		if pr.Body != "" {
			b.WriteString("### PR Description\n")
			b.WriteString(pr.Body)
			b.WriteString("\n\n")
		}
	}

	if ctx.Diff != "" {
		b.WriteString("## Code Changes (Diff)\n```diff\n")
		b.WriteString(ctx.Diff)
		b.WriteString("\n```\n\n")
	}

	writeFileSection(&b, "## Full File Contents\n", ctx.FileContents)

	// Documentation is prose, not code: no fences.
	if len(ctx.Documentation) > 0 {
		b.WriteString("## Relevant Documentation\n")
		for _, path := range sortedKeys(ctx.Documentation) {
			fmt.Fprintf(&b, "### %s\n%s\n\n", path, ctx.Documentation[path])
		}
	}

	writeFileSection(&b, "## Related Test Files\n", ctx.TestFiles)
	writeFileSection(&b, "## Cross-File Dependencies\n", ctx.DependentFiles)

	return b.String()
}

// Truncate caps the prompt at max characters, appending the truncation
// marker when anything was cut.
func Truncate(s string, max int) string {
	cut := truncateRunes(s, max)
	if cut == s {
		return s
	}
	return cut + TruncationMarker
}

// truncateRunes cuts s to at most max characters. Counting runes rather
// than bytes keeps multi-byte content intact instead of splitting it
// mid-rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func writeFileSection(b *strings.Builder, header string, files map[string]string) {
	if len(files) == 0 {
		return
	}
	b.WriteString(header)
	for _, path := range sortedKeys(files) {
		fmt.Fprintf(b, "### %s\n```\n%s\n```\n\n", path, files[path])
	}
}

// sortedKeys keeps map-backed sections deterministic across runs.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
