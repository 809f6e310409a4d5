// Package llm holds the reviewer and council logic: prompt selection,
// request construction, and the concurrent fan-out over council members.
package llm

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/sevigo/code-council/internal/core"
)

//go:embed prompts/*.prompt
var promptFiles embed.FS

// PromptKey identifies one embedded system prompt.
type PromptKey string

const (
	PlanReviewPrompt PromptKey = "review_plan"
	CodeReviewPrompt PromptKey = "review_code"
	PRReviewPrompt   PromptKey = "review_pr"
)

// ReviewPromptKey returns the single-reviewer system prompt for a mode.
func ReviewPromptKey(mode core.Mode) PromptKey {
	switch mode {
	case core.ModePlan:
		return PlanReviewPrompt
	case core.ModePR:
		return PRReviewPrompt
	default:
		return CodeReviewPrompt
	}
}

// CouncilPromptKey returns the role-specialized system prompt for a
// council member, e.g. "council_code_security".
func CouncilPromptKey(ct core.CouncilType, role core.Role) PromptKey {
	return PromptKey(fmt.Sprintf("council_%s_%s", ct, role))
}

// PromptManager loads and renders the embedded prompt templates. Prompts
// live in prompts/<key>.prompt and are parsed once at construction.
type PromptManager struct {
	prompts map[PromptKey]*template.Template
}

// NewPromptManager parses every embedded prompt file.
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{prompts: make(map[PromptKey]*template.Template)}

	files, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded prompts directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		fileName := file.Name()
		key := PromptKey(strings.TrimSuffix(fileName, filepath.Ext(fileName)))

		content, err := promptFiles.ReadFile("prompts/" + fileName)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded prompt file %s: %w", fileName, err)
		}

		tmpl, err := template.New(string(key)).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("could not parse prompt %s: %w", fileName, err)
		}
		pm.prompts[key] = tmpl
	}

	return pm, nil
}

// Render executes the prompt template for key.
func (pm *PromptManager) Render(key PromptKey, data any) (string, error) {
	tmpl, ok := pm.prompts[key]
	if !ok {
		return "", fmt.Errorf("no prompt found for key %q", key)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %q: %w", key, err)
	}
	return buf.String(), nil
}
