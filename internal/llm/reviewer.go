package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/core"
	"github.com/sevigo/code-council/internal/openrouter"
	"github.com/sevigo/code-council/internal/review"
)

// Reviewer runs a single chat-completion review. Errors never escape it:
// anything that survives the retry executor becomes an "ERROR: ..."
// content string in the returned ReviewResult.
type Reviewer struct {
	client  *openrouter.Client
	prompts *PromptManager
	cfg     *config.Config
}

// NewReviewer wires the reviewer from its collaborators.
func NewReviewer(client *openrouter.Client, prompts *PromptManager, cfg *config.Config) *Reviewer {
	return &Reviewer{client: client, prompts: prompts, cfg: cfg}
}

// Request describes one single-reviewer invocation.
type Request struct {
	Mode    core.Mode
	Context *review.Context
	Model   string // full model ID; empty means the configured default
	Stream  bool
	Out     io.Writer // streaming destination; defaults to stdout
}

// Review renders the prompt, issues the request, and returns a complete
// ReviewResult. Elapsed time is measured end to end and populated even on
// failure.
func (r *Reviewer) Review(ctx context.Context, req Request) core.ReviewResult {
	out := req.Out
	if out == nil {
		out = os.Stdout
	}

	model := req.Model
	if model == "" {
		model = r.cfg.Model
	}
	model = withOnlineSuffix(model, r.cfg.EnableWebSearch)

	start := time.Now()
	result := core.ReviewResult{Model: model}

	systemPrompt, err := r.prompts.Render(ReviewPromptKey(req.Mode), nil)
	if err != nil {
		result.Content = "ERROR: " + err.Error()
		result.Err = err.Error()
		result.ElapsedMS = time.Since(start).Milliseconds()
		return result
	}

	userMessage := review.Truncate(review.BuildUserMessage(req.Context, req.Mode), r.cfg.MaxContextChars)

	chatReq := openrouter.ChatRequest{
		Model: model,
		Messages: []openrouter.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		MaxOutputTokens: r.cfg.MaxOutputTokens,
		// Server-side prompt compression when the context overflows the
		// model's window.
		Transforms: []string{"middle-out"},
	}
	if r.cfg.EnableWebSearch && strings.Contains(model, ":online") {
		chatReq.Plugins = []openrouter.WebPlugin{{ID: "web", Engine: "exa"}}
	}
	if r.cfg.Reasoning != "none" {
		chatReq.Provider = &openrouter.ProviderOptions{RequireParameters: false}
		chatReq.Reasoning = &openrouter.Reasoning{Effort: r.cfg.Reasoning}
	}

	if req.Stream {
		content, err := r.client.CompleteStream(ctx, chatReq, out)
		fmt.Fprintln(out)
		result.ElapsedMS = time.Since(start).Milliseconds()
		if err != nil {
			result.Content = errorContent(err)
			result.Err = err.Error()
			return result
		}
		result.Content = content
		return result
	}

	resp, err := r.client.Complete(ctx, chatReq)
	result.ElapsedMS = time.Since(start).Milliseconds()
	if err != nil {
		result.Content = errorContent(err)
		result.Err = err.Error()
		return result
	}
	result.Content = openrouter.ExtractContent(resp)
	result.Tokens = &core.TokenUsage{
		Input:  resp.Usage.PromptTokens,
		Output: resp.Usage.CompletionTokens,
	}
	return result
}

// withOnlineSuffix appends the web-search model variant suffix unless the
// model already carries it or is a free-tier model.
func withOnlineSuffix(model string, webSearch bool) string {
	if !webSearch {
		return model
	}
	if strings.HasSuffix(model, ":online") || strings.Contains(model, ":free") {
		return model
	}
	return model + ":online"
}

// errorContent converts a network-layer failure into the user-facing
// "ERROR: ..." diagnostic, keeping the taxonomy distinguishable: timeout,
// HTTP failure with server detail, or unexpected.
func errorContent(err error) string {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "ERROR: Request timed out after retries. The model may be overloaded. Try again later."
	}
	var he *openrouter.HTTPError
	if errors.As(err, &he) {
		return fmt.Sprintf("ERROR: API request failed: %s", he.Error())
	}
	return fmt.Sprintf("ERROR: Unexpected error: %v", err)
}
