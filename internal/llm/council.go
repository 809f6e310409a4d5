package llm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/core"
	"github.com/sevigo/code-council/internal/openrouter"
	"github.com/sevigo/code-council/internal/review"
)

// Member is the static descriptor for one council seat. ModelSlot keys
// into the configured council models; Reasoning is an explicit capability
// flag rather than a guess from the model name.
type Member struct {
	Role         core.Role
	Name         string
	ModelSlot    string
	SearchEngine string
	Reasoning    bool
}

// Council seats in canonical order. Output is always sorted back into
// this order no matter which member finishes first.
var councilMembers = map[core.CouncilType][]Member{
	core.CouncilCode: {
		{Role: core.RoleCorrectness, Name: "Correctness Expert", ModelSlot: "correctness", SearchEngine: "native", Reasoning: true},
		{Role: core.RolePerformance, Name: "Performance Critic", ModelSlot: "performance", SearchEngine: "exa"},
		{Role: core.RoleSecurity, Name: "Security Analyst", ModelSlot: "security", SearchEngine: "exa"},
	},
	core.CouncilPlan: {
		{Role: core.RoleDesign, Name: "Design Expert", ModelSlot: "correctness", SearchEngine: "native", Reasoning: true},
		{Role: core.RoleScalability, Name: "Scalability Analyst", ModelSlot: "performance", SearchEngine: "exa"},
		{Role: core.RoleSecurity, Name: "Security Architect", ModelSlot: "security", SearchEngine: "exa"},
	},
}

// Members returns the seat list for a council type. Callers get a copy:
// the canonical tables stay immutable.
func Members(ct core.CouncilType) []Member {
	seats := councilMembers[ct]
	out := make([]Member, len(seats))
	copy(out, seats)
	return out
}

// Council fans a review out to three role-specialized reviewers in
// parallel and aggregates their results.
type Council struct {
	client   *openrouter.Client
	prompts  *PromptManager
	cfg      *config.Config
	logger   *slog.Logger
	progress io.Writer // diagnostic stream for per-member markers
}

// NewCouncil wires a council. Progress markers go to stderr; pass a
// different writer to capture them in tests.
func NewCouncil(client *openrouter.Client, prompts *PromptManager, cfg *config.Config, logger *slog.Logger, progress io.Writer) *Council {
	if progress == nil {
		progress = os.Stderr
	}
	return &Council{client: client, prompts: prompts, cfg: cfg, logger: logger, progress: progress}
}

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
)

// Run renders the shared prompt once, submits one request per member to a
// three-wide task group, and returns the results re-sorted into canonical
// role order. A member failure never cancels or delays its siblings: every
// seat always yields a ReviewResult, error-tagged if need be.
func (c *Council) Run(ctx context.Context, rctx *review.Context, mode core.Mode) core.CouncilResult {
	ct := core.CouncilTypeFor(mode)
	members := councilMembers[ct]

	userMessage := review.Truncate(review.BuildUserMessage(rctx, mode), c.cfg.MaxContextChars)

	fmt.Fprintln(c.progress, strings.Repeat("-", 50))
	fmt.Fprintln(c.progress, "Starting parallel review with:")
	for _, m := range members {
		fmt.Fprintf(c.progress, "  • %s (%s)\n", m.Name, shortModel(c.cfg.CouncilModels[m.ModelSlot]))
	}
	fmt.Fprintln(c.progress, strings.Repeat("-", 50))

	start := time.Now()

	var (
		mu        sync.Mutex
		results   = make([]core.ReviewResult, 0, len(members))
		completed int
	)

	g := new(errgroup.Group)
	g.SetLimit(len(members))
	for _, m := range members {
		g.Go(func() error {
			res := c.callMember(ctx, ct, m, userMessage)

			mark := okMark
			verb := "completed"
			if res.Failed() {
				mark = failMark
				verb = "FAILED"
			}

			// Collecting the result and printing its marker is one atomic
			// step: the progress writer is shared across workers.
			mu.Lock()
			completed++
			results = append(results, res)
			fmt.Fprintf(c.progress, "  [%d/%d] %s %s %s (%.1fs)\n",
				completed, len(members), mark, m.Name, verb, float64(res.ElapsedMS)/1000)
			mu.Unlock()
			return nil
		})
	}
	// Workers always return nil; failures are result values.
	_ = g.Wait()

	totalMS := time.Since(start).Milliseconds()
	fmt.Fprintln(c.progress, strings.Repeat("-", 50))
	fmt.Fprintf(c.progress, "Council complete in %.1fs\n", float64(totalMS)/1000)

	// Completion order must never leak into output order.
	order := make(map[core.Role]int, len(members))
	for i, m := range members {
		order[m.Role] = i
	}
	sort.SliceStable(results, func(i, j int) bool {
		return order[results[i].Role] < order[results[j].Role]
	})

	return core.CouncilResult{
		Reviews: results,
		Metadata: core.CouncilMetadata{
			TotalMS:     totalMS,
			CouncilType: ct,
		},
	}
}

// callMember issues one non-streaming review with the member's role
// prompt and model. Any surviving failure is folded into the result.
func (c *Council) callMember(ctx context.Context, ct core.CouncilType, m Member, userMessage string) core.ReviewResult {
	model := withOnlineSuffix(c.cfg.CouncilModels[m.ModelSlot], c.cfg.EnableWebSearch)

	result := core.ReviewResult{
		Role:  m.Role,
		Name:  m.Name,
		Model: model,
	}

	start := time.Now()

	systemPrompt, err := c.prompts.Render(CouncilPromptKey(ct, m.Role), nil)
	if err != nil {
		result.Content = "ERROR: " + err.Error()
		result.Err = err.Error()
		result.ElapsedMS = time.Since(start).Milliseconds()
		return result
	}

	chatReq := openrouter.ChatRequest{
		Model: model,
		Messages: []openrouter.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		MaxOutputTokens: c.cfg.MaxOutputTokens,
		Transforms:      []string{"middle-out"},
	}
	if c.cfg.EnableWebSearch {
		chatReq.Plugins = []openrouter.WebPlugin{{ID: "web", Engine: m.SearchEngine}}
	}
	if c.cfg.Reasoning != "none" && m.Reasoning {
		chatReq.Provider = &openrouter.ProviderOptions{RequireParameters: false}
		chatReq.Reasoning = &openrouter.Reasoning{Effort: c.cfg.Reasoning}
	}

	resp, err := c.client.Complete(ctx, chatReq)
	result.ElapsedMS = time.Since(start).Milliseconds()
	if err != nil {
		c.logger.Warn("council member failed", "role", m.Role, "model", model, "error", err)
		result.Content = fmt.Sprintf("ERROR: %v (after %d attempts)", err, c.cfg.MaxAttempts)
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

// shortModel trims the vendor prefix for progress display.
func shortModel(model string) string {
	if i := strings.LastIndex(model, "/"); i >= 0 {
		return model[i+1:]
	}
	return model
}
