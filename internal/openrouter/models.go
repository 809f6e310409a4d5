package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Keyword heuristics for classifying a model as a reasoning model. The
// catalog carries no capability flag, so the listing report guesses from
// the name and says so in its legend.
var (
	thinkingKeywords = []string{
		"thinking", "r1", "o1", "o3", "reasoner", "reason",
		"deepthink", "think", "cot",
	}
	nonThinkingKeywords = []string{
		"instruct", "chat", "fast", "turbo", "mini", "lite", "small",
	}
)

// ThinkingClass values for a catalog model.
const (
	ClassThinking = "THINKING"
	ClassStandard = "STANDARD"
	ClassUnknown  = "UNKNOWN"
)

// ModelPricing holds per-token prices as decimal strings, the way the
// catalog serves them.
type ModelPricing struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

// CreatedTime accepts the catalog's release timestamp in either of the
// shapes it has been observed to use: a unix epoch number or an RFC 3339
// string. The zero value means "unknown".
type CreatedTime struct {
	time.Time
}

func (t *CreatedTime) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		return nil
	}
	if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Time = time.Unix(epoch, 0).UTC()
		return nil
	}
	unquoted, err := strconv.Unquote(s)
	if err != nil {
		return nil // unknown shape, leave zero
	}
	if parsed, err := time.Parse(time.RFC3339, unquoted); err == nil {
		t.Time = parsed.UTC()
	}
	return nil
}

// Model is one entry in the OpenRouter catalog.
type Model struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	ContextLength int          `json:"context_length"`
	Created       CreatedTime  `json:"created"`
	Pricing       ModelPricing `json:"pricing"`
}

// Free reports whether both prompt and completion pricing are zero.
// Unparseable pricing is treated as not free.
func (m Model) Free() bool {
	prompt, err := parsePrice(m.Pricing.Prompt)
	if err != nil {
		return false
	}
	completion, err := parsePrice(m.Pricing.Completion)
	if err != nil {
		return false
	}
	return prompt == 0 && completion == 0
}

func parsePrice(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// ThinkingClass guesses whether the model does extended reasoning.
func (m Model) ThinkingClass() string {
	combined := strings.ToLower(m.ID + " " + m.Name)
	for _, kw := range thinkingKeywords {
		if strings.Contains(combined, kw) {
			return ClassThinking
		}
	}
	for _, kw := range nonThinkingKeywords {
		if strings.Contains(combined, kw) {
			return ClassStandard
		}
	}
	return ClassUnknown
}

// ListModels fetches the full model catalog. The listing report is a
// plain fetch: failures surface directly, no retry.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{Status: resp.StatusCode, Detail: readErrorDetail(resp.Body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var parsed struct {
		Data []Model `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unexpected catalog format: %w", err)
	}
	return parsed.Data, nil
}

// FreeModels filters the catalog down to zero-cost models and sorts them
// newest first; models without a release date go last.
func FreeModels(models []Model) []Model {
	var free []Model
	for _, m := range models {
		if m.Free() {
			free = append(free, m)
		}
	}
	sort.SliceStable(free, func(i, j int) bool {
		a, b := free[i].Created, free[j].Created
		switch {
		case a.IsZero() && b.IsZero():
			return false
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		}
		return a.After(b.Time)
	})
	return free
}
