// Package review defines the review context record and renders it into
// the prompt sent to reviewers.
package review

import (
	"encoding/json"
	"fmt"
	"os"
)

// Exchange is one message from the developer conversation.
type Exchange struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationContext captures developer intent gathered before the review.
type ConversationContext struct {
	OriginalRequest        string     `json:"original_request,omitempty"`
	ApproachNotes          string     `json:"approach_notes,omitempty"`
	RelevantExchanges      []Exchange `json:"relevant_exchanges,omitempty"`
	PreviousReviewFindings string     `json:"previous_review_findings,omitempty"`
}

func (c *ConversationContext) empty() bool {
	return c == nil || (c.OriginalRequest == "" && c.ApproachNotes == "" &&
		len(c.RelevantExchanges) == 0 && c.PreviousReviewFindings == "")
}

// PRMetadata describes the pull request under review.
type PRMetadata struct {
	Number     int    `json:"number"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	HeadBranch string `json:"head_branch"`
	BaseBranch string `json:"base_branch"`
	Additions  int    `json:"additions"`
	Deletions  int    `json:"deletions"`
	Body       string `json:"body,omitempty"`
}

// Context is the full input to a review. Every field is optional: an
// absent field simply omits its section from the rendered prompt. The
// record is built once by the caller and read-only from then on.
type Context struct {
	ConversationContext *ConversationContext `json:"conversation_context,omitempty"`
	Diff                string               `json:"diff,omitempty"`
	PlanContent         string               `json:"plan_content,omitempty"`
	PRMetadata          *PRMetadata          `json:"pr_metadata,omitempty"`
	FileContents        map[string]string    `json:"file_contents,omitempty"`
	Documentation       map[string]string    `json:"documentation,omitempty"`
	TestFiles           map[string]string    `json:"test_files,omitempty"`
	DependentFiles      map[string]string    `json:"dependent_files,omitempty"`
}

// Load reads and parses a context file. Both failure modes are fatal,
// user-facing errors: the CLI exits 1 without touching the network.
func Load(path string) (*Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("context file not found: %s", path)
	}
	var ctx Context
	if err := json.Unmarshal(data, &ctx); err != nil {
		return nil, fmt.Errorf("invalid JSON in context file %s: %w", path, err)
	}
	return &ctx, nil
}
