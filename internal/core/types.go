// Package core defines the shared domain types used across the CLI,
// the reviewer layer, and the council orchestrator.
package core

import "strings"

// Mode identifies what kind of material is being reviewed.
type Mode string

const (
	ModePlan Mode = "plan"
	ModeCode Mode = "code"
	ModePR   Mode = "pr"
)

// ParseMode validates a --type flag value.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(s)) {
	case ModePlan:
		return ModePlan, true
	case ModeCode:
		return ModeCode, true
	case ModePR:
		return ModePR, true
	}
	return "", false
}

// CouncilType selects which fixed set of three reviewer roles runs.
// Code and PR reviews share the code council; plan reviews get their own.
type CouncilType string

const (
	CouncilCode CouncilType = "code"
	CouncilPlan CouncilType = "plan"
)

// CouncilTypeFor maps a review mode to its council type.
func CouncilTypeFor(mode Mode) CouncilType {
	if mode == ModePlan {
		return CouncilPlan
	}
	return CouncilCode
}

// Role is a reviewer specialization with its own system prompt.
type Role string

const (
	RoleCorrectness Role = "correctness"
	RolePerformance Role = "performance"
	RoleSecurity    Role = "security"
	RoleDesign      Role = "design"
	RoleScalability Role = "scalability"
)

// TokenUsage reports prompt and completion token counts for one call.
type TokenUsage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// ReviewResult is the outcome of a single reviewer call. Content always
// holds either the review text or an "ERROR: ..." diagnostic; errors never
// propagate past this type.
type ReviewResult struct {
	Role      Role        `json:"role,omitempty"`
	Name      string      `json:"name,omitempty"`
	Model     string      `json:"model"`
	Content   string      `json:"content"`
	ElapsedMS int64       `json:"elapsed_ms"`
	Tokens    *TokenUsage `json:"tokens,omitempty"`
	Err       string      `json:"error,omitempty"`
}

// Failed reports whether the call ended in an error rather than a review.
func (r ReviewResult) Failed() bool { return r.Err != "" }

// CouncilMetadata carries run-level timing for a council invocation.
type CouncilMetadata struct {
	TotalMS     int64       `json:"total_ms"`
	CouncilType CouncilType `json:"council_type"`
}

// CouncilResult aggregates the three member reviews in canonical role
// order. Len(Reviews) always equals the member count, even when members
// fail: a failed member contributes an error-tagged ReviewResult.
type CouncilResult struct {
	Reviews  []ReviewResult  `json:"reviews"`
	Metadata CouncilMetadata `json:"metadata"`
}
