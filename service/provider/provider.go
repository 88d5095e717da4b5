package provider

import (
	"context"
)

// Reasoning effort hints accepted by backends that expose the knob. Backends
// that do not support it silently ignore the value.
const (
	EffortLow    = "low"
	EffortMedium = "medium"
	EffortHigh   = "high"
)

// GenerateRequest describes one text-generation call. The core treats the
// backend as an opaque capability – everything model-specific lives behind
// the Client implementations.
type GenerateRequest struct {
	// Role is the system framing instruction (planner, solver, judge ...)
	Role string `json:"role,omitempty"`

	// Prompt is the task-specific instruction
	Prompt string `json:"prompt"`

	// Temperature is the sampling temperature; zero means provider default
	Temperature float64 `json:"temperature,omitempty"`

	// Effort is the optional reasoning-effort hint (low/medium/high)
	Effort string `json:"effort,omitempty"`

	// RequireSearch asks the backend to invoke its live-search tool, when it
	// has one, and to attribute sources in the response
	RequireSearch bool `json:"requireSearch,omitempty"`

	// MaxTokens caps the response length; zero means provider default
	MaxTokens int `json:"maxTokens,omitempty"`
}

// GenerateResponse carries the generated text.
type GenerateResponse struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

// Client is the backend text-generation capability. Implementations must be
// safe for concurrent use – the solver fans out k generation calls at once.
type Client interface {
	Generate(ctx context.Context, request *GenerateRequest) (*GenerateResponse, error)

	// Name identifies the provider (anthropic, openai, mock)
	Name() string

	// Model identifies the configured model
	Model() string
}
