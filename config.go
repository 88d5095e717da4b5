package conclave

import (
	"fmt"

	"github.com/viant/conclave/service/processor"
	"github.com/viant/conclave/service/provider"
	"github.com/viant/conclave/service/retriever"
	"github.com/viant/conclave/service/solver"
	"github.com/viant/structology/conv"
)

// Config is a serialisable representation of the engine configuration. It can
// be populated from JSON, YAML or a scenario file. The zero-value is useful –
// all nested fields inherit their package defaults.
type Config struct {
	// Provider names the backend client: anthropic, openai, mock or a
	// custom registration
	Provider string `json:"provider" yaml:"provider"`

	// Model overrides the provider's default model identifier
	Model string `json:"model" yaml:"model"`

	// Effort is the reasoning-effort hint passed to generation calls where
	// the provider supports it: low, medium or high
	Effort string `json:"effort" yaml:"effort"`

	// BaseURL overrides the provider endpoint, e.g. for a proxy
	BaseURL string `json:"baseURL" yaml:"baseURL"`

	// MaxTokens caps the generation length where the provider supports it
	MaxTokens int `json:"maxTokens" yaml:"maxTokens"`

	// MaxRetries is the per-subtask retry budget after the first attempt
	MaxRetries int `json:"maxRetries" yaml:"maxRetries"`

	// FanOut overrides the per-kind proposal count when positive
	FanOut int `json:"fanOut" yaml:"fanOut"`

	Solver    solver.Config    `json:"solver" yaml:"solver"`
	Retriever retriever.Config `json:"retriever" yaml:"retriever"`
	Processor processor.Config `json:"processor" yaml:"processor"`
	Secrets   SecretsConfig    `json:"secrets" yaml:"secrets"`

	// Suites names the tooling suites the judge runs, with per-suite
	// configuration passed to the registry factory
	Suites []SuiteConfig `json:"suites" yaml:"suites"`
}

// SecretsConfig locates the backend API key.
type SecretsConfig struct {
	// KeyURL points at an encrypted scy resource; empty falls back to the
	// provider's conventional env var
	KeyURL string `json:"keyURL" yaml:"keyURL"`
}

// SuiteConfig selects one tooling suite by its registry name.
type SuiteConfig struct {
	Name   string                 `json:"name" yaml:"name"`
	Config map[string]interface{} `json:"config,omitempty" yaml:"config,omitempty"`
}

// DefaultConfig returns a configuration that works without any external
// credentials: the mock provider, default retry budget and the schema
// tooling suite.
func DefaultConfig() *Config {
	return &Config{
		Provider:   "mock",
		MaxRetries: 2,
		Solver:     solver.DefaultConfig(),
		Retriever:  retriever.DefaultConfig(),
		Processor:  processor.DefaultConfig(),
		Suites:     []SuiteConfig{{Name: "schema"}},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	switch c.Effort {
	case "", provider.EffortLow, provider.EffortMedium, provider.EffortHigh:
	default:
		return fmt.Errorf("effort must be one of low, medium, high")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("maxRetries must be >= 0")
	}
	if c.FanOut < 0 {
		return fmt.Errorf("fanOut must be >= 0")
	}
	if c.Processor.WorkerCount < 0 {
		return fmt.Errorf("processor.workerCount must be >= 0")
	}
	for i, suite := range c.Suites {
		if suite.Name == "" {
			return fmt.Errorf("suites[%d].name is required", i)
		}
	}
	return nil
}

// Apply overlays scenario-style overrides onto the configuration. Keys follow
// the Config field names (provider, maxRetries, fanOut, …); unknown keys are
// ignored.
func (c *Config) Apply(values map[string]interface{}) error {
	if len(values) == 0 {
		return nil
	}
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	converter := conv.NewConverter(options)
	if err := converter.Convert(values, c); err != nil {
		return fmt.Errorf("failed to apply config overrides: %w", err)
	}
	return nil
}
