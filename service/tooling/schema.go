package tooling

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/viant/conclave/model"
	"github.com/viant/conclave/model/evidence"
	"github.com/viant/conclave/service/tooling/patch"
)

// SchemaConfig customises the default schema suite.
type SchemaConfig struct {
	// MinTextLength is the minimum acceptable artifact payload length
	MinTextLength int `json:"minTextLength" yaml:"minTextLength"`
}

// DefaultSchemaConfig returns the standard schema suite knobs.
func DefaultSchemaConfig() SchemaConfig {
	return SchemaConfig{MinTextLength: 20}
}

// Schema is the default tooling suite: deterministic structural checks over
// the candidate artifact. Research artifacts must carry citations, coding
// artifacts with diff fences must parse as unified diffs.
type Schema struct {
	config SchemaConfig
}

// NewSchema creates the default schema suite.
func NewSchema(config SchemaConfig) *Schema {
	if config.MinTextLength <= 0 {
		config.MinTextLength = DefaultSchemaConfig().MinTextLength
	}
	return &Schema{config: config}
}

// Name implements Suite.
func (s *Schema) Name() string { return "schema" }

// Evaluate implements Suite.
func (s *Schema) Evaluate(_ context.Context, subtask *model.Subtask, artifact *model.Artifact) ([]model.TestResult, error) {
	if artifact == nil {
		return nil, fmt.Errorf("artifact is nil")
	}
	text := strings.TrimSpace(artifact.Text)
	results := []model.TestResult{
		{
			Name:   "text-present",
			Passed: text != "",
		},
		{
			Name:   "text-minimum-length",
			Passed: len(text) >= s.config.MinTextLength,
			Detail: fmt.Sprintf("%d of %d chars", len(text), s.config.MinTextLength),
		},
		{
			Name:   "no-template-markers",
			Passed: !strings.Contains(text, "${") && !strings.Contains(text, "{{"),
		},
	}

	if subtask != nil && subtask.Kind == model.KindResearch {
		results = append(results, model.TestResult{
			Name:   "citations-present",
			Passed: len(artifact.Citations) > 0,
		})
	}
	results = append(results, s.checkCitationURLs(artifact))

	if subtask != nil && subtask.Kind == model.KindCoding {
		results = append(results, s.checkDiffBlocks(text))
	}
	return results, nil
}

// checkCitationURLs verifies every external citation parses as an http(s)
// URL; the internal-knowledge marker is exempt.
func (s *Schema) checkCitationURLs(artifact *model.Artifact) model.TestResult {
	result := model.TestResult{Name: "citation-urls-well-formed", Passed: true}
	for _, citation := range artifact.Citations {
		if citation == "" || citation == evidence.InternalKnowledge {
			continue
		}
		parsed, err := url.Parse(citation)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			result.Passed = false
			result.Detail = fmt.Sprintf("malformed citation %q", citation)
			break
		}
	}
	return result
}

// checkDiffBlocks validates fenced unified diffs in coding artifacts. An
// artifact without diff fences passes vacuously.
func (s *Schema) checkDiffBlocks(text string) model.TestResult {
	result := model.TestResult{Name: "diff-blocks-parse", Passed: true}
	stats, err := patch.Check(text)
	if err != nil {
		result.Passed = false
		result.Detail = err.Error()
		return result
	}
	if stats.Blocks > 0 {
		result.Detail = fmt.Sprintf("%d blocks, %d files, +%d/-%d", stats.Blocks, stats.Files, stats.Added, stats.Removed)
	}
	return result
}
