// Package judge verifies candidate artifacts. The accept/reject decision is
// computed solely from the tooling test-suite results; the provider critique
// is advisory and shapes only the human-readable audit trail.
package judge

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/viant/conclave/model"
	"github.com/viant/conclave/model/evidence"
	"github.com/viant/conclave/service/provider"
	"github.com/viant/conclave/service/tooling"
	"github.com/viant/conclave/tracing"
)

// EvaluationMode selects the framing of the advisory critique prompt.
type EvaluationMode string

const (
	// ModeSourceVerification checks claims against the cited sources
	ModeSourceVerification EvaluationMode = "source_verification"
	// ModeLogicBased judges logical and technical consistency only
	ModeLogicBased EvaluationMode = "logic_based"
	// ModeCitationRequired flags that required citations are absent
	ModeCitationRequired EvaluationMode = "citation_required"
)

const critiqueRole = "You are a strict reviewer. Critique the candidate answer in a few sentences. Do not rewrite it."

// Service inspects artifacts against the goal and the tooling suites.
type Service struct {
	client provider.Client
	suites []tooling.Suite
}

// New creates a judge backed by the given provider client and tooling suites.
func New(client provider.Client, suites ...tooling.Suite) *Service {
	return &Service{client: client, suites: suites}
}

// Inspect verifies one candidate artifact. The returned verdict passes iff
// every tooling test result passed; a tooling suite that errors degrades into
// a single failed result rather than aborting the inspection.
func (s *Service) Inspect(ctx context.Context, subtask *model.Subtask, artifact *model.Artifact, goal string) (model.Verdict, error) {
	ctx, span := tracing.StartSpan(ctx, "judge.Inspect", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	if subtask == nil || artifact == nil {
		err = fmt.Errorf("subtask and artifact are required")
		return model.Verdict{}, err
	}

	required, rule := CitationsRequired(goal)
	mode := selectMode(required, hasRealSources(artifact))
	span.WithAttributes(map[string]string{
		"citation.rule": rule,
		"mode":          string(mode),
	})

	critique := s.critique(ctx, subtask, artifact, goal, mode)
	results := s.runSuites(ctx, subtask, artifact)
	return model.NewVerdict(critique, results), nil
}

// selectMode maps the two independent signals onto the evaluation mode.
func selectMode(required, realSources bool) EvaluationMode {
	switch {
	case realSources:
		return ModeSourceVerification
	case required:
		return ModeCitationRequired
	default:
		return ModeLogicBased
	}
}

// hasRealSources reports whether the artifact cites at least one external
// http(s) URL that is not a placeholder.
func hasRealSources(artifact *model.Artifact) bool {
	for _, citation := range artifact.Citations {
		if citation == "" || citation == evidence.InternalKnowledge {
			continue
		}
		parsed, err := url.Parse(citation)
		if err != nil || parsed.Host == "" {
			continue
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			continue
		}
		if strings.HasSuffix(parsed.Host, "example.com") {
			continue
		}
		return true
	}
	return false
}

// critique asks the provider for an advisory review. Failure degrades to a
// fixed note – the critique never gates acceptance, so it must never block.
func (s *Service) critique(ctx context.Context, subtask *model.Subtask, artifact *model.Artifact, goal string, mode EvaluationMode) string {
	if s.client == nil {
		return "critique unavailable: no provider configured"
	}
	response, err := s.client.Generate(ctx, &provider.GenerateRequest{
		Role:   critiqueRole,
		Prompt: critiquePrompt(subtask, artifact, goal, mode),
	})
	if err != nil {
		log.Printf("judge: critique call failed for subtask %v, continuing without: %v", subtask.ID, err)
		return fmt.Sprintf("critique unavailable: %v", err)
	}
	return strings.TrimSpace(response.Text)
}

func critiquePrompt(subtask *model.Subtask, artifact *model.Artifact, goal string, mode EvaluationMode) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Goal: %s\nSubtask (%v): %s\n\nCandidate answer:\n%s\n\n", goal, subtask.Kind, subtask.Prompt, artifact.Text)
	switch mode {
	case ModeSourceVerification:
		fmt.Fprintf(&builder, "Cited sources:\n")
		for _, citation := range artifact.Citations {
			fmt.Fprintf(&builder, "- %s\n", citation)
		}
		builder.WriteString("\nVerify the answer's claims against the cited sources. Flag any claim a source does not support.")
	case ModeCitationRequired:
		builder.WriteString("This question class requires external citations but the answer provides none. Critique only what was actually retrieved; do not introduce new external claims.")
	default:
		builder.WriteString("No external sources are required. Judge the answer's logical and technical consistency only.")
	}
	return builder.String()
}

// runSuites collects results across every configured suite. A suite error is
// degraded into a single failed result named after the suite.
func (s *Service) runSuites(ctx context.Context, subtask *model.Subtask, artifact *model.Artifact) []model.TestResult {
	var results []model.TestResult
	for _, suite := range s.suites {
		suiteResults, err := suite.Evaluate(ctx, subtask, artifact)
		if err != nil {
			log.Printf("judge: tooling suite %v failed for subtask %v: %v", suite.Name(), subtask.ID, err)
			results = append(results, model.TestResult{
				Name:   suite.Name(),
				Passed: false,
				Detail: fmt.Sprintf("tooling error: %v", err),
			})
			continue
		}
		results = append(results, suiteResults...)
	}
	return results
}
