// Package solver produces candidate answers for a subtask by sampling k
// concurrent proposals at spread temperatures and electing one by a
// deterministic vote. This self-consistency pass trades extra backend calls
// for reduced single-sample variance.
package solver

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/viant/conclave/internal/retry"
	"github.com/viant/conclave/internal/taskgroup"
	"github.com/viant/conclave/model"
	"github.com/viant/conclave/model/evidence"
	"github.com/viant/conclave/progress"
	"github.com/viant/conclave/runtime/run"
	"github.com/viant/conclave/service/provider"
	"github.com/viant/conclave/tracing"
)

const solveRole = "You are a careful problem solver. Answer the subtask directly and completely."

// Retriever supplies external evidence for research subtasks.
type Retriever interface {
	Retrieve(ctx context.Context, query string, kind model.Kind, goal string) (*evidence.Bundle, error)
}

// Config customises proposal sampling.
type Config struct {
	// TemperatureBase is the sampling temperature of proposal 0
	TemperatureBase float64 `json:"temperatureBase" yaml:"temperatureBase"`

	// TemperatureStep is added per proposal index, capped at 1.0
	TemperatureStep float64 `json:"temperatureStep" yaml:"temperatureStep"`

	// Effort is the optional reasoning-effort hint forwarded on every
	// generation call
	Effort string `json:"effort,omitempty" yaml:"effort,omitempty"`
}

// DefaultConfig returns the standard sampling spread.
func DefaultConfig() Config {
	return Config{TemperatureBase: 0.4, TemperatureStep: 0.15}
}

// Proposal is one candidate output for a subtask. Citations and Evidence are
// shared across the whole batch – they come from the bundle, not the sample.
type Proposal struct {
	Index       int
	Text        string
	Temperature float64

	// Degraded marks a fallback substituted after persistent call failure
	Degraded bool

	Citations []string
	Evidence  *evidence.Bundle
}

// Service generates and elects proposals.
type Service struct {
	config    Config
	client    provider.Client
	retriever Retriever
}

// New creates a solver backed by the given provider client and retriever.
func New(client provider.Client, retriever Retriever, config Config) *Service {
	if config.TemperatureBase == 0 && config.TemperatureStep == 0 {
		defaults := DefaultConfig()
		config.TemperatureBase = defaults.TemperatureBase
		config.TemperatureStep = defaults.TemperatureStep
	}
	return &Service{config: config, client: client, retriever: retriever}
}

// Propose launches k independent generation calls concurrently, each at a
// slightly higher temperature, against a shared evidence context. A call that
// keeps failing is substituted with a degraded fallback – the batch never
// fully fails.
func (s *Service) Propose(ctx context.Context, subtask *model.Subtask, session *run.Session, k int, goal string) ([]Proposal, error) {
	ctx, span := tracing.StartSpan(ctx, "solver.Propose", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	if subtask == nil {
		err = fmt.Errorf("subtask is required")
		return nil, err
	}
	if k <= 0 {
		k = 1
	}
	bundle, err := s.evidenceFor(ctx, subtask, session, goal)
	if err != nil {
		return nil, err
	}
	citations := bundle.Sources
	prompt := s.prompt(subtask, bundle, goal)

	proposals := make([]Proposal, k)
	group := taskgroup.New(ctx)
	for i := 0; i < k; i++ {
		index := i
		group.Go(func(ctx context.Context) error {
			proposals[index] = s.propose(ctx, subtask, prompt, index)
			return nil
		})
	}
	if err = group.Wait(); err != nil {
		return nil, err
	}
	for i := range proposals {
		proposals[i].Citations = citations
		proposals[i].Evidence = bundle
	}
	progress.UpdateCtx(ctx, progress.Delta{Proposals: k})
	return proposals, nil
}

// propose issues one generation call under the shared retry policy and
// substitutes a degraded fallback when the call cannot be made to succeed.
func (s *Service) propose(ctx context.Context, subtask *model.Subtask, prompt string, index int) Proposal {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("solver.proposal[%d]", index), "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	temperature := s.config.TemperatureBase + s.config.TemperatureStep*float64(index)
	if temperature > 1.0 {
		temperature = 1.0
	}
	policy := retry.Policy{
		MaxAttempts: 2,
		Retryable:   provider.IsRateLimit,
		Backoff:     proposalBackoff(index),
	}
	var response *provider.GenerateResponse
	err = policy.Do(ctx, func(ctx context.Context) error {
		var callErr error
		response, callErr = s.client.Generate(ctx, &provider.GenerateRequest{
			Role:        solveRole,
			Prompt:      prompt,
			Temperature: temperature,
			Effort:      s.config.Effort,
		})
		return callErr
	})
	if err != nil {
		log.Printf("solver: proposal %v for subtask %v degraded: %v", index, subtask.ID, err)
		return Proposal{
			Index:       index,
			Text:        fmt.Sprintf("Unable to generate a proposal for this subtask (%v). Relying on sibling proposals.", err),
			Temperature: temperature,
			Degraded:    true,
		}
	}
	return Proposal{Index: index, Text: response.Text, Temperature: temperature}
}

// proposalBackoff doubles the base delay per proposal index so that
// concurrent siblings retrying a rate-limited backend spread out, capped at
// ten seconds.
func proposalBackoff(index int) func(int) time.Duration {
	delay := time.Second << index
	if delay > 10*time.Second {
		delay = 10 * time.Second
	}
	return retry.Constant(delay)
}

// evidenceFor routes the subtask to its evidence context: research subtasks
// consult the retriever (the session's run-scoped one when bound), everything
// else reuses the first dependency artifact that carries citations, falling
// back to internal knowledge.
func (s *Service) evidenceFor(ctx context.Context, subtask *model.Subtask, session *run.Session, goal string) (*evidence.Bundle, error) {
	if subtask.Kind == model.KindResearch {
		if session != nil && session.Retriever != nil {
			return session.Retriever.Retrieve(ctx, subtask.Prompt, subtask.Kind, goal)
		}
		if s.retriever != nil {
			return s.retriever.Retrieve(ctx, subtask.Prompt, subtask.Kind, goal)
		}
	}
	if session != nil {
		for _, dependencyID := range subtask.DependsOn {
			artifact, ok := session.Artifact(dependencyID)
			if !ok {
				continue
			}
			if artifact.HasCitations() {
				if artifact.Evidence != nil {
					return artifact.Evidence, nil
				}
				return &evidence.Bundle{Sources: artifact.Citations}, nil
			}
		}
	}
	return evidence.NewInternalBundle(), nil
}

// prompt folds the goal, the subtask instruction and the evidence claims into
// one generation prompt shared by the whole batch.
func (s *Service) prompt(subtask *model.Subtask, bundle *evidence.Bundle, goal string) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Overall goal: %s\n\nSubtask (%v): %s\n", goal, subtask.Kind, subtask.Prompt)
	if claims := bundle.Claims(); len(claims) > 0 {
		builder.WriteString("\nEvidence to ground your answer in:\n")
		for _, claim := range claims {
			fmt.Fprintf(&builder, "- %s\n", claim)
		}
	}
	if len(bundle.Sources) > 0 && bundle.Sources[0] != evidence.InternalKnowledge {
		builder.WriteString("\nSources:\n")
		for _, source := range bundle.Sources {
			fmt.Fprintf(&builder, "- %s\n", source)
		}
	}
	return builder.String()
}

// Vote elects one proposal deterministically: the first, unless some other
// proposal's text is more than 20% longer, in which case the longest wins
// (first among equals). This is a length-biased placeholder policy, not a
// quality judgment.
func Vote(proposals []Proposal) Proposal {
	if len(proposals) == 0 {
		return Proposal{}
	}
	winner := proposals[0]
	longest := proposals[0]
	for _, proposal := range proposals[1:] {
		if len(proposal.Text) > len(longest.Text) {
			longest = proposal
		}
	}
	if float64(len(longest.Text)) > float64(len(winner.Text))*1.2 {
		return longest
	}
	return winner
}
