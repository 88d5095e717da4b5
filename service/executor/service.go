package executor

import (
	"context"
	"fmt"

	"github.com/viant/conclave/model"
	"github.com/viant/conclave/progress"
	"github.com/viant/conclave/runtime/execution"
	"github.com/viant/conclave/runtime/ledger"
	"github.com/viant/conclave/runtime/run"
	"github.com/viant/conclave/service/solver"
	"github.com/viant/conclave/service/tooling/patch"
	"github.com/viant/conclave/tracing"
)

// Solver produces candidate proposals for a subtask.
type Solver interface {
	Propose(ctx context.Context, subtask *model.Subtask, session *run.Session, k int, goal string) ([]solver.Proposal, error)
}

// Judge verifies a candidate artifact.
type Judge interface {
	Inspect(ctx context.Context, subtask *model.Subtask, artifact *model.Artifact, goal string) (model.Verdict, error)
}

// Config bounds the retry machine.
type Config struct {
	// MaxRetries is the number of extra attempts after the first
	MaxRetries int `json:"maxRetries" yaml:"maxRetries"`

	// FanOut is the proposal count per attempt; zero applies kind defaults
	FanOut int `json:"fanOut" yaml:"fanOut"`
}

// DefaultConfig returns the standard retry budget.
func DefaultConfig() Config {
	return Config{MaxRetries: 2}
}

// Service drives one subtask through the bounded retry machine: per attempt
// it samples proposals, elects a candidate by vote and submits it to the
// judge. A pass or a spent retry budget terminates the execution – exhaustion
// degrades the artifact, it never fails the run.
type Service struct {
	config Config
	solver Solver
	judge  Judge
}

// NewService creates an executor.
func NewService(solverService Solver, judgeService Judge, config Config) *Service {
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	return &Service{config: config, solver: solverService, judge: judgeService}
}

// Execute runs the retry machine for one scheduled execution. The returned
// error is reserved for infrastructure failures (context cancellation, broken
// plan references); verification failure is not an error.
func (s *Service) Execute(ctx context.Context, anExecution *execution.Execution, session *run.Session) (err error) {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("subtask %s", anExecution.SubtaskID), "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	subtask := session.Plan.Lookup(anExecution.SubtaskID)
	if subtask == nil {
		err = fmt.Errorf("subtask %s not found in plan", anExecution.SubtaskID)
		return err
	}
	k := s.fanOut(subtask.Kind)
	maxAttempts := s.config.MaxRetries + 1
	progress.UpdateCtx(ctx, progress.Delta{Running: 1, Pending: -1})
	defer progress.UpdateCtx(ctx, progress.Delta{Running: -1})

	previousText := ""
	for {
		anExecution.Start()
		attempt := anExecution.Attempts

		candidate, verdict, attemptErr := s.attempt(ctx, subtask, session, k, attempt, previousText)
		if attemptErr != nil {
			err = attemptErr
			return err
		}
		previousText = candidate.Text

		if verdict.Passed {
			anExecution.Pass(candidate)
			progress.UpdateCtx(ctx, progress.Delta{Passed: 1})
			return nil
		}
		if attempt >= maxAttempts {
			candidate.Failed = true
			candidate.Critique = verdict.Critique
			anExecution.Exhaust(candidate, verdict.Critique)
			progress.UpdateCtx(ctx, progress.Delta{Failed: 1})
			return nil
		}
		anExecution.Retry(verdict.Critique)
		progress.UpdateCtx(ctx, progress.Delta{Retrying: 1})
	}
}

// attempt performs one solver+judge round and appends both ledger entries.
func (s *Service) attempt(ctx context.Context, subtask *model.Subtask, session *run.Session, k, attempt int, previousText string) (*model.Artifact, model.Verdict, error) {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("attempt %s", ledger.StepID(subtask.ID, attempt)), "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	proposals, err := s.solver.Propose(ctx, subtask, session, k, session.Goal)
	if err != nil {
		return nil, model.Verdict{}, err
	}
	winner := solver.Vote(proposals)
	candidate := &model.Artifact{
		SubtaskID: subtask.ID,
		Text:      winner.Text,
		Citations: winner.Citations,
		Evidence:  winner.Evidence,
		Attempts:  attempt,
	}

	session.Ledger.Append(ledger.Entry{
		StepID:    ledger.StepID(subtask.ID, attempt),
		Role:      ledger.RoleSolver,
		Input:     s.solverInput(subtask, attempt, previousText, winner.Text),
		Output:    winner.Text,
		Citations: winner.Citations,
	})

	verdict, err := s.judge.Inspect(ctx, subtask, candidate, session.Goal)
	if err != nil {
		return nil, model.Verdict{}, err
	}
	session.Ledger.Append(ledger.Entry{
		StepID:      ledger.StepID(subtask.ID, attempt),
		Role:        ledger.RoleJudge,
		Input:       candidate.Text,
		Output:      verdict.Critique,
		TestResults: verdict.TestResults,
	})
	return candidate, verdict, nil
}

// solverInput snapshots the attempt's input. Later attempts additionally
// record what changed against the previous candidate so the audit trail shows
// whether retries actually moved.
func (s *Service) solverInput(subtask *model.Subtask, attempt int, previousText, currentText string) string {
	if attempt <= 1 || previousText == "" {
		return subtask.Prompt
	}
	diffText, err := patch.AttemptDiff(previousText, currentText, 3)
	if err != nil || diffText == "" {
		return subtask.Prompt
	}
	return fmt.Sprintf("%s\n\nchange against previous attempt:\n%s", subtask.Prompt, diffText)
}

// fanOut resolves the proposal count: research and coding subtasks sample
// wider than the rest.
func (s *Service) fanOut(kind model.Kind) int {
	if s.config.FanOut > 0 {
		return s.config.FanOut
	}
	switch kind {
	case model.KindResearch, model.KindCoding:
		return 3
	default:
		return 2
	}
}
