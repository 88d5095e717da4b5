package run

import (
	"context"
	"time"

	"github.com/viant/conclave/internal/clock"
	"github.com/viant/conclave/model"
	"github.com/viant/conclave/model/evidence"
	"github.com/viant/conclave/runtime/ledger"
)

// Retriever supplies external evidence for research subtasks. The instance
// bound to a session is run-scoped – its query cache lives and dies with the
// run.
type Retriever interface {
	Retrieve(ctx context.Context, query string, kind model.Kind, goal string) (*evidence.Bundle, error)
}

// Output is the durable record of one run, suitable for serialisation to a
// run store for audit independent of the in-memory session.
type Output struct {
	ID        string    `json:"id" yaml:"id"`
	Goal      string    `json:"goal" yaml:"goal"`
	Provider  string    `json:"provider" yaml:"provider"`
	Model     string    `json:"model" yaml:"model"`
	StartedAt time.Time `json:"startedAt" yaml:"startedAt"`

	Elapsed   time.Duration `json:"elapsed" yaml:"elapsed"`
	ElapsedMs int64         `json:"elapsedMs" yaml:"elapsedMs"`

	Plan      *model.Plan                `json:"plan" yaml:"plan"`
	Ledger    []ledger.Entry             `json:"ledger" yaml:"ledger"`
	Artifacts map[string]*model.Artifact `json:"artifacts" yaml:"artifacts"`

	// Final is the artifact of the last subtask in declared plan order
	Final *model.Artifact `json:"final" yaml:"final"`
}

// Clone creates a copy of the output whose mutable collections are
// independent from the source. Plan and artifacts are shared – both are
// written once and read-only afterwards.
func (o *Output) Clone() *Output {
	if o == nil {
		return nil
	}
	clone := *o
	if o.Ledger != nil {
		clone.Ledger = make([]ledger.Entry, len(o.Ledger))
		copy(clone.Ledger, o.Ledger)
	}
	if o.Artifacts != nil {
		clone.Artifacts = make(map[string]*model.Artifact, len(o.Artifacts))
		for id, artifact := range o.Artifacts {
			clone.Artifacts[id] = artifact
		}
	}
	return &clone
}

// Session is the in-memory state of one run. The artifact table and done set
// are written only by the control goroutine at round barriers – concurrent
// workers read artifacts of already-completed dependencies, which is safe
// because the completion queue hand-off orders those writes before the next
// round's reads.
type Session struct {
	ID        string
	Goal      string
	Plan      *model.Plan
	StartedAt time.Time
	Ledger    *ledger.Ledger

	// Retriever is the run-scoped evidence service, set by the runtime
	Retriever Retriever

	done      map[string]bool
	artifacts map[string]*model.Artifact
}

// NewSession creates the state for one run.
func NewSession(id, goal string, plan *model.Plan) *Session {
	return &Session{
		ID:        id,
		Goal:      goal,
		Plan:      plan,
		StartedAt: clock.Now(),
		Ledger:    ledger.New(),
		done:      make(map[string]bool),
		artifacts: make(map[string]*model.Artifact),
	}
}

// MarkDone writes the artifact into the table and marks its subtask done.
// Each subtask is marked done exactly once.
func (s *Session) MarkDone(artifact *model.Artifact) {
	if artifact == nil || s.done[artifact.SubtaskID] {
		return
	}
	s.artifacts[artifact.SubtaskID] = artifact
	s.done[artifact.SubtaskID] = true
}

// IsDone reports whether the subtask has completed.
func (s *Session) IsDone(subtaskID string) bool {
	return s.done[subtaskID]
}

// DoneCount returns how many subtasks completed so far.
func (s *Session) DoneCount() int {
	return len(s.done)
}

// Completed reports whether every subtask of the plan is done.
func (s *Session) Completed() bool {
	return len(s.done) == len(s.Plan.Subtasks)
}

// Artifact returns the artifact produced for the subtask, if any.
func (s *Session) Artifact(subtaskID string) (*model.Artifact, bool) {
	artifact, ok := s.artifacts[subtaskID]
	return artifact, ok
}

// Pending lists subtask ids that have not completed, in declared order.
func (s *Session) Pending() []string {
	var pending []string
	for _, subtask := range s.Plan.Subtasks {
		if !s.done[subtask.ID] {
			pending = append(pending, subtask.ID)
		}
	}
	return pending
}

// Output assembles the durable run record. The final artifact is that of the
// last subtask in the plan's declared order.
func (s *Session) Output(provider, modelID string) *Output {
	elapsed := clock.Now().Sub(s.StartedAt)
	artifacts := make(map[string]*model.Artifact, len(s.artifacts))
	for id, artifact := range s.artifacts {
		artifacts[id] = artifact
	}
	var final *model.Artifact
	if last := s.Plan.Last(); last != nil {
		final = artifacts[last.ID]
	}
	return &Output{
		ID:        s.ID,
		Goal:      s.Goal,
		Provider:  provider,
		Model:     modelID,
		StartedAt: s.StartedAt,
		Elapsed:   elapsed,
		ElapsedMs: elapsed.Milliseconds(),
		Plan:      s.Plan,
		Ledger:    s.Ledger.Entries(),
		Artifacts: artifacts,
		Final:     final,
	}
}
