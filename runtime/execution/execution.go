package execution

import (
	"fmt"
	"time"

	"github.com/viant/conclave/internal/clock"
	"github.com/viant/conclave/internal/idgen"
	"github.com/viant/conclave/model"
)

// Execution tracks a single subtask through the bounded retry machine. It is
// created by the runtime when the subtask enters the ready frontier, handed
// to a processor worker via the execution queue and reported back on the
// completion queue once it reaches a terminal state.
type Execution struct {
	ID        string `json:"id"`
	RunID     string `json:"runId"`
	SubtaskID string `json:"subtaskId"`

	// Round is the frontier round that scheduled this execution
	Round int `json:"round"`

	State    State `json:"state"`
	Attempts int   `json:"attempts,omitempty"`

	// Critique carries the last judge note – reporting only, it is never fed
	// back into the proposal prompt
	Critique string `json:"critique,omitempty"`

	// Artifact is the subtask result once the execution is terminal
	Artifact *model.Artifact `json:"artifact,omitempty"`

	Error string `json:"error,omitempty"`

	ScheduledAt time.Time  `json:"scheduledAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// New creates a pending execution for a subtask scheduled in the given round.
func New(runID string, subtask *model.Subtask, round int) *Execution {
	return &Execution{
		ID:          generateExecutionID(runID, subtask.ID),
		RunID:       runID,
		SubtaskID:   subtask.ID,
		Round:       round,
		State:       StatePending,
		ScheduledAt: clock.Now(),
	}
}

// Schedule marks the execution as published to the execution queue.
func (e *Execution) Schedule() {
	e.ScheduledAt = clock.Now()
	e.State = StateScheduled
}

// Start marks the beginning of a solver+judge attempt.
func (e *Execution) Start() {
	now := clock.Now()
	if e.StartedAt == nil {
		e.StartedAt = &now
	}
	e.Attempts++
	e.State = StateAttempting
}

// Retry records a failed attempt that still has budget left. The critique is
// carried for reporting only.
func (e *Execution) Retry(critique string) {
	e.Critique = critique
	e.State = StateRetrying
}

// Pass marks the execution as terminally successful with the accepted
// candidate.
func (e *Execution) Pass(artifact *model.Artifact) {
	now := clock.Now()
	e.CompletedAt = &now
	e.Artifact = artifact
	e.State = StatePassed
}

// Exhaust marks the execution as terminally degraded after the retry budget
// was spent. The artifact carries Failed=true plus the last critique – the
// run continues to dependents regardless.
func (e *Execution) Exhaust(artifact *model.Artifact, critique string) {
	now := clock.Now()
	e.CompletedAt = &now
	e.Artifact = artifact
	e.Critique = critique
	e.State = StateExhausted
}

// Elapsed reports wall time between start and completion.
func (e *Execution) Elapsed() time.Duration {
	if e.StartedAt == nil || e.CompletedAt == nil {
		return 0
	}
	return e.CompletedAt.Sub(*e.StartedAt)
}

// generateExecutionID creates a unique ID for an execution
func generateExecutionID(runID, subtaskID string) string {
	return fmt.Sprintf("%s-%s-%s", runID, subtaskID, idgen.New())
}

// Clone creates a deep copy of the execution so that the caller can mutate it
// without affecting the original instance. The artifact pointer is shared –
// artifacts are written once and read-only afterwards. The execution itself is
// a plain value: queues copy it on publish, so it needs no lock.
func (e *Execution) Clone() *Execution {
	if e == nil {
		return nil
	}
	clone := *e
	if e.StartedAt != nil {
		t := *e.StartedAt
		clone.StartedAt = &t
	}
	if e.CompletedAt != nil {
		t := *e.CompletedAt
		clone.CompletedAt = &t
	}
	return &clone
}
