package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/viant/conclave/internal/clock"
	"github.com/viant/conclave/model"
)

// Role identifies which component produced a ledger entry.
type Role string

const (
	RolePlanner Role = "planner"
	RoleSolver  Role = "solver"
	RoleJudge   Role = "judge"
	RoleTool    Role = "tool"
)

// Entry is one audit record. Entries are append-only and never mutated or
// removed; their total order is insertion order.
type Entry struct {
	// StepID is "<subtaskId>:<attemptIndex>"; the planner logs "plan:0"
	StepID string `json:"stepId" yaml:"stepId"`
	Role   Role   `json:"role" yaml:"role"`

	// Input and Output are snapshots, not live references
	Input  string `json:"input,omitempty" yaml:"input,omitempty"`
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	Citations   []string           `json:"citations,omitempty" yaml:"citations,omitempty"`
	TestResults []model.TestResult `json:"testResults,omitempty" yaml:"testResults,omitempty"`

	At time.Time `json:"at" yaml:"at"`
}

// Ledger is the append-only audit trail of one run. Concurrently executing
// subtasks append as they complete, so entries interleave by completion time,
// not by subtask declaration order.
type Ledger struct {
	mux     sync.Mutex
	entries []Entry
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{entries: make([]Entry, 0, 16)}
}

// Append records an entry, stamping it with the current time when unset.
func (l *Ledger) Append(entry Entry) {
	if entry.At.IsZero() {
		entry.At = clock.Now()
	}
	l.mux.Lock()
	defer l.mux.Unlock()
	l.entries = append(l.entries, entry)
}

// Entries returns a copy of the entries in insertion order.
func (l *Ledger) Entries() []Entry {
	l.mux.Lock()
	defer l.mux.Unlock()
	result := make([]Entry, len(l.entries))
	copy(result, l.entries)
	return result
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mux.Lock()
	defer l.mux.Unlock()
	return len(l.entries)
}

// StepID formats the step identity of one subtask attempt.
func StepID(subtaskID string, attempt int) string {
	return fmt.Sprintf("%s:%d", subtaskID, attempt)
}

// PlannerStepID is the step identity the planner logs under.
const PlannerStepID = "plan:0"
