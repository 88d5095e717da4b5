package model

// Kind classifies a subtask. The set is closed – the planner is instructed to
// pick from it and the plan validation rejects anything else.
type Kind string

const (
	KindResearch  Kind = "research"
	KindReason    Kind = "reason"
	KindVerify    Kind = "verify"
	KindCoding    Kind = "coding"
	KindMath      Kind = "math"
	KindSynthesis Kind = "synthesis"
	KindGeneral   Kind = "general"
)

// Kinds returns the closed set of subtask kinds.
func Kinds() []Kind {
	return []Kind{KindResearch, KindReason, KindVerify, KindCoding, KindMath, KindSynthesis, KindGeneral}
}

// IsValid reports whether the kind belongs to the closed set.
func (k Kind) IsValid() bool {
	switch k {
	case KindResearch, KindReason, KindVerify, KindCoding, KindMath, KindSynthesis, KindGeneral:
		return true
	}
	return false
}

// Subtask is one atomic unit of work within a plan. Subtasks are immutable
// once the plan has been produced.
type Subtask struct {
	// ID is unique within a plan
	ID string `json:"id" yaml:"id"`

	// Kind selects the solving strategy and evidence routing
	Kind Kind `json:"kind" yaml:"kind"`

	// Prompt is the natural-language instruction for this unit of work
	Prompt string `json:"prompt" yaml:"prompt"`

	// DependsOn lists ids of subtasks whose artifacts must exist first
	DependsOn []string `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
}

// NewSubtask creates a subtask with the given identity, kind and prompt.
func NewSubtask(id string, kind Kind, prompt string) *Subtask {
	return &Subtask{ID: id, Kind: kind, Prompt: prompt}
}

// WithDependsOn appends dependency ids to the subtask.
func (s *Subtask) WithDependsOn(ids ...string) *Subtask {
	if s.DependsOn == nil {
		s.DependsOn = make([]string, 0, len(ids))
	}
	s.DependsOn = append(s.DependsOn, ids...)
	return s
}
