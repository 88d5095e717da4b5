package model

import (
	"fmt"
)

// MaxSubtasks caps the plan size – plans are single-use decompositions of one
// goal, not general workflows.
const MaxSubtasks = 8

// Plan is the dependency graph of subtasks produced for a single goal. It is
// created once by the planner and read-only thereafter. The last subtask in
// declared order is the plan's sink – its artifact becomes the run's final
// answer.
type Plan struct {
	// Goal is the open-ended question this plan decomposes
	Goal string `json:"goal" yaml:"goal"`

	// Subtasks in declared order
	Subtasks []*Subtask `json:"subtasks" yaml:"subtasks"`
}

// NewPlan creates an empty plan for the given goal.
func NewPlan(goal string) *Plan {
	return &Plan{Goal: goal, Subtasks: make([]*Subtask, 0, 3)}
}

// NewSubtask creates a subtask, appends it to the plan and returns it so that
// callers can chain builder methods.
func (p *Plan) NewSubtask(id string, kind Kind, prompt string) *Subtask {
	subtask := NewSubtask(id, kind, prompt)
	p.Subtasks = append(p.Subtasks, subtask)
	return subtask
}

// Lookup returns the subtask with the given id or nil.
func (p *Plan) Lookup(id string) *Subtask {
	for _, subtask := range p.Subtasks {
		if subtask.ID == id {
			return subtask
		}
	}
	return nil
}

// Last returns the final subtask in declared order or nil for an empty plan.
func (p *Plan) Last() *Subtask {
	if len(p.Subtasks) == 0 {
		return nil
	}
	return p.Subtasks[len(p.Subtasks)-1]
}

// Size returns the number of subtasks.
func (p *Plan) Size() int {
	return len(p.Subtasks)
}

// Validate performs a best-effort structural validation of the plan. The
// returned slice is empty when the plan is sound; otherwise it contains
// human-readable error descriptions. The scheduler does not call this – it
// detects broken graphs operationally as a deadlocked frontier – but the
// planner uses it as the schema gate on model output.
func (p *Plan) Validate() []error {
	var issues []error

	if len(p.Subtasks) == 0 {
		issues = append(issues, fmt.Errorf("plan has no subtasks"))
		return issues
	}
	if len(p.Subtasks) > MaxSubtasks {
		issues = append(issues, fmt.Errorf("plan has %d subtasks, maximum is %d", len(p.Subtasks), MaxSubtasks))
	}

	seen := map[string]bool{}
	for _, subtask := range p.Subtasks {
		if subtask.ID == "" {
			issues = append(issues, fmt.Errorf("subtask has empty id"))
			continue
		}
		if seen[subtask.ID] {
			issues = append(issues, fmt.Errorf("duplicate subtask id %s", subtask.ID))
		}
		seen[subtask.ID] = true
		if subtask.Prompt == "" {
			issues = append(issues, fmt.Errorf("subtask %s has empty prompt", subtask.ID))
		}
		if !subtask.Kind.IsValid() {
			issues = append(issues, fmt.Errorf("subtask %s has unknown kind %q", subtask.ID, subtask.Kind))
		}
		for _, dep := range subtask.DependsOn {
			if dep == subtask.ID {
				issues = append(issues, fmt.Errorf("subtask %s depends on itself", subtask.ID))
			}
		}
	}

	// After collecting all ids, verify each dependency exists.
	for _, subtask := range p.Subtasks {
		for _, dep := range subtask.DependsOn {
			if !seen[dep] {
				issues = append(issues, fmt.Errorf("subtask %s depends on unknown subtask %s", subtask.ID, dep))
			}
		}
	}

	// DFS with colour set (white/grey/black) to detect back-edge cycles
	const (
		white = 0
		grey  = 1
		black = 2
	)
	state := map[string]int{}
	edges := map[string][]string{}
	for _, subtask := range p.Subtasks {
		edges[subtask.ID] = subtask.DependsOn
	}

	var dfs func(string) bool // returns true if cycle found
	dfs = func(n string) bool {
		st := state[n]
		if st == grey {
			return true // back-edge → cycle
		}
		if st == black {
			return false
		}
		state[n] = grey
		for _, nxt := range edges[n] {
			if dfs(nxt) {
				return true
			}
		}
		state[n] = black
		return false
	}

	for _, subtask := range p.Subtasks {
		if dfs(subtask.ID) {
			issues = append(issues, fmt.Errorf("plan contains cyclic dependencies"))
			break
		}
	}

	return issues
}
