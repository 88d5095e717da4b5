// Package scheduler computes the ready frontier of a plan's dependency graph.
// The scheduler never validates the graph up front – a structurally broken
// plan surfaces operationally as a deadlocked frontier.
package scheduler

import (
	"errors"

	"github.com/viant/conclave/model"
)

// ErrDeadlock reports that no subtask is ready while the plan is incomplete:
// a cycle or an unsatisfiable dependency. It is the only fatal scheduling
// condition.
var ErrDeadlock = errors.New("scheduler deadlock: no subtask is ready but the plan is incomplete")

// Frontier returns the subtasks whose dependencies are all done and which are
// not themselves done, in declared plan order. An empty frontier over an
// incomplete plan is a deadlock.
func Frontier(plan *model.Plan, isDone func(id string) bool) ([]*model.Subtask, error) {
	var ready []*model.Subtask
	pending := 0
	for _, subtask := range plan.Subtasks {
		if isDone(subtask.ID) {
			continue
		}
		pending++
		if dependenciesDone(subtask, isDone) {
			ready = append(ready, subtask)
		}
	}
	if pending > 0 && len(ready) == 0 {
		return nil, ErrDeadlock
	}
	return ready, nil
}

func dependenciesDone(subtask *model.Subtask, isDone func(id string) bool) bool {
	for _, dependency := range subtask.DependsOn {
		if !isDone(dependency) {
			return false
		}
	}
	return true
}
