package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/conclave/model"
)

func doneSet(ids ...string) func(string) bool {
	done := map[string]bool{}
	for _, id := range ids {
		done[id] = true
	}
	return func(id string) bool { return done[id] }
}

func ids(subtasks []*model.Subtask) []string {
	var result []string
	for _, subtask := range subtasks {
		result = append(result, subtask.ID)
	}
	return result
}

func TestFrontier_SequentialChain(t *testing.T) {
	plan := model.NewPlan("goal")
	plan.NewSubtask("s1", model.KindResearch, "a")
	plan.NewSubtask("s2", model.KindReason, "b").WithDependsOn("s1")
	plan.NewSubtask("s3", model.KindSynthesis, "c").WithDependsOn("s2")

	ready, err := Frontier(plan, doneSet())
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids(ready))

	ready, err = Frontier(plan, doneSet("s1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"s2"}, ids(ready))

	ready, err = Frontier(plan, doneSet("s1", "s2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"s3"}, ids(ready))

	ready, err = Frontier(plan, doneSet("s1", "s2", "s3"))
	require.NoError(t, err)
	assert.Empty(t, ready, "a completed plan has an empty frontier without deadlock")
}

func TestFrontier_IndependentSubtasksShareARound(t *testing.T) {
	plan := model.NewPlan("goal")
	plan.NewSubtask("s1", model.KindResearch, "a")
	plan.NewSubtask("s2", model.KindResearch, "b")
	plan.NewSubtask("s3", model.KindSynthesis, "c").WithDependsOn("s1", "s2")

	ready, err := Frontier(plan, doneSet())
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, ids(ready))
}

func TestFrontier_Deadlock(t *testing.T) {
	testCases := []struct {
		description string
		plan        func() *model.Plan
	}{
		{
			description: "dependency cycle",
			plan: func() *model.Plan {
				plan := model.NewPlan("goal")
				plan.NewSubtask("s1", model.KindResearch, "a").WithDependsOn("s2")
				plan.NewSubtask("s2", model.KindReason, "b").WithDependsOn("s1")
				return plan
			},
		},
		{
			description: "dependency on an unknown subtask",
			plan: func() *model.Plan {
				plan := model.NewPlan("goal")
				plan.NewSubtask("s1", model.KindResearch, "a").WithDependsOn("ghost")
				return plan
			},
		},
	}
	for _, testCase := range testCases {
		_, err := Frontier(testCase.plan(), doneSet())
		assert.ErrorIs(t, err, ErrDeadlock, testCase.description)
	}
}
