package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/conclave/model"
	"github.com/viant/conclave/runtime/execution"
	"github.com/viant/conclave/runtime/ledger"
	"github.com/viant/conclave/runtime/run"
	"github.com/viant/conclave/service/solver"
)

type stubSolver struct {
	texts []string
	calls int
}

func (s *stubSolver) Propose(_ context.Context, subtask *model.Subtask, _ *run.Session, k int, _ string) ([]solver.Proposal, error) {
	text := s.texts[0]
	if s.calls < len(s.texts) {
		text = s.texts[s.calls]
	} else {
		text = s.texts[len(s.texts)-1]
	}
	s.calls++
	proposals := make([]solver.Proposal, k)
	for i := range proposals {
		proposals[i] = solver.Proposal{Index: i, Text: text, Citations: []string{"https://www.example.org/src"}}
	}
	_ = subtask
	return proposals, nil
}

type stubJudge struct {
	verdicts []model.Verdict
	calls    int
}

func (s *stubJudge) Inspect(_ context.Context, _ *model.Subtask, _ *model.Artifact, _ string) (model.Verdict, error) {
	verdict := s.verdicts[len(s.verdicts)-1]
	if s.calls < len(s.verdicts) {
		verdict = s.verdicts[s.calls]
	}
	s.calls++
	return verdict, nil
}

func passVerdict() model.Verdict {
	return model.Verdict{Passed: true, TestResults: []model.TestResult{{Name: "schema", Passed: true}}}
}

func failVerdict(critique string) model.Verdict {
	return model.Verdict{Passed: false, Critique: critique, TestResults: []model.TestResult{{Name: "schema", Passed: false}}}
}

func newTestSession(subtask *model.Subtask) (*run.Session, *execution.Execution) {
	plan := &model.Plan{Goal: "goal", Subtasks: []*model.Subtask{subtask}}
	session := run.NewSession("r1", "goal", plan)
	return session, execution.New("r1", subtask, 0)
}

func TestExecute_FirstAttemptPasses(t *testing.T) {
	subtask := model.NewSubtask("s1", model.KindReason, "reason it out")
	session, anExecution := newTestSession(subtask)
	service := NewService(&stubSolver{texts: []string{"answer"}}, &stubJudge{verdicts: []model.Verdict{passVerdict()}}, DefaultConfig())

	err := service.Execute(context.Background(), anExecution, session)
	require.NoError(t, err)
	assert.Equal(t, execution.StatePassed, anExecution.State)
	assert.Equal(t, 1, anExecution.Attempts)
	require.NotNil(t, anExecution.Artifact)
	assert.Equal(t, "answer", anExecution.Artifact.Text)
	assert.False(t, anExecution.Artifact.Failed)

	// One solver and one judge entry under the same step id.
	entries := session.Ledger.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, ledger.StepID("s1", 1), entries[0].StepID)
	assert.Equal(t, ledger.RoleSolver, entries[0].Role)
	assert.Equal(t, ledger.RoleJudge, entries[1].Role)
	assert.NotEmpty(t, entries[1].TestResults)
}

func TestExecute_RetryThenPass(t *testing.T) {
	subtask := model.NewSubtask("s1", model.KindReason, "reason it out")
	session, anExecution := newTestSession(subtask)
	judge := &stubJudge{verdicts: []model.Verdict{failVerdict("too vague"), passVerdict()}}
	service := NewService(&stubSolver{texts: []string{"first answer", "second answer"}}, judge, DefaultConfig())

	err := service.Execute(context.Background(), anExecution, session)
	require.NoError(t, err)
	assert.Equal(t, execution.StatePassed, anExecution.State)
	assert.Equal(t, 2, anExecution.Attempts)
	assert.Equal(t, "second answer", anExecution.Artifact.Text)

	// The second solver entry records the change against the first attempt.
	entries := session.Ledger.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, ledger.StepID("s1", 2), entries[2].StepID)
	assert.Contains(t, entries[2].Input, "change against previous attempt")
	assert.Contains(t, entries[2].Input, "-first answer")
	assert.Contains(t, entries[2].Input, "+second answer")
}

func TestExecute_Exhaustion(t *testing.T) {
	subtask := model.NewSubtask("s1", model.KindReason, "reason it out")
	session, anExecution := newTestSession(subtask)
	judge := &stubJudge{verdicts: []model.Verdict{failVerdict("still wrong")}}
	service := NewService(&stubSolver{texts: []string{"an answer"}}, judge, Config{MaxRetries: 2})

	err := service.Execute(context.Background(), anExecution, session)
	require.NoError(t, err, "exhaustion is degradation, not a run error")
	assert.Equal(t, execution.StateExhausted, anExecution.State)
	assert.Equal(t, 3, anExecution.Attempts, "maxRetries+1 attempts in total")
	require.NotNil(t, anExecution.Artifact)
	assert.True(t, anExecution.Artifact.Failed)
	assert.Equal(t, "still wrong", anExecution.Artifact.Critique)
	assert.Equal(t, 3, judge.calls)
	assert.Len(t, session.Ledger.Entries(), 6)
}

func TestExecute_CritiqueNotFedBack(t *testing.T) {
	subtask := model.NewSubtask("s1", model.KindReason, "reason it out")
	session, anExecution := newTestSession(subtask)
	judge := &stubJudge{verdicts: []model.Verdict{failVerdict("needs more rigour"), passVerdict()}}
	solverStub := &stubSolver{texts: []string{"answer one", "answer two"}}
	service := NewService(solverStub, judge, DefaultConfig())

	err := service.Execute(context.Background(), anExecution, session)
	require.NoError(t, err)

	// The critique lands on the execution for reporting, never in a prompt –
	// the solver only ever sees the subtask.
	assert.Equal(t, 2, solverStub.calls)
	for _, entry := range session.Ledger.Entries() {
		if entry.Role == ledger.RoleSolver {
			assert.NotContains(t, entry.Input, "needs more rigour")
		}
	}
}

func TestExecute_FanOutDefaults(t *testing.T) {
	service := NewService(nil, nil, Config{})
	assert.Equal(t, 3, service.fanOut(model.KindResearch))
	assert.Equal(t, 3, service.fanOut(model.KindCoding))
	assert.Equal(t, 2, service.fanOut(model.KindReason))
	assert.Equal(t, 2, service.fanOut(model.KindSynthesis))

	configured := NewService(nil, nil, Config{FanOut: 5})
	assert.Equal(t, 5, configured.fanOut(model.KindReason))
}

func TestExecute_UnknownSubtask(t *testing.T) {
	subtask := model.NewSubtask("s1", model.KindReason, "reason")
	session, _ := newTestSession(subtask)
	ghost := execution.New("r1", model.NewSubtask("ghost", model.KindReason, "x"), 0)
	service := NewService(&stubSolver{texts: []string{"a"}}, &stubJudge{verdicts: []model.Verdict{passVerdict()}}, DefaultConfig())

	err := service.Execute(context.Background(), ghost, session)
	assert.Error(t, err)
}
