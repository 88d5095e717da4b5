package conclave

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/conclave/progress"
	"github.com/viant/conclave/runtime/execution"
	"github.com/viant/conclave/runtime/ledger"
	"github.com/viant/conclave/service/event"
	"github.com/viant/conclave/service/provider"
	"github.com/viant/conclave/service/retriever"
	"github.com/viant/conclave/service/scheduler"
	"github.com/viant/conclave/service/tooling"
)

const chainPlanJSON = `{"subtasks":[
  {"id":"s1","kind":"research","prompt":"Collect the key facts","dependsOn":[]},
  {"id":"s2","kind":"reason","prompt":"Reason over the facts","dependsOn":["s1"]},
  {"id":"s3","kind":"synthesis","prompt":"Write the final summary","dependsOn":["s2"]}]}`

const diamondPlanJSON = `{"subtasks":[
  {"id":"a","kind":"reason","prompt":"Examine the first aspect","dependsOn":[]},
  {"id":"b","kind":"reason","prompt":"Examine the second aspect","dependsOn":[]},
  {"id":"c","kind":"synthesis","prompt":"Combine both aspects","dependsOn":["a","b"]}]}`

func testConfig() *Config {
	config := DefaultConfig()
	config.Retriever.Mode = retriever.ModeNever
	return config
}

func newEngine(t *testing.T, client provider.Client, options ...Option) *Runtime {
	t.Helper()
	options = append([]Option{WithConfig(testConfig()), WithClient(client)}, options...)
	service, err := New(options...)
	require.NoError(t, err)
	runtime := service.Runtime()
	require.NoError(t, runtime.Start(context.Background()))
	t.Cleanup(runtime.Shutdown)
	return runtime
}

func TestService_New_Defaults(t *testing.T) {
	service, err := New()
	require.NoError(t, err)
	assert.Equal(t, "mock", service.Client().Name())
	assert.NotNil(t, service.Runtime())
	assert.NotNil(t, service.Types())
}

func TestRuntime_Run_SequentialChain(t *testing.T) {
	client := provider.NewMock().
		On("Decompose this goal", chainPlanJSON).
		WithFallback("a sufficiently detailed scripted answer for this step")
	runtime := newEngine(t, client, WithToolingSuites(tooling.AllPass()))

	output, err := runtime.Run(context.Background(), "Summarise EV adoption trends")
	require.NoError(t, err)

	assert.Equal(t, "mock", output.Provider)
	assert.Len(t, output.Artifacts, 3)
	require.NotNil(t, output.Final)
	assert.Equal(t, "s3", output.Final.SubtaskID)
	assert.False(t, output.Final.Failed)

	// One planner entry, then a solver and a judge entry per subtask, in
	// dependency order because the chain leaves one subtask per round.
	entries := output.Ledger
	require.Len(t, entries, 7)
	assert.Equal(t, ledger.PlannerStepID, entries[0].StepID)
	assert.Equal(t, ledger.RolePlanner, entries[0].Role)
	assert.Equal(t, ledger.StepID("s1", 1), entries[1].StepID)
	assert.Equal(t, ledger.RoleSolver, entries[1].Role)
	assert.Equal(t, ledger.RoleJudge, entries[2].Role)
	assert.Equal(t, ledger.StepID("s3", 1), entries[5].StepID)
}

func TestRuntime_Run_IndependentSubtasksShareARound(t *testing.T) {
	client := provider.NewMock().
		On("Decompose this goal", diamondPlanJSON).
		WithFallback("a sufficiently detailed scripted answer for this step")
	runtime := newEngine(t, client, WithToolingSuites(tooling.AllPass()))

	output, err := runtime.Run(context.Background(), "Compare two options")
	require.NoError(t, err)

	assert.Len(t, output.Artifacts, 3)
	require.NotNil(t, output.Final)
	assert.Equal(t, "c", output.Final.SubtaskID)
}

func TestRuntime_Run_ExhaustionDegradesButDoesNotFail(t *testing.T) {
	config := testConfig()
	config.MaxRetries = 1
	client := provider.NewMock().
		On("Decompose this goal", chainPlanJSON).
		WithFallback("a sufficiently detailed scripted answer for this step")
	service, err := New(
		WithConfig(config),
		WithClient(client),
		WithToolingSuites(tooling.AllFail("claim is not supported")))
	require.NoError(t, err)
	runtime := service.Runtime()
	require.NoError(t, runtime.Start(context.Background()))
	defer runtime.Shutdown()

	output, err := runtime.Run(context.Background(), "Summarise EV adoption trends")
	require.NoError(t, err)

	require.NotNil(t, output.Final)
	assert.True(t, output.Final.Failed)
	assert.Equal(t, 2, output.Final.Attempts)
	assert.NotEmpty(t, output.Final.Critique)
	for _, artifact := range output.Artifacts {
		assert.True(t, artifact.Failed)
	}
}

func TestRuntime_Run_NotStarted(t *testing.T) {
	service, err := New(WithConfig(testConfig()))
	require.NoError(t, err)

	_, err = service.Runtime().Run(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not started")
}

func TestRuntime_StartRun(t *testing.T) {
	client := provider.NewMock().
		On("Decompose this goal", chainPlanJSON).
		WithFallback("a sufficiently detailed scripted answer for this step")
	runtime := newEngine(t, client, WithToolingSuites(tooling.AllPass()))

	runID, wait, err := runtime.StartRun(context.Background(), "Summarise EV adoption trends")
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	output, err := wait(context.Background(), 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, runID, output.ID)

	stored, err := runtime.Output(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, output.Goal, stored.Goal)
}

func TestRuntime_Run_ProgressListener(t *testing.T) {
	var mux sync.Mutex
	var snapshots []progress.Progress
	client := provider.NewMock().
		On("Decompose this goal", chainPlanJSON).
		WithFallback("a sufficiently detailed scripted answer for this step")
	runtime := newEngine(t, client,
		WithToolingSuites(tooling.AllPass()),
		WithProgressListener(func(snapshot progress.Progress) {
			mux.Lock()
			snapshots = append(snapshots, snapshot)
			mux.Unlock()
		}))

	_, err := runtime.Run(context.Background(), "Summarise EV adoption trends")
	require.NoError(t, err)

	mux.Lock()
	defer mux.Unlock()
	require.NotEmpty(t, snapshots)
	allPassed := false
	for _, snapshot := range snapshots {
		assert.Equal(t, 3, snapshot.TotalSubtasks)
		if snapshot.PassedSubtasks == 3 {
			allPassed = true
		}
	}
	assert.True(t, allPassed)
}

func TestRuntime_Run_PublishesEvents(t *testing.T) {
	eventService := event.New()
	client := provider.NewMock().
		On("Decompose this goal", chainPlanJSON).
		WithFallback("a sufficiently detailed scripted answer for this step")
	runtime := newEngine(t, client,
		WithToolingSuites(tooling.AllPass()),
		WithEventService(eventService))

	_, err := runtime.Run(context.Background(), "Summarise EV adoption trends")
	require.NoError(t, err)

	publisher, err := event.PublisherOf[*execution.Execution](eventService)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := 0; i < 3; i++ {
		anEvent, err := publisher.Consume(ctx)
		require.NoError(t, err)
		assert.Equal(t, string(execution.StatePassed), anEvent.Context.EventType)
	}
}

func TestNewFromScenario(t *testing.T) {
	scenarioYAML := `name: quick
goal: Summarise EV adoption in ${region}
config:
  provider: mock
  maxRetries: 1
  retriever:
    mode: never
parameters:
  - name: region
    value: Norway
`
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenarioYAML), 0o644))

	service, scenario, err := NewFromScenario(context.Background(), path,
		WithToolingSuites(tooling.AllPass()))
	require.NoError(t, err)
	assert.Equal(t, "mock", service.Client().Name())
	assert.Equal(t, 1, service.config.MaxRetries)
	assert.Equal(t, retriever.ModeNever, service.config.Retriever.Mode)
	assert.Equal(t, "Summarise EV adoption in Norway", scenario.ExpandedGoal())

	runtime := service.Runtime()
	require.NoError(t, runtime.Start(context.Background()))
	defer runtime.Shutdown()
	output, err := runtime.Run(context.Background(), scenario.ExpandedGoal())
	require.NoError(t, err)
	assert.NotNil(t, output.Final)
}

func TestDeadlockErrorNamesPendingSubtasks(t *testing.T) {
	err := deadlockError("r1", scheduler.ErrDeadlock, []string{"s2", "s3"})
	assert.True(t, errors.Is(err, scheduler.ErrDeadlock))
	assert.Contains(t, err.Error(), "s2, s3")
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		description string
		mutate      func(*Config)
		expectError bool
	}{
		{description: "defaults are valid", mutate: func(*Config) {}},
		{description: "missing provider", mutate: func(c *Config) { c.Provider = "" }, expectError: true},
		{description: "negative retries", mutate: func(c *Config) { c.MaxRetries = -1 }, expectError: true},
		{description: "unknown effort", mutate: func(c *Config) { c.Effort = "extreme" }, expectError: true},
		{description: "valid effort", mutate: func(c *Config) { c.Effort = "high" }},
		{description: "nameless suite", mutate: func(c *Config) { c.Suites = []SuiteConfig{{}} }, expectError: true},
	}
	for _, testCase := range testCases {
		config := DefaultConfig()
		testCase.mutate(config)
		err := config.Validate()
		if testCase.expectError {
			assert.Error(t, err, testCase.description)
		} else {
			assert.NoError(t, err, testCase.description)
		}
	}
}
