package conclave

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/conclave/internal/idgen"
	"github.com/viant/conclave/model"
	"github.com/viant/conclave/policy"
	"github.com/viant/conclave/progress"
	"github.com/viant/conclave/runtime/execution"
	"github.com/viant/conclave/runtime/ledger"
	"github.com/viant/conclave/runtime/run"
	"github.com/viant/conclave/service/dao"
	"github.com/viant/conclave/service/event"
	"github.com/viant/conclave/service/messaging"
	mmemory "github.com/viant/conclave/service/messaging/memory"
	"github.com/viant/conclave/service/planner"
	"github.com/viant/conclave/service/processor"
	"github.com/viant/conclave/service/provider"
	"github.com/viant/conclave/service/retriever"
	"github.com/viant/conclave/service/scheduler"
	"github.com/viant/conclave/tracing"
)

// Wait blocks until a started run finishes and returns its output. A wait
// function may be called once; a non-positive timeout waits indefinitely.
type Wait func(ctx context.Context, timeout time.Duration) (*run.Output, error)

// Runtime orchestrates runs. It plans a goal into a subtask graph, schedules
// ready frontiers round by round onto the shared execution queue and collects
// terminal executions from per-run completion queues. It implements
// processor.Router so that workers can map an execution back to its run.
type Runtime struct {
	config    *Config
	client    provider.Client
	planner   *planner.Service
	processor *processor.Service
	queue     messaging.Queue[execution.Execution]
	runDAO    dao.Service[string, run.Output]

	eventService *event.Service
	onProgress   func(progress.Progress)

	started atomic.Bool

	mux         sync.RWMutex
	sessions    map[string]*run.Session
	completions map[string]messaging.Queue[execution.Execution]
	trackers    map[string]*progress.Progress
	policies    map[string]*policy.Policy
}

// Start launches the processor worker pool. Runs fail until the runtime is
// started.
func (r *Runtime) Start(ctx context.Context) error {
	if err := r.processor.Start(ctx); err != nil {
		return err
	}
	r.started.Store(true)
	return nil
}

// Shutdown stops the worker pool. In-flight executions finish first.
func (r *Runtime) Shutdown() {
	if !r.started.CompareAndSwap(true, false) {
		return
	}
	r.processor.Shutdown()
}

// Session implements processor.Router.
func (r *Runtime) Session(runID string) (*run.Session, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	session, ok := r.sessions[runID]
	return session, ok
}

// CompletionQueue implements processor.Router.
func (r *Runtime) CompletionQueue(runID string) (messaging.Queue[execution.Execution], bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	queue, ok := r.completions[runID]
	return queue, ok
}

// RunContext implements processor.Router. It rebinds the run's progress
// tracker and policy onto the worker context so counter updates and tooling
// gates keep working across the queue hand-off.
func (r *Runtime) RunContext(ctx context.Context, runID string) context.Context {
	r.mux.RLock()
	tracker := r.trackers[runID]
	runPolicy := r.policies[runID]
	r.mux.RUnlock()
	if tracker != nil {
		ctx = progress.WithTracker(ctx, tracker)
	}
	if runPolicy != nil {
		ctx = policy.WithPolicy(ctx, runPolicy)
	}
	return ctx
}

// Run plans the goal and drives the run to completion, blocking until the
// final artifact is available or the run fails. Subtask exhaustion degrades
// the affected artifact but does not fail the run; a scheduling deadlock or
// an internal executor error does.
func (r *Runtime) Run(ctx context.Context, goal string) (*run.Output, error) {
	runID := idgen.New()
	return r.execute(ctx, runID, goal)
}

// StartRun launches the run asynchronously and returns its id together with
// a wait function.
func (r *Runtime) StartRun(ctx context.Context, goal string) (string, Wait, error) {
	if strings.TrimSpace(goal) == "" {
		return "", nil, fmt.Errorf("goal is required")
	}
	runID := idgen.New()
	type result struct {
		output *run.Output
		err    error
	}
	done := make(chan result, 1)
	go func() {
		output, err := r.execute(ctx, runID, goal)
		done <- result{output: output, err: err}
	}()
	wait := func(waitCtx context.Context, timeout time.Duration) (*run.Output, error) {
		if timeout > 0 {
			var cancel context.CancelFunc
			waitCtx, cancel = context.WithTimeout(waitCtx, timeout)
			defer cancel()
		}
		select {
		case res := <-done:
			return res.output, res.err
		case <-waitCtx.Done():
			return nil, waitCtx.Err()
		}
	}
	return runID, wait, nil
}

// Output loads the durable record of a finished run.
func (r *Runtime) Output(ctx context.Context, runID string) (*run.Output, error) {
	return r.runDAO.Load(ctx, runID)
}

// Progress returns a snapshot of the run's counters, when the run is live.
func (r *Runtime) Progress(runID string) (progress.Progress, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	tracker, ok := r.trackers[runID]
	if !ok {
		return progress.Progress{}, false
	}
	return tracker.Snapshot(), true
}

func (r *Runtime) execute(ctx context.Context, runID, goal string) (output *run.Output, err error) {
	ctx, span := tracing.StartSpan(ctx, "runtime.Run", "SERVER")
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"run.id": runID})

	if !r.started.Load() {
		return nil, fmt.Errorf("runtime is not started")
	}
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, fmt.Errorf("goal is required")
	}

	plan, usedFallback, err := r.planner.Plan(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("failed to plan %q: %w", goal, err)
	}

	session := run.NewSession(runID, goal, plan)
	session.Retriever = retriever.New(r.client, r.config.Retriever)
	session.Ledger.Append(ledger.Entry{
		StepID: ledger.PlannerStepID,
		Role:   ledger.RolePlanner,
		Input:  goal,
		Output: planSummary(plan, usedFallback),
	})

	ctx, tracker := progress.WithNewTracker(ctx, runID, goal, r.onProgress)
	progress.UpdateCtx(ctx, progress.Delta{Total: len(plan.Subtasks), Pending: len(plan.Subtasks)})

	completions := r.register(runID, session, tracker, policy.FromContext(ctx))
	defer r.unregister(runID)

	for round := 0; !session.Completed(); round++ {
		frontier, frontierErr := scheduler.Frontier(plan, session.IsDone)
		if frontierErr != nil {
			err = deadlockError(runID, frontierErr, session.Pending())
			return nil, err
		}
		for _, subtask := range frontier {
			anExecution := execution.New(runID, subtask, round)
			anExecution.Schedule()
			if err = r.queue.Publish(ctx, anExecution); err != nil {
				return nil, fmt.Errorf("failed to schedule subtask %v: %w", subtask.ID, err)
			}
		}
		for i := 0; i < len(frontier); i++ {
			completed, completionErr := awaitCompletion(ctx, completions)
			if completionErr != nil {
				err = completionErr
				return nil, err
			}
			r.publishEvent(ctx, completed)
			if completed.Error != "" {
				err = fmt.Errorf("subtask %v failed: %v", completed.SubtaskID, completed.Error)
				return nil, err
			}
			session.MarkDone(completed.Artifact)
		}
	}

	output = session.Output(r.client.Name(), r.client.Model())
	if saveErr := r.runDAO.Save(ctx, output); saveErr != nil {
		log.Printf("runtime: failed to persist run %v: %v", runID, saveErr)
	}
	return output, nil
}

func (r *Runtime) register(runID string, session *run.Session, tracker *progress.Progress, runPolicy *policy.Policy) messaging.Queue[execution.Execution] {
	completions := mmemory.NewQueue[execution.Execution](mmemory.DefaultConfig())
	r.mux.Lock()
	defer r.mux.Unlock()
	r.sessions[runID] = session
	r.completions[runID] = completions
	r.trackers[runID] = tracker
	if runPolicy != nil {
		r.policies[runID] = runPolicy
	}
	return completions
}

func (r *Runtime) unregister(runID string) {
	r.mux.Lock()
	defer r.mux.Unlock()
	delete(r.sessions, runID)
	delete(r.completions, runID)
	delete(r.trackers, runID)
	delete(r.policies, runID)
}

// deadlockError wraps a scheduling deadlock with the subtasks still pending so
// the failure names the stuck part of the graph.
func deadlockError(runID string, cause error, pending []string) error {
	return fmt.Errorf("run %v: %w, pending subtasks: %v", runID, cause, strings.Join(pending, ", "))
}

// awaitCompletion consumes one terminal execution from the run's completion
// queue.
func awaitCompletion(ctx context.Context, queue messaging.Queue[execution.Execution]) (*execution.Execution, error) {
	message, err := queue.Consume(ctx)
	if err != nil {
		return nil, err
	}
	completed := message.T()
	if err := message.Ack(); err != nil {
		return nil, err
	}
	return completed, nil
}

// publishEvent reports a terminal execution to the event service, when one is
// configured. Event delivery is best effort.
func (r *Runtime) publishEvent(ctx context.Context, completed *execution.Execution) {
	if r.eventService == nil {
		return
	}
	publisher, err := event.PublisherOf[*execution.Execution](r.eventService)
	if err != nil {
		log.Printf("runtime: failed to resolve event publisher: %v", err)
		return
	}
	eventContext := &event.Context{
		RunID:     completed.RunID,
		SubtaskID: completed.SubtaskID,
		EventType: string(completed.State),
	}
	if completed.StartedAt != nil && completed.CompletedAt != nil {
		eventContext.TimeTakenMs = int(completed.CompletedAt.Sub(*completed.StartedAt).Milliseconds())
	}
	if err := publisher.Publish(ctx, event.NewEvent[*execution.Execution](eventContext, completed.Clone())); err != nil {
		log.Printf("runtime: failed to publish event for %v: %v", completed.SubtaskID, err)
	}
}

// planSummary renders the decomposition for the planner's ledger entry.
func planSummary(plan *model.Plan, usedFallback bool) string {
	var builder strings.Builder
	if usedFallback {
		builder.WriteString("fallback plan: ")
	} else {
		builder.WriteString("plan: ")
	}
	for i, subtask := range plan.Subtasks {
		if i > 0 {
			builder.WriteString(", ")
		}
		fmt.Fprintf(&builder, "%s(%s)", subtask.ID, subtask.Kind)
		if len(subtask.DependsOn) > 0 {
			fmt.Fprintf(&builder, " after %s", strings.Join(subtask.DependsOn, "+"))
		}
	}
	return builder.String()
}
