package processor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/viant/conclave/runtime/execution"
	"github.com/viant/conclave/runtime/run"
	"github.com/viant/conclave/service/messaging"
	"github.com/viant/conclave/tracing"
)

// Config represents processor service configuration
type Config struct {
	// WorkerCount is the number of workers consuming the execution queue
	WorkerCount int `json:"workerCount" yaml:"workerCount"`
}

// DefaultConfig returns the default processor configuration
func DefaultConfig() Config {
	return Config{WorkerCount: 8}
}

// Executor drives one execution to a terminal state.
type Executor interface {
	Execute(ctx context.Context, anExecution *execution.Execution, session *run.Session) error
}

// Router resolves per-run state for workers. The runtime implements it – the
// execution queue is shared across runs, so a worker needs to map an
// execution back to its run's session and completion queue.
type Router interface {
	// Session returns the run's in-memory state
	Session(runID string) (*run.Session, bool)

	// CompletionQueue returns the queue the run's round barrier consumes
	CompletionQueue(runID string) (messaging.Queue[execution.Execution], bool)

	// RunContext rebinds the run's context values (progress tracker, policy)
	// onto the worker context. Worker contexts derive from Start, not from the
	// run, so per-run values would otherwise never reach the executor.
	RunContext(ctx context.Context, runID string) context.Context
}

// Service hosts the workers that drive subtask executions. Every worker
// consumes items from the shared execution queue, runs the executor's retry
// machine and reports the terminal execution on the owning run's completion
// queue.
type Service struct {
	config   Config
	queue    messaging.Queue[execution.Execution]
	executor Executor
	router   Router

	workers    []*worker
	workerWg   sync.WaitGroup
	shutdownCh chan struct{}
}

type worker struct {
	id       int
	service  *Service
	ctx      context.Context
	cancelFn context.CancelFunc
}

// New creates a processor service
func New(options ...Option) (*Service, error) {
	s := &Service{
		config:     DefaultConfig(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if s.queue == nil {
		return nil, fmt.Errorf("message queue is required")
	}
	if s.router == nil {
		return nil, fmt.Errorf("router is required")
	}
	if s.config.WorkerCount <= 0 {
		s.config.WorkerCount = DefaultConfig().WorkerCount
	}
	return s, nil
}

// Start launches the worker pool.
func (s *Service) Start(ctx context.Context) error {
	for i := 0; i < s.config.WorkerCount; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		worker := &worker{
			id:       i,
			service:  s,
			ctx:      workerCtx,
			cancelFn: cancel,
		}
		s.workers = append(s.workers, worker)
		s.workerWg.Add(1)
		go worker.run()
	}
	return nil
}

// run processes messages from the queue
func (w *worker) run() {
	defer w.service.workerWg.Done()

	for {
		msg, err := w.service.queue.Consume(w.ctx)
		if err != nil {
			// Context was cancelled – graceful shutdown.
			if errors.Is(err, context.Canceled) {
				return
			}
			// Transient error; back off a bit.
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if msg == nil {
			continue
		}
		if pErr := w.service.processMessage(w.ctx, msg); pErr != nil {
			log.Printf("worker %d: failed to process message: %v", w.id, pErr)
		}
	}
}

// processMessage drives one execution to a terminal state and hands it back
// to the owning run. An executor error is recorded on the execution rather
// than Nacked – redelivery would replay backend calls, and the run's round
// barrier must learn about the failure either way.
func (s *Service) processMessage(ctx context.Context, message messaging.Message[execution.Execution]) (err error) {
	anExecution := message.T()

	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("processor.execute %s", anExecution.SubtaskID), "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"run.id": anExecution.RunID, "subtask.id": anExecution.SubtaskID})

	session, ok := s.router.Session(anExecution.RunID)
	if !ok {
		// The run is gone (already failed or finished); drop the work.
		log.Printf("processor: no session for run %v, dropping subtask %v", anExecution.RunID, anExecution.SubtaskID)
		return message.Ack()
	}
	completions, ok := s.router.CompletionQueue(anExecution.RunID)
	if !ok {
		log.Printf("processor: no completion queue for run %v, dropping subtask %v", anExecution.RunID, anExecution.SubtaskID)
		return message.Ack()
	}

	ctx = s.router.RunContext(ctx, anExecution.RunID)
	ctx = execution.WithExecution(ctx, anExecution)

	if execErr := s.executor.Execute(ctx, anExecution, session); execErr != nil {
		anExecution.Error = execErr.Error()
	}
	if err = completions.Publish(ctx, anExecution); err != nil {
		return message.Nack(err)
	}
	return message.Ack()
}

// Shutdown stops the processor service
func (s *Service) Shutdown() {
	close(s.shutdownCh)
	for _, worker := range s.workers {
		worker.cancelFn()
	}
	s.workerWg.Wait()
}
