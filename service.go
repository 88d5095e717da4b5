package conclave

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/conclave/extension"
	"github.com/viant/conclave/policy"
	"github.com/viant/conclave/progress"
	"github.com/viant/conclave/runtime/execution"
	"github.com/viant/conclave/runtime/run"
	"github.com/viant/conclave/service/dao"
	runmemory "github.com/viant/conclave/service/dao/run/memory"
	"github.com/viant/conclave/service/event"
	"github.com/viant/conclave/service/executor"
	"github.com/viant/conclave/service/judge"
	"github.com/viant/conclave/service/messaging"
	mmemory "github.com/viant/conclave/service/messaging/memory"
	"github.com/viant/conclave/service/meta"
	"github.com/viant/conclave/service/planner"
	"github.com/viant/conclave/service/processor"
	"github.com/viant/conclave/service/provider"
	"github.com/viant/conclave/service/provider/secret"
	"github.com/viant/conclave/service/solver"
	"github.com/viant/conclave/service/tooling"
	"github.com/viant/x"
)

// Service is the engine façade. It assembles the planner, solver, judge,
// retriever and processor around one backend client and exposes runs through
// the Runtime.
type Service struct {
	config         *Config
	registry       *extension.Registry
	types          *extension.Types
	secrets        *secret.Resolver
	client         provider.Client
	queue          messaging.Queue[execution.Execution]
	runDAO         dao.Service[string, run.Output]
	suites         []tooling.Suite
	metaService    *meta.Service
	metaBaseURL    string
	metaFsOptions  []storage.Option
	eventService   *event.Service
	onProgress     func(progress.Progress)
	extensionTypes []*x.Type
	workers        int

	runtime *Runtime
}

// New creates a service. Without options it uses the mock provider, an
// in-memory queue and run store, and the schema tooling suite.
func New(options ...Option) (*Service, error) {
	s := &Service{}
	for _, option := range options {
		option(s)
	}
	if err := s.ensureBaseSetup(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewFromScenario loads a scenario, applies its config overrides on top of
// the defaults and creates a service for it. Options run after the overrides,
// so they win.
func NewFromScenario(ctx context.Context, URL string, options ...Option) (*Service, *meta.Scenario, error) {
	scenario, err := meta.New(afs.New(), "").Load(ctx, URL)
	if err != nil {
		return nil, nil, err
	}
	config := DefaultConfig()
	if err := config.Apply(scenario.Config); err != nil {
		return nil, nil, fmt.Errorf("scenario %v: %w", URL, err)
	}
	service, err := New(append([]Option{WithConfig(config)}, options...)...)
	if err != nil {
		return nil, nil, err
	}
	return service, scenario, nil
}

func (s *Service) ensureBaseSetup() error {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.workers > 0 {
		s.config.Processor.WorkerCount = s.workers
	}
	if s.registry == nil {
		s.registry = extension.New()
	}
	if s.types == nil {
		s.types = extension.DefaultTypes()
	}
	for _, aType := range s.extensionTypes {
		s.types.Register(aType)
	}
	if s.metaService == nil {
		s.metaService = meta.New(afs.New(), s.metaBaseURL, s.metaFsOptions...)
	}
	if s.client == nil {
		client, err := s.buildClient(context.Background())
		if err != nil {
			return err
		}
		s.client = client
	}
	if s.queue == nil {
		s.queue = mmemory.NewQueue[execution.Execution](mmemory.DefaultConfig())
	}
	if s.runDAO == nil {
		s.runDAO = runmemory.New()
	}
	if len(s.suites) == 0 {
		for _, suiteConfig := range s.config.Suites {
			suite, err := s.registry.Suite(suiteConfig.Name, suiteConfig.Config)
			if err != nil {
				return err
			}
			s.suites = append(s.suites, suite)
		}
	}

	solverConfig := s.config.Solver
	if solverConfig.Effort == "" {
		solverConfig.Effort = s.config.Effort
	}
	solverService := solver.New(s.client, nil, solverConfig)
	judgeService := judge.New(s.client, s.suites...)
	executorService := executor.NewService(solverService, judgeService, executor.Config{
		MaxRetries: s.config.MaxRetries,
		FanOut:     s.config.FanOut,
	})

	s.runtime = &Runtime{
		config:       s.config,
		client:       s.client,
		planner:      planner.New(s.client),
		queue:        s.queue,
		runDAO:       s.runDAO,
		eventService: s.eventService,
		onProgress:   s.onProgress,
		sessions:     make(map[string]*run.Session),
		completions:  make(map[string]messaging.Queue[execution.Execution]),
		trackers:     make(map[string]*progress.Progress),
		policies:     make(map[string]*policy.Policy),
	}
	processorService, err := processor.New(
		processor.WithQueue(s.queue),
		processor.WithExecutor(executorService),
		processor.WithRouter(s.runtime),
		processor.WithConfig(s.config.Processor))
	if err != nil {
		return err
	}
	s.runtime.processor = processorService
	return nil
}

// buildClient resolves the API key and constructs the configured provider
// client. The mock provider needs no key; a custom provider resolves one only
// when a secret resource is configured.
func (s *Service) buildClient(ctx context.Context) (provider.Client, error) {
	providerOptions := extension.ProviderOptions{
		Model:     s.config.Model,
		BaseURL:   s.config.BaseURL,
		MaxTokens: s.config.MaxTokens,
	}
	needsKey := false
	switch s.config.Provider {
	case "anthropic", "openai":
		needsKey = true
	case "mock":
	default:
		needsKey = s.config.Secrets.KeyURL != ""
	}
	if needsKey {
		if s.secrets == nil {
			s.secrets = secret.New(s.config.Secrets.KeyURL)
		}
		key, err := s.secrets.Resolve(ctx, s.config.Provider)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve api key for %v: %w", s.config.Provider, err)
		}
		providerOptions.APIKey = key
	}
	return s.registry.Provider(s.config.Provider, providerOptions)
}

// Runtime returns the run orchestrator.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Client returns the backend client in use.
func (s *Service) Client() provider.Client {
	return s.client
}

// Types returns the extension type registry.
func (s *Service) Types() *extension.Types {
	return s.types
}

// LoadScenario loads a scenario definition. Relative locations resolve
// against the meta base URL.
func (s *Service) LoadScenario(ctx context.Context, location string) (*meta.Scenario, error) {
	return s.metaService.Load(ctx, location)
}
