package processor

import (
	"github.com/viant/conclave/runtime/execution"
	"github.com/viant/conclave/service/messaging"
)

// Option customises a processor service.
type Option func(*Service)

// WithQueue sets the shared execution queue implementation
func WithQueue(queue messaging.Queue[execution.Execution]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithExecutor sets the executor driving each execution
func WithExecutor(executor Executor) Option {
	return func(s *Service) {
		s.executor = executor
	}
}

// WithRouter sets the run router resolving sessions and completion queues
func WithRouter(router Router) Option {
	return func(s *Service) {
		s.router = router
	}
}

// WithWorkers sets the number of worker goroutines
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.WorkerCount = count
	}
}

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}
