package conclave

import (
	"github.com/viant/afs/storage"
	"github.com/viant/conclave/extension"
	"github.com/viant/conclave/progress"
	"github.com/viant/conclave/runtime/execution"
	"github.com/viant/conclave/runtime/run"
	"github.com/viant/conclave/service/dao"
	"github.com/viant/conclave/service/event"
	"github.com/viant/conclave/service/messaging"
	"github.com/viant/conclave/service/meta"
	"github.com/viant/conclave/service/provider"
	"github.com/viant/conclave/service/provider/secret"
	"github.com/viant/conclave/service/tooling"
	"github.com/viant/conclave/tracing"
	"github.com/viant/x"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the service during construction.
type Option func(s *Service)

// WithConfig sets the engine configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithClient sets the backend client directly, bypassing the provider
// registry and secret resolution.
func WithClient(client provider.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

// WithRegistry sets the provider and tooling-suite registry.
func WithRegistry(registry *extension.Registry) Option {
	return func(s *Service) {
		s.registry = registry
	}
}

// WithSecretResolver sets the API key resolver.
func WithSecretResolver(resolver *secret.Resolver) Option {
	return func(s *Service) {
		s.secrets = resolver
	}
}

// WithQueue sets the shared execution queue.
func WithQueue(queue messaging.Queue[execution.Execution]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithRunDAO sets the durable run store.
func WithRunDAO(service dao.Service[string, run.Output]) Option {
	return func(s *Service) {
		s.runDAO = service
	}
}

// WithToolingSuites sets the judge's tooling suites, overriding the
// configured suite names.
func WithToolingSuites(suites ...tooling.Suite) Option {
	return func(s *Service) {
		s.suites = suites
	}
}

// WithEventService sets the event service run completions are published to.
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.eventService = service
	}
}

// WithMetaService sets the scenario loader.
func WithMetaService(service *meta.Service) Option {
	return func(s *Service) {
		s.metaService = service
	}
}

// WithMetaBaseURL sets the base URL relative scenario locations resolve
// against.
func WithMetaBaseURL(url string) Option {
	return func(s *Service) {
		s.metaBaseURL = url
	}
}

// WithMetaFsOptions sets the file system options of the scenario loader.
func WithMetaFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.metaFsOptions = options
	}
}

// WithProgressListener registers a callback invoked with a snapshot after
// every counter change of a run.
func WithProgressListener(onChange func(progress.Progress)) Option {
	return func(s *Service) {
		s.onProgress = onChange
	}
}

// WithExtensionTypes registers additional types with the type registry.
func WithExtensionTypes(types ...*x.Type) Option {
	return func(s *Service) {
		s.extensionTypes = append(s.extensionTypes, types...)
	}
}

// WithWorkers sets the processor worker count.
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.workers = count
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The function is
// safe to call multiple times – the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter. This enables
// integrations with exporters other than the built-in stdout exporter, for example OTLP, Jaeger or
// Zipkin. The function is safe to call multiple times – the first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
