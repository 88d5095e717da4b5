package extension

import (
	"fmt"
	"sync"

	"github.com/viant/conclave/service/provider"
	"github.com/viant/conclave/service/tooling"
	"github.com/viant/structology/conv"
)

// ProviderOptions carries the knobs a provider factory may honour.
type ProviderOptions struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
}

// ProviderFactory builds a backend client from resolved options.
type ProviderFactory func(options ProviderOptions) (provider.Client, error)

// SuiteFactory builds a tooling suite from its raw configuration.
type SuiteFactory func(config map[string]interface{}) (tooling.Suite, error)

// Registry maps provider and tooling-suite names onto factories.
type Registry struct {
	mux       sync.RWMutex
	providers map[string]ProviderFactory
	suites    map[string]SuiteFactory
	converter *conv.Converter
}

// New creates a registry pre-populated with the built-in providers
// (anthropic, openai, mock) and tooling suites (schema, exec).
func New() *Registry {
	options := conv.DefaultOptions()
	options.IgnoreUnmapped = true
	registry := &Registry{
		providers: make(map[string]ProviderFactory),
		suites:    make(map[string]SuiteFactory),
		converter: conv.NewConverter(options),
	}

	registry.RegisterProvider("anthropic", func(o ProviderOptions) (provider.Client, error) {
		var clientOptions []provider.AnthropicOption
		if o.Model != "" {
			clientOptions = append(clientOptions, provider.WithAnthropicModel(o.Model))
		}
		if o.BaseURL != "" {
			clientOptions = append(clientOptions, provider.WithAnthropicBaseURL(o.BaseURL))
		}
		if o.MaxTokens > 0 {
			clientOptions = append(clientOptions, provider.WithAnthropicMaxTokens(o.MaxTokens))
		}
		return provider.NewAnthropic(o.APIKey, clientOptions...)
	})
	registry.RegisterProvider("openai", func(o ProviderOptions) (provider.Client, error) {
		var clientOptions []provider.OpenAIOption
		if o.Model != "" {
			clientOptions = append(clientOptions, provider.WithOpenAIModel(o.Model))
		}
		if o.BaseURL != "" {
			clientOptions = append(clientOptions, provider.WithOpenAIBaseURL(o.BaseURL))
		}
		return provider.NewOpenAI(o.APIKey, clientOptions...)
	})
	registry.RegisterProvider("mock", func(ProviderOptions) (provider.Client, error) {
		return provider.NewMock(), nil
	})

	registry.RegisterSuite("schema", func(config map[string]interface{}) (tooling.Suite, error) {
		suiteConfig := tooling.DefaultSchemaConfig()
		if err := registry.convert(config, &suiteConfig); err != nil {
			return nil, err
		}
		return tooling.NewSchema(suiteConfig), nil
	})
	registry.RegisterSuite("exec", func(config map[string]interface{}) (tooling.Suite, error) {
		var suiteConfig tooling.ExecConfig
		if err := registry.convert(config, &suiteConfig); err != nil {
			return nil, err
		}
		return tooling.NewExec(suiteConfig), nil
	})
	return registry
}

// RegisterProvider adds or replaces a provider factory.
func (r *Registry) RegisterProvider(name string, factory ProviderFactory) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.providers[name] = factory
}

// Provider builds a client for the named provider.
func (r *Registry) Provider(name string, options ProviderOptions) (provider.Client, error) {
	r.mux.RLock()
	factory, ok := r.providers[name]
	r.mux.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", name)
	}
	return factory(options)
}

// RegisterSuite adds or replaces a tooling-suite factory.
func (r *Registry) RegisterSuite(name string, factory SuiteFactory) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.suites[name] = factory
}

// Suite builds the named tooling suite.
func (r *Registry) Suite(name string, config map[string]interface{}) (tooling.Suite, error) {
	r.mux.RLock()
	factory, ok := r.suites[name]
	r.mux.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown tooling suite %q", name)
	}
	return factory(config)
}

func (r *Registry) convert(source map[string]interface{}, target interface{}) error {
	if len(source) == 0 {
		return nil
	}
	return r.converter.Convert(source, target)
}
