package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Mock is a scripted Client used by tests and the examples. Responses are
// served in registration order per matching prefix; when the script runs out
// the fallback text is returned.
type Mock struct {
	model    string
	fallback string

	mux       sync.Mutex
	scripted  []mockRule
	calls     []*GenerateRequest
	failures  int
	failError error
}

type mockRule struct {
	contains string
	text     string
}

// NewMock creates a mock client.
func NewMock() *Mock {
	return &Mock{model: "mock-model", fallback: "mock response"}
}

// Name implements Client.
func (m *Mock) Name() string { return "mock" }

// Model implements Client.
func (m *Mock) Model() string { return m.model }

// WithFallback sets the default response text.
func (m *Mock) WithFallback(text string) *Mock {
	m.fallback = text
	return m
}

// On registers a scripted response for prompts containing the fragment.
func (m *Mock) On(contains, text string) *Mock {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.scripted = append(m.scripted, mockRule{contains: contains, text: text})
	return m
}

// FailFirst makes the next n Generate calls fail with err before the mock
// recovers, exercising retry paths.
func (m *Mock) FailFirst(n int, err error) *Mock {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.failures = n
	m.failError = err
	return m
}

// Calls returns a snapshot of the requests seen so far.
func (m *Mock) Calls() []*GenerateRequest {
	m.mux.Lock()
	defer m.mux.Unlock()
	result := make([]*GenerateRequest, len(m.calls))
	copy(result, m.calls)
	return result
}

// CallCount returns how many Generate calls were made.
func (m *Mock) CallCount() int {
	m.mux.Lock()
	defer m.mux.Unlock()
	return len(m.calls)
}

// Generate implements Client.
func (m *Mock) Generate(ctx context.Context, request *GenerateRequest) (*GenerateResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mux.Lock()
	defer m.mux.Unlock()
	m.calls = append(m.calls, request)
	if m.failures > 0 {
		m.failures--
		err := m.failError
		if err == nil {
			err = fmt.Errorf("mock: scripted failure")
		}
		return nil, err
	}
	for _, rule := range m.scripted {
		if rule.contains != "" && containsFold(request.Prompt, rule.contains) {
			return &GenerateResponse{Text: rule.text, Model: m.model}, nil
		}
	}
	return &GenerateResponse{Text: m.fallback, Model: m.model}, nil
}

func containsFold(text, fragment string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(fragment))
}
