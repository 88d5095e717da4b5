package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropic_Generate(t *testing.T) {
	var seen anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&seen))
		json.NewEncoder(w).Encode(&anthropicResponse{
			Content: []anthropicContent{{Type: "text", Text: "hello "}, {Type: "text", Text: "world"}},
			Model:   "claude-test",
		})
	}))
	defer server.Close()

	client, err := NewAnthropic("test-key", WithAnthropicBaseURL(server.URL), WithAnthropicModel("claude-test"))
	require.NoError(t, err)

	resp, err := client.Generate(context.Background(), &GenerateRequest{
		Role:          "you are a solver",
		Prompt:        "answer",
		Temperature:   0.7,
		RequireSearch: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world", resp.Text)
	assert.Equal(t, "claude-test", resp.Model)
	assert.Equal(t, "you are a solver", seen.System)
	assert.InDelta(t, 0.7, seen.Temperature, 1e-9)
	require.Len(t, seen.Tools, 1)
	assert.Equal(t, "web_search", seen.Tools[0].Name)
}

func TestAnthropic_RateLimitError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"type": "rate_limit_error", "message": "slow down"},
		})
	}))
	defer server.Close()

	client, err := NewAnthropic("test-key", WithAnthropicBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), &GenerateRequest{Prompt: "x"})
	require.Error(t, err)
	var pErr *Error
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, http.StatusTooManyRequests, pErr.StatusCode)
	assert.True(t, IsRateLimit(err))
}

func TestOpenAI_Generate(t *testing.T) {
	var seen openAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&seen))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"model":   "gpt-test",
			"choices": []map[string]interface{}{{"message": map[string]string{"role": "assistant", "content": "done"}}},
		})
	}))
	defer server.Close()

	client, err := NewOpenAI("test-key", WithOpenAIBaseURL(server.URL), WithOpenAIModel("gpt-test"))
	require.NoError(t, err)

	resp, err := client.Generate(context.Background(), &GenerateRequest{Prompt: "task", Effort: EffortHigh})
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Text)
	assert.Equal(t, "high", seen.ReasoningEffort)
}

func TestIsRateLimit(t *testing.T) {
	testCases := []struct {
		description string
		err         error
		expect      bool
	}{
		{description: "nil error", err: nil, expect: false},
		{description: "typed 429", err: &Error{Provider: "anthropic", StatusCode: 429}, expect: true},
		{description: "typed 529 overload", err: &Error{Provider: "anthropic", StatusCode: 529}, expect: true},
		{description: "typed 500", err: &Error{Provider: "openai", StatusCode: 500}, expect: false},
		{description: "rate limit text", err: fmt.Errorf("request failed: rate limit exceeded"), expect: true},
		{description: "unrelated text", err: fmt.Errorf("connection refused"), expect: false},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, IsRateLimit(testCase.err), testCase.description)
	}
}

func TestMock_Scripting(t *testing.T) {
	mock := NewMock().
		On("derivative", "2x").
		WithFallback("generic")

	resp, err := mock.Generate(context.Background(), &GenerateRequest{Prompt: "What is the derivative of x^2?"})
	require.NoError(t, err)
	assert.Equal(t, "2x", resp.Text)

	resp, err = mock.Generate(context.Background(), &GenerateRequest{Prompt: "something else"})
	require.NoError(t, err)
	assert.Equal(t, "generic", resp.Text)
	assert.Equal(t, 2, mock.CallCount())
}

func TestMock_FailFirst(t *testing.T) {
	mock := NewMock().FailFirst(1, &Error{Provider: "mock", StatusCode: 429, Message: "busy"})

	_, err := mock.Generate(context.Background(), &GenerateRequest{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, IsRateLimit(err))

	resp, err := mock.Generate(context.Background(), &GenerateRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "mock response", resp.Text)
}
