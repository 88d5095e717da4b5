package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com/v1"
	anthropicDefaultModel   = "claude-sonnet-4-0"
	anthropicVersion        = "2023-06-01"
	anthropicDefaultTokens  = 4096
)

// Anthropic implements Client against the Anthropic messages API.
type Anthropic struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicTool struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	MaxUses int    `json:"max_uses,omitempty"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
	Tools       []anthropicTool    `json:"tools,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
	Model   string             `json:"model"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// AnthropicOption customises the client.
type AnthropicOption func(a *Anthropic)

// WithAnthropicBaseURL overrides the API endpoint (tests point it at a local
// httptest server).
func WithAnthropicBaseURL(baseURL string) AnthropicOption {
	return func(a *Anthropic) { a.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// WithAnthropicModel overrides the default model.
func WithAnthropicModel(model string) AnthropicOption {
	return func(a *Anthropic) {
		if model != "" {
			a.model = model
		}
	}
}

// WithAnthropicMaxTokens overrides the default response cap.
func WithAnthropicMaxTokens(maxTokens int) AnthropicOption {
	return func(a *Anthropic) {
		if maxTokens > 0 {
			a.maxTokens = maxTokens
		}
	}
}

// NewAnthropic creates an Anthropic-backed client.
func NewAnthropic(apiKey string, options ...AnthropicOption) (*Anthropic, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic: api key is required")
	}
	ret := &Anthropic{
		apiKey:    apiKey,
		baseURL:   anthropicDefaultBaseURL,
		model:     anthropicDefaultModel,
		maxTokens: anthropicDefaultTokens,
		client:    &http.Client{Timeout: 120 * time.Second},
	}
	for _, option := range options {
		option(ret)
	}
	return ret, nil
}

// Name implements Client.
func (a *Anthropic) Name() string { return "anthropic" }

// Model implements Client.
func (a *Anthropic) Model() string { return a.model }

// Generate implements Client.
func (a *Anthropic) Generate(ctx context.Context, request *GenerateRequest) (*GenerateResponse, error) {
	payload := &anthropicRequest{
		Model:       a.model,
		System:      request.Role,
		Messages:    []anthropicMessage{{Role: "user", Content: request.Prompt}},
		MaxTokens:   a.maxTokens,
		Temperature: request.Temperature,
	}
	if request.MaxTokens > 0 {
		payload.MaxTokens = request.MaxTokens
	}
	if request.RequireSearch {
		payload.Tools = []anthropicTool{{Type: "web_search_20250305", Name: "web_search", MaxUses: 5}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic request: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp anthropicResponse
	if uErr := json.Unmarshal(data, &resp); uErr != nil && httpResp.StatusCode == http.StatusOK {
		return nil, fmt.Errorf("decode response: %w", uErr)
	}
	if httpResp.StatusCode != http.StatusOK {
		message := string(data)
		if resp.Error != nil {
			message = resp.Error.Message
		}
		return nil, &Error{Provider: a.Name(), StatusCode: httpResp.StatusCode, Message: message}
	}

	var text strings.Builder
	for _, content := range resp.Content {
		if content.Type == "text" {
			text.WriteString(content.Text)
		}
	}
	model := resp.Model
	if model == "" {
		model = a.model
	}
	return &GenerateResponse{Text: text.String(), Model: model}, nil
}
