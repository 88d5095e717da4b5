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
	openAIDefaultBaseURL = "https://api.openai.com/v1"
	openAIDefaultModel   = "gpt-4o"
)

// OpenAI implements Client against the OpenAI chat completions API.
type OpenAI struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model           string          `json:"model"`
	Messages        []openAIMessage `json:"messages"`
	Temperature     float64         `json:"temperature,omitempty"`
	MaxTokens       int             `json:"max_tokens,omitempty"`
	ReasoningEffort string          `json:"reasoning_effort,omitempty"`
}

type openAIResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// OpenAIOption customises the client.
type OpenAIOption func(o *OpenAI)

// WithOpenAIBaseURL overrides the API endpoint.
func WithOpenAIBaseURL(baseURL string) OpenAIOption {
	return func(o *OpenAI) { o.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// WithOpenAIModel overrides the default model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(o *OpenAI) {
		if model != "" {
			o.model = model
		}
	}
}

// NewOpenAI creates an OpenAI-backed client.
func NewOpenAI(apiKey string, options ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: api key is required")
	}
	ret := &OpenAI{
		apiKey:  apiKey,
		baseURL: openAIDefaultBaseURL,
		model:   openAIDefaultModel,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
	for _, option := range options {
		option(ret)
	}
	return ret, nil
}

// Name implements Client.
func (o *OpenAI) Name() string { return "openai" }

// Model implements Client.
func (o *OpenAI) Model() string { return o.model }

// Generate implements Client.
func (o *OpenAI) Generate(ctx context.Context, request *GenerateRequest) (*GenerateResponse, error) {
	messages := make([]openAIMessage, 0, 2)
	if request.Role != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: request.Role})
	}
	prompt := request.Prompt
	if request.RequireSearch {
		// The chat completions API has no built-in search tool; ask for
		// explicit source attributions instead.
		prompt += "\n\nCite the URLs of the sources backing each factual claim."
	}
	messages = append(messages, openAIMessage{Role: "user", Content: prompt})

	payload := &openAIRequest{
		Model:           o.model,
		Messages:        messages,
		Temperature:     request.Temperature,
		MaxTokens:       request.MaxTokens,
		ReasoningEffort: request.Effort,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	httpResp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai request: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp openAIResponse
	if uErr := json.Unmarshal(data, &resp); uErr != nil && httpResp.StatusCode == http.StatusOK {
		return nil, fmt.Errorf("decode response: %w", uErr)
	}
	if httpResp.StatusCode != http.StatusOK {
		message := string(data)
		if resp.Error != nil {
			message = resp.Error.Message
		}
		return nil, &Error{Provider: o.Name(), StatusCode: httpResp.StatusCode, Message: message}
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: response has no choices")
	}
	model := resp.Model
	if model == "" {
		model = o.model
	}
	return &GenerateResponse{Text: resp.Choices[0].Message.Content, Model: model}, nil
}
