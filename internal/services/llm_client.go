package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"ainav/backend/pkg/models"
)

const (
	defaultMaxTokens   = 2000
	defaultTemperature = 0.3
	llmProvider        = "completion provider"
)

// OpenAICompatibleClient is an LLMClient for any OpenAI-compatible chat
// completion API (SiliconFlow by default).
type OpenAICompatibleClient struct {
	client *openai.Client
	apiKey string
}

// NewOpenAICompatibleClient creates a client for baseURL. An empty apiKey is
// accepted; every call then fails with a ConfigurationError.
func NewOpenAICompatibleClient(apiKey, baseURL string, timeout time.Duration) *OpenAICompatibleClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAICompatibleClient{
		client: openai.NewClientWithConfig(cfg),
		apiKey: apiKey,
	}
}

// Complete sends one chat completion request.
func (c *OpenAICompatibleClient) Complete(ctx context.Context, messages []Message, model string, opts CompletionOptions) (string, error) {
	if c.apiKey == "" {
		return "", &models.ConfigurationError{Component: "llm gateway", Setting: "llm.api_key"}
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}
	if req.Temperature <= 0 {
		req.Temperature = defaultTemperature
	}
	if opts.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", toUpstreamError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &models.UpstreamError{Provider: llmProvider, StatusCode: http.StatusOK, Body: "response has no choices"}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func toUpstreamError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &models.UpstreamError{Provider: llmProvider, StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := reqErr.HTTPStatus
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return &models.UpstreamError{Provider: llmProvider, StatusCode: reqErr.HTTPStatusCode, Body: body, Err: err}
	}
	return &models.UpstreamError{Provider: llmProvider, Err: err}
}
