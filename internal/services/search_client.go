package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"ainav/backend/pkg/models"
)

const (
	searchProvider   = "web search provider"
	searchMaxTokens  = 1500
	searchTemp       = 0.7
	maxSnippetLength = 150
)

// WebSearchClient calls a search-augmented chat completion endpoint (Zhipu
// GLM with the web_search tool). The provider speaks the OpenAI wire format
// plus a non-standard tools entry and result list, so the request carries an
// extra body field and the answer is decoded from the raw payload.
type WebSearchClient struct {
	client openai.Client
	apiKey string
	model  string
}

// NewWebSearchClient creates a search client. An empty apiKey is accepted;
// every call then fails with a ConfigurationError.
func NewWebSearchClient(apiKey, baseURL, model string, timeout time.Duration) *WebSearchClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &WebSearchClient{
		client: openai.NewClient(opts...),
		apiKey: apiKey,
		model:  model,
	}
}

type searchHit struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type searchCompletion struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Type string `json:"type"`
				searchHit
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	WebSearch []searchHit `json:"web_search"`
}

// Search asks the provider about query with live web search enabled.
func (c *WebSearchClient) Search(ctx context.Context, query string) (*SearchResult, error) {
	if c.apiKey == "" {
		return nil, &models.ConfigurationError{Component: "web search", Setting: "websearch.api_key"}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(query)},
		MaxTokens:   openai.Int(searchMaxTokens),
		Temperature: openai.Float(searchTemp),
	}
	tools := []map[string]any{{
		"type": "web_search",
		"web_search": map[string]any{
			"enable":        true,
			"search_result": true,
		},
	}}

	resp, err := c.client.Chat.Completions.New(ctx, params, option.WithJSONSet("tools", tools))
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &models.UpstreamError{Provider: searchProvider, StatusCode: apiErr.StatusCode, Body: apiErr.Message, Err: err}
		}
		return nil, &models.UpstreamError{Provider: searchProvider, Err: err}
	}

	var payload searchCompletion
	if err := json.Unmarshal([]byte(resp.RawJSON()), &payload); err != nil {
		return nil, &models.ValidationError{Reason: "search response is not JSON", Err: err}
	}
	if len(payload.Choices) == 0 {
		return nil, &models.ValidationError{Reason: "search response has no choices"}
	}
	msg := payload.Choices[0].Message

	result := &SearchResult{Answer: msg.Content}
	for _, call := range msg.ToolCalls {
		if call.Type == "web_search" {
			result.Sources = append(result.Sources, call.searchHit.source())
		}
	}
	for _, hit := range payload.WebSearch {
		result.Sources = append(result.Sources, hit.source())
	}
	return result, nil
}

func (h searchHit) source() models.SearchSource {
	link := h.URL
	if link == "" {
		link = h.Link
	}
	return models.SearchSource{
		Title:   h.Title,
		URL:     link,
		Snippet: truncateRunes(h.Content, maxSnippetLength),
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// String is used in log lines.
func (r *SearchResult) String() string {
	return fmt.Sprintf("answer=%d chars sources=%d", utf8.RuneCountInString(r.Answer), len(r.Sources))
}
