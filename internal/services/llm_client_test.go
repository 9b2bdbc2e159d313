package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ainav/backend/pkg/models"
)

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "test",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(b)
}

func TestOpenAICompatibleClient_Complete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("  {\"complexity\":\"simple\"}\n")))
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient("sk-test", srv.URL+"/v1", 5*time.Second)
	text, err := client.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "classify"},
		{Role: RoleUser, Content: "推荐视频工具"},
	}, "Qwen/Qwen2.5-7B-Instruct", CompletionOptions{MaxTokens: 300, Temperature: 0.2, JSONMode: true})

	require.NoError(t, err)
	assert.Equal(t, `{"complexity":"simple"}`, text)
	assert.Equal(t, "Qwen/Qwen2.5-7B-Instruct", got["model"])
	assert.EqualValues(t, 300, got["max_tokens"])
	assert.InDelta(t, 0.2, got["temperature"], 1e-6)
	assert.Equal(t, map[string]any{"type": "json_object"}, got["response_format"])
	assert.Len(t, got["messages"], 2)
}

func TestOpenAICompatibleClient_Defaults(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(completionBody("ok")))
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient("sk-test", srv.URL, 5*time.Second)
	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, "m", CompletionOptions{})

	require.NoError(t, err)
	assert.EqualValues(t, 2000, got["max_tokens"])
	assert.InDelta(t, 0.3, got["temperature"], 1e-6)
	assert.NotContains(t, got, "response_format")
}

func TestOpenAICompatibleClient_MissingKey(t *testing.T) {
	client := NewOpenAICompatibleClient("", "http://127.0.0.1:1", time.Second)
	_, err := client.Complete(context.Background(), nil, "m", CompletionOptions{})

	var cfgErr *models.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestOpenAICompatibleClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient("sk-test", srv.URL, 5*time.Second)
	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, "m", CompletionOptions{})

	var upErr *models.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusTooManyRequests, upErr.StatusCode)
	assert.Contains(t, upErr.Body, "rate limited")
}

func TestOpenAICompatibleClient_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bad gateway"))
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient("sk-test", srv.URL, 5*time.Second)
	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, "m", CompletionOptions{})

	var upErr *models.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusBadGateway, upErr.StatusCode)
}

func TestOpenAICompatibleClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient("sk-test", srv.URL, 5*time.Second)
	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, "m", CompletionOptions{})

	var upErr *models.UpstreamError
	assert.True(t, errors.As(err, &upErr))
}
