package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ainav/backend/pkg/models"
)

func TestWebSearchClient_Search(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "1", "object": "chat.completion", "created": 1, "model": "glm-4-plus",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {
				"role": "assistant",
				"content": "1. 剪映：视频剪辑\n2. 可灵：视频生成",
				"tool_calls": [{"type": "web_search", "title": "tc", "url": "https://tc.example", "content": "from tool call"}]
			}}],
			"web_search": [{"title": "榜单", "link": "https://list.example", "content": "` + strings.Repeat("长", 200) + `"}]
		}`))
	}))
	defer srv.Close()

	client := NewWebSearchClient("zk-test", srv.URL+"/api/paas/v4/", "glm-4-plus", 5*time.Second)
	res, err := client.Search(context.Background(), "最新的 视频 AI工具推荐 2026")
	require.NoError(t, err)

	assert.Equal(t, "glm-4-plus", got["model"])
	assert.EqualValues(t, 1500, got["max_tokens"])
	tools, ok := got["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 1)
	tool := tools[0].(map[string]any)
	assert.Equal(t, "web_search", tool["type"])
	assert.Equal(t, map[string]any{"enable": true, "search_result": true}, tool["web_search"])

	assert.Contains(t, res.Answer, "剪映")
	require.Len(t, res.Sources, 2)
	assert.Equal(t, "https://tc.example", res.Sources[0].URL)
	assert.Equal(t, "https://list.example", res.Sources[1].URL)
	assert.Equal(t, 150, len([]rune(res.Sources[1].Snippet)))
}

func TestWebSearchClient_MissingKey(t *testing.T) {
	client := NewWebSearchClient("", "http://127.0.0.1:1/", "glm-4-plus", time.Second)
	_, err := client.Search(context.Background(), "q")

	var cfgErr *models.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestWebSearchClient_UpstreamError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer srv.Close()

	client := NewWebSearchClient("zk-bad", srv.URL+"/", "glm-4-plus", 5*time.Second)
	_, err := client.Search(context.Background(), "q")

	var upErr *models.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusUnauthorized, upErr.StatusCode)
	assert.Equal(t, 1, calls, "the client must not retry")
}
