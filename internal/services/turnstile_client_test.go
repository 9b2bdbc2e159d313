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

func TestTurnstileClient_Verify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "secret", body["secret"])
		assert.Equal(t, "10.0.0.1", body["remoteip"])

		ok := body["response"] == "good-token"
		_ = json.NewEncoder(w).Encode(map[string]any{"success": ok})
	}))
	defer srv.Close()

	client := NewTurnstileClient(srv.URL, "secret", 5*time.Second)

	ok, err := client.Verify(context.Background(), "good-token", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.Verify(context.Background(), "forged", "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTurnstileClient_Errors(t *testing.T) {
	_, err := NewTurnstileClient("http://127.0.0.1:1", "", time.Second).Verify(context.Background(), "t", "")
	var cfgErr *models.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err = NewTurnstileClient(srv.URL, "secret", time.Second).Verify(context.Background(), "t", "")
	var upErr *models.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusServiceUnavailable, upErr.StatusCode)
}
