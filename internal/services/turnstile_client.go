package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ainav/backend/pkg/models"
)

// TurnstileClient is an HTTP implementation of the HumanVerifier interface
// for Cloudflare Turnstile.
type TurnstileClient struct {
	url    string
	secret string
	http   *http.Client
}

// NewTurnstileClient creates a new TurnstileClient.
func NewTurnstileClient(url, secret string, timeout time.Duration) *TurnstileClient {
	return &TurnstileClient{
		url:    url,
		secret: secret,
		http:   &http.Client{Timeout: timeout},
	}
}

// Verify reports whether token is a valid challenge response.
func (c *TurnstileClient) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if c.secret == "" {
		return false, &models.ConfigurationError{Component: "human verification", Setting: "verification.secret"}
	}

	requestBody, err := json.Marshal(map[string]string{
		"secret":   c.secret,
		"response": token,
		"remoteip": remoteIP,
	})
	if err != nil {
		return false, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(requestBody))
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, &models.UpstreamError{Provider: "turnstile", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, &models.UpstreamError{Provider: "turnstile", StatusCode: resp.StatusCode, Body: resp.Status}
	}

	var result struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode response body: %w", err)
	}
	return result.Success, nil
}
