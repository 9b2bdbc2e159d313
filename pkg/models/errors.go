package models

import (
	"errors"
	"fmt"
)

// ErrEmptyQuery is returned when a recommendation is requested without a task.
var ErrEmptyQuery = errors.New("query must not be empty")

// ConfigurationError means a provider credential is missing.
type ConfigurationError struct {
	Component string
	Setting   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not configured: missing %s", e.Component, e.Setting)
}

// UpstreamError is a non-success answer from an external provider.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s call failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s call failed (%d): %s", e.Provider, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ValidationError means a provider answered but the payload lacks the
// required shape.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid payload: %s: %v", e.Reason, e.Err)
	}
	return "invalid payload: " + e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

// GenerationExhaustedError is returned once every generation attempt failed.
type GenerationExhaustedError struct {
	Attempts int
	Last     error
}

func (e *GenerationExhaustedError) Error() string {
	return fmt.Sprintf("workflow generation failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *GenerationExhaustedError) Unwrap() error { return e.Last }

// VerificationError is a failed human-verification check.
type VerificationError struct {
	Reason string
}

func (e *VerificationError) Error() string {
	return "human verification failed: " + e.Reason
}
