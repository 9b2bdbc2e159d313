package services

import (
	"context"

	"ainav/backend/pkg/models"
)

// Chat roles accepted by LLMClient.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn sent to a completion provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionOptions tunes a single completion call. Zero values select the
// gateway defaults.
type CompletionOptions struct {
	MaxTokens   int
	Temperature float64
	// JSONMode asks the provider to return a single JSON document.
	JSONMode bool
}

// LLMClient is an interface for the chat-completion provider.
type LLMClient interface {
	// Complete returns the trimmed text of the first completion choice. It
	// does not retry.
	Complete(ctx context.Context, messages []Message, model string, opts CompletionOptions) (string, error)
}

// SearchResult is the answer of a search-augmented completion.
type SearchResult struct {
	Answer  string
	Sources []models.SearchSource
}

// SearchClient is an interface for the search-augmented completion provider.
type SearchClient interface {
	Search(ctx context.Context, query string) (*SearchResult, error)
}

// HumanVerifier checks a human-verification challenge token.
type HumanVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}
