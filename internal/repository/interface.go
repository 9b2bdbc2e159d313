package repository

import "ainav/backend/pkg/models"

// Catalog is the read-only tool catalog.
type Catalog interface {
	// Categories returns every category in its defined order.
	Categories() []models.Category
	// Lookup returns the tools of an exact category key.
	Lookup(key string) ([]models.ToolRecord, bool)
	// DefaultCategory is the category assumed when nothing else matches.
	DefaultCategory() string
	// SimpleDefaults is the built-in list for unmatched simple requests.
	SimpleDefaults() []models.ToolRecord
	// FallbackDefaults is the global degraded-response list.
	FallbackDefaults() []models.ToolRecord
}

// ModelTable maps complexity classes to LLM tiers.
type ModelTable interface {
	// ForCapability returns the tier serving the given complexity class.
	ForCapability(c models.Complexity) (models.ModelTier, bool)
	// Tiers returns every tier.
	Tiers() []models.ModelTier
}

// ScenarioStore holds the curated scenario templates.
type ScenarioStore interface {
	// Scenarios returns every template in registration order.
	Scenarios() []models.ScenarioTemplate
}

// CaseStore holds the curated showcase examples.
type CaseStore interface {
	Cases() []models.CaseRecord
}
