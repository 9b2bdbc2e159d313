package pipeline

import (
	"ainav/backend/internal/config"
	"ainav/backend/internal/logging"
	"ainav/backend/internal/repository"
	"ainav/backend/internal/services"
)

// Tables is everything the pipeline reads from the static store.
type Tables interface {
	repository.Catalog
	repository.ModelTable
	repository.ScenarioStore
}

// NewFromConfig wires every stage with the settings in cfg. search may be
// nil, which disables enrichment.
func NewFromConfig(cfg *config.Config, tables Tables, llm services.LLMClient, search services.SearchClient, logger *logging.Logger) *Orchestrator {
	return NewOrchestrator(Components{
		Classifier: NewClassifier(llm, tables, tables, logger),
		Simple:     NewSimpleRecommender(tables, SubstringMatch),
		Matcher:    NewScenarioMatcher(tables, SubstringMatch),
		Generator: NewGenerator(llm, tables, tables, GeneratorConfig{
			MaxRetries:      cfg.Pipeline.MaxRetries,
			BaseTemperature: cfg.Pipeline.BaseTemperature,
		}, logger),
		Enricher: NewEnricher(search, EnricherConfig{
			Enabled:  cfg.WebSearch.Enabled,
			Triggers: cfg.WebSearch.Triggers,
		}, logger),
		Catalog: tables,
	}, cfg.Pipeline.TemplateThreshold, logger.With("component", "orchestrator")).
		WithTimeout(cfg.Pipeline.RequestTimeout)
}
