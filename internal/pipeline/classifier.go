package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"ainav/backend/internal/logging"
	"ainav/backend/internal/repository"
	"ainav/backend/internal/services"
	"ainav/backend/internal/telemetry"
	"ainav/backend/pkg/models"
)

// HeuristicReasoning marks an analysis produced by keyword matching instead
// of the model.
const HeuristicReasoning = "使用关键词匹配"

const (
	classifierMaxTokens   = 300
	classifierTemperature = 0.2
)

// Classifier labels a request with a complexity class and category keywords.
type Classifier struct {
	llm     services.LLMClient
	catalog repository.Catalog
	tiers   repository.ModelTable
	logger  *logging.Logger
}

// NewClassifier creates a new Classifier.
func NewClassifier(llm services.LLMClient, catalog repository.Catalog, tiers repository.ModelTable, logger *logging.Logger) *Classifier {
	return &Classifier{
		llm:     llm,
		catalog: catalog,
		tiers:   tiers,
		logger:  logger.With("stage", telemetry.StageClassify),
	}
}

// Classify asks the cheapest model tier to analyse query. Any failure yields
// a degraded analysis built by Heuristic.
func (c *Classifier) Classify(ctx context.Context, query string) Outcome[models.TaskAnalysis] {
	ctx, span := telemetry.Tracer().Start(ctx, "pipeline.classify")
	defer span.End()
	defer observeStage(telemetry.StageClassify, time.Now())

	analysis, err := c.classify(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "classification degraded")
		telemetry.Degraded.WithLabelValues(telemetry.StageClassify).Inc()
		c.logger.Warn("classification failed, using keyword heuristic", "error", err)
		return Degrade(c.Heuristic(query), err.Error())
	}

	span.SetAttributes(
		attribute.String("complexity", string(analysis.Complexity)),
		attribute.String("task_type", analysis.TaskType),
	)
	c.logger.Debug("task classified", "complexity", analysis.Complexity, "task_type", analysis.TaskType, "keywords", analysis.Keywords)
	return Ok(analysis)
}

func (c *Classifier) classify(ctx context.Context, query string) (models.TaskAnalysis, error) {
	tier, ok := c.tiers.ForCapability(models.ComplexitySimple)
	if !ok {
		return models.TaskAnalysis{}, fmt.Errorf("no model tier serves %s tasks", models.ComplexitySimple)
	}

	messages := []services.Message{
		{Role: services.RoleSystem, Content: classifierSystemPrompt(c.catalog.Categories())},
		{Role: services.RoleUser, Content: query},
	}
	text, err := c.llm.Complete(ctx, messages, tier.ID, services.CompletionOptions{
		MaxTokens:   classifierMaxTokens,
		Temperature: classifierTemperature,
		JSONMode:    true,
	})
	if err != nil {
		return models.TaskAnalysis{}, err
	}
	return c.parseAnalysis(query, text)
}

func (c *Classifier) parseAnalysis(query, text string) (models.TaskAnalysis, error) {
	var analysis models.TaskAnalysis
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &analysis); err != nil {
		return models.TaskAnalysis{}, &models.ValidationError{Reason: "analysis is not JSON", Err: err}
	}
	if !analysis.Complexity.Valid() {
		return models.TaskAnalysis{}, &models.ValidationError{Reason: fmt.Sprintf("unknown complexity %q", analysis.Complexity)}
	}

	analysis.TaskType = strings.TrimSpace(analysis.TaskType)
	if analysis.TaskType == "" {
		analysis.TaskType = c.categoryFor(query)
	}
	keywords := analysis.Keywords[:0]
	for _, kw := range analysis.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		keywords = []string{analysis.TaskType}
	}
	analysis.Keywords = keywords
	return analysis, nil
}

// Heuristic builds a simple analysis from the first catalog category that
// appears in query.
func (c *Classifier) Heuristic(query string) models.TaskAnalysis {
	taskType := c.categoryFor(query)
	return models.TaskAnalysis{
		Complexity:     models.ComplexitySimple,
		TaskType:       taskType,
		Keywords:       []string{taskType},
		Reasoning:      HeuristicReasoning,
		NeedsWebSearch: false,
	}
}

func (c *Classifier) categoryFor(query string) string {
	for _, cat := range c.catalog.Categories() {
		if strings.Contains(query, cat.Key) {
			return cat.Key
		}
	}
	return c.catalog.DefaultCategory()
}

func observeStage(stage string, start time.Time) {
	telemetry.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
