package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"ainav/backend/internal/logging"
	"ainav/backend/internal/repository"
	"ainav/backend/internal/services"
	"ainav/backend/internal/telemetry"
	"ainav/backend/pkg/models"
)

const (
	generatorMaxTokens = 4000
	temperatureStep    = 0.1
	defaultBackoff     = time.Second
)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// SleepWithContext is the production SleepFunc.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// GeneratorConfig tunes the retry loop.
type GeneratorConfig struct {
	MaxRetries      int
	BaseTemperature float64
	// Backoff is multiplied by the attempt number between attempts.
	Backoff time.Duration
}

// Generator asks a model tier for a structured workflow and retries with
// rising temperature until the answer validates.
type Generator struct {
	llm      services.LLMClient
	catalog  repository.Catalog
	tiers    repository.ModelTable
	cfg      GeneratorConfig
	sleep    SleepFunc
	attempts metric.Int64Counter
	logger   *logging.Logger
}

// NewGenerator creates a new Generator.
func NewGenerator(llm services.LLMClient, catalog repository.Catalog, tiers repository.ModelTable, cfg GeneratorConfig, logger *logging.Logger) *Generator {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultBackoff
	}
	attempts, err := telemetry.Meter().Int64Counter("ainav.generator.attempts",
		metric.WithDescription("Workflow generation attempts by result"))
	if err != nil {
		attempts = noop.Int64Counter{}
	}
	return &Generator{
		llm:      llm,
		catalog:  catalog,
		tiers:    tiers,
		cfg:      cfg,
		sleep:    SleepWithContext,
		attempts: attempts,
		logger:   logger.With("stage", telemetry.StageGenerate),
	}
}

// WithSleep replaces the backoff delay function.
func (g *Generator) WithSleep(fn SleepFunc) *Generator {
	g.sleep = fn
	return g
}

// Generate returns a validated workflow with Source set to ai, or a
// *models.GenerationExhaustedError once every attempt failed.
func (g *Generator) Generate(ctx context.Context, query string, analysis models.TaskAnalysis) (*models.Workflow, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "pipeline.generate")
	defer span.End()
	defer observeStage(telemetry.StageGenerate, time.Now())

	wf, err := g.generate(ctx, query, analysis)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation exhausted")
		return nil, err
	}
	span.SetAttributes(attribute.Int("steps", len(wf.Steps)))
	return wf, nil
}

func (g *Generator) generate(ctx context.Context, query string, analysis models.TaskAnalysis) (*models.Workflow, error) {
	capability := models.ComplexityModerate
	if analysis.Complexity == models.ComplexityComplex {
		capability = models.ComplexityComplex
	}
	tier, ok := g.tiers.ForCapability(capability)
	if !ok {
		return nil, &models.GenerationExhaustedError{Last: fmt.Errorf("no model tier serves %s tasks", capability)}
	}

	system, err := generatorSystemPrompt(g.catalog.Categories(), analysis.Complexity)
	if err != nil {
		return nil, &models.GenerationExhaustedError{Last: err}
	}
	messages := []services.Message{
		{Role: services.RoleSystem, Content: system},
		{Role: services.RoleUser, Content: generatorUserPrompt(query, analysis)},
	}

	var last error
	for attempt := 1; attempt <= g.cfg.MaxRetries; attempt++ {
		temperature := g.cfg.BaseTemperature + float64(attempt-1)*temperatureStep
		log := g.logger.With("attempt", attempt, "model", tier.ID)

		text, err := g.llm.Complete(ctx, messages, tier.ID, services.CompletionOptions{
			MaxTokens:   generatorMaxTokens,
			Temperature: temperature,
			JSONMode:    true,
		})
		if err == nil {
			var wf *models.Workflow
			if wf, err = parseWorkflow(text, query, analysis); err == nil {
				g.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "ok")))
				log.Info("workflow generated", "steps", len(wf.Steps))
				return wf, nil
			}
		}

		last = err
		g.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "failed")))
		log.Warn("workflow generation attempt failed", "error", err)

		if attempt < g.cfg.MaxRetries {
			if err := g.sleep(ctx, g.cfg.Backoff*time.Duration(attempt)); err != nil {
				return nil, &models.GenerationExhaustedError{Attempts: attempt, Last: err}
			}
		}
	}
	return nil, &models.GenerationExhaustedError{Attempts: g.cfg.MaxRetries, Last: last}
}

// parseWorkflow decodes and normalises a model answer. Only a missing or
// empty workflow list is fatal; mistyped fields are coerced.
func parseWorkflow(text, query string, analysis models.TaskAnalysis) (*models.Workflow, error) {
	var raw looseWorkflow
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &raw); err != nil {
		return nil, &models.ValidationError{Reason: "workflow is not JSON", Err: err}
	}
	wf := raw.workflow()
	if len(wf.Steps) == 0 {
		return nil, &models.ValidationError{Reason: "workflow has no steps"}
	}

	if strings.TrimSpace(wf.Task) == "" {
		wf.Task = query
	}
	if !wf.Complexity.Valid() {
		wf.Complexity = analysis.Complexity
	}
	if !ascendingSteps(wf.Steps) {
		for i := range wf.Steps {
			wf.Steps[i].Step = i + 1
		}
	}
	for i := range wf.Steps {
		if len(wf.Steps[i].Tools) > models.MaxToolsPerStep {
			wf.Steps[i].Tools = wf.Steps[i].Tools[:models.MaxToolsPerStep]
		}
	}
	wf.Source = models.SourceAI

	if err := repository.ValidateWorkflow(wf); err != nil {
		return nil, &models.ValidationError{Reason: "workflow shape", Err: err}
	}
	return &wf, nil
}

func ascendingSteps(steps []models.WorkflowStep) bool {
	prev := 0
	for _, s := range steps {
		if s.Step <= prev {
			return false
		}
		prev = s.Step
	}
	return true
}
