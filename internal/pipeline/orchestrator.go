package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ainav/backend/internal/logging"
	"ainav/backend/internal/repository"
	"ainav/backend/internal/telemetry"
	"ainav/backend/pkg/models"
)

// FallbackQuery is the query label of the global degraded response.
const FallbackQuery = "默认推荐"

// DefaultTemplateThreshold is the minimum match score for adopting a
// scenario template instead of generating a workflow.
const DefaultTemplateThreshold = 0.5

// Components are the stages an Orchestrator sequences.
type Components struct {
	Classifier *Classifier
	Simple     *SimpleRecommender
	Matcher    *ScenarioMatcher
	Generator  *Generator
	Enricher   *Enricher
	Catalog    repository.Catalog
}

// Orchestrator runs the recommendation pipeline for one request at a time.
// It holds no per-request state and is safe for concurrent use.
type Orchestrator struct {
	Components
	threshold float64
	timeout   time.Duration
	now       func() time.Time
	logger    *logging.Logger
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(c Components, threshold float64, logger *logging.Logger) *Orchestrator {
	return &Orchestrator{
		Components: c,
		threshold:  threshold,
		now:        time.Now,
		logger:     logger,
	}
}

// WithClock replaces the timestamp source.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// WithTimeout bounds the whole pipeline run. Upstream calls still pending at
// the deadline fail and the request degrades to the fallback document.
func (o *Orchestrator) WithTimeout(d time.Duration) *Orchestrator {
	o.timeout = d
	return o
}

// Recommend answers query with a simple, workflow or fallback document. The
// only error is models.ErrEmptyQuery; every stage failure degrades instead.
func (o *Orchestrator) Recommend(ctx context.Context, query string) (models.Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.ErrEmptyQuery
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	ctx, span := telemetry.Tracer().Start(ctx, "pipeline.recommend")
	defer span.End()

	classified := o.Classifier.Classify(ctx, query)
	analysis := classified.Value
	log := o.logger.With("complexity", analysis.Complexity, "task_type", analysis.TaskType)
	if classified.Degraded {
		log.Info("using heuristic analysis", "reason", classified.Reason)
	}

	if analysis.Complexity == models.ComplexitySimple {
		rec := o.Simple.Recommend(analysis)
		if rec.Degraded {
			log.Info("simple recommendation degraded", "reason", rec.Reason)
		}
		o.record(span, models.ModeSimple, "catalog")
		return &models.SimpleResponse{
			SimpleRecommendation: rec.Value,
			Mode:                 models.ModeSimple,
			Timestamp:            o.now().UnixMilli(),
		}, nil
	}

	resp := &models.WorkflowResponse{Mode: models.ModeWorkflow, Analysis: analysis}
	if match := o.Matcher.Match(analysis.Keywords); match != nil && match.MatchScore >= o.threshold {
		log.Info("scenario template adopted", "scenario", match.ID, "score", match.MatchScore)
		resp.Workflow = match.Workflow
		resp.Source = models.SourceTemplate
		resp.ScenarioID = match.ID
		resp.MatchScore = match.MatchScore
	} else {
		wf, err := o.Generator.Generate(ctx, query, analysis)
		if err != nil {
			var exhausted *models.GenerationExhaustedError
			if errors.As(err, &exhausted) {
				log.Error("workflow generation exhausted", "attempts", exhausted.Attempts, "error", exhausted.Last)
			} else {
				log.Error("workflow generation failed", "error", err)
			}
			telemetry.Degraded.WithLabelValues(telemetry.StageGenerate).Inc()
			o.record(span, models.ModeFallback, "")
			return &models.FallbackResponse{
				Query:           FallbackQuery,
				Complexity:      models.ComplexitySimple,
				Recommendations: o.Catalog.FallbackDefaults(),
				Error:           err.Error(),
				Mode:            models.ModeFallback,
				Timestamp:       o.now().UnixMilli(),
			}, nil
		}
		resp.Workflow = *wf
	}

	resp.WebSearch = o.Enricher.Enrich(ctx, query, analysis)
	resp.Timestamp = o.now().UnixMilli()
	o.record(span, models.ModeWorkflow, string(resp.Source))
	return resp, nil
}

func (o *Orchestrator) record(span trace.Span, mode models.Mode, source string) {
	span.SetAttributes(attribute.String("mode", string(mode)), attribute.String("source", source))
	telemetry.Recommendations.WithLabelValues(string(mode), source).Inc()
}
