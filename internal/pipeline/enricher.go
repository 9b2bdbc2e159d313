package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/codes"

	"ainav/backend/internal/logging"
	"ainav/backend/internal/services"
	"ainav/backend/internal/telemetry"
	"ainav/backend/pkg/models"
)

const (
	maxSearchTools  = 5
	maxToolLabelLen = 30
)

// DefaultTriggers are the recency and superlative terms that turn on web
// search regardless of the analysis.
var DefaultTriggers = []string{"最新", "最近", "2026", "最好的", "推荐", "哪个好"}

// "剪映 - 描述", "1. 剪映：描述", "**剪映**: 描述"
var toolLinePattern = regexp.MustCompile(`(?:\d+\.\s*)?([^-—：:]+)[\s\-—：:]+(.+)`)

// EnricherConfig gates the web-search stage.
type EnricherConfig struct {
	Enabled  bool
	Triggers []string
}

// Enricher attaches live web-search results to workflow responses.
type Enricher struct {
	search services.SearchClient
	cfg    EnricherConfig
	now    func() time.Time
	logger *logging.Logger
}

// NewEnricher creates a new Enricher. A nil search client disables the stage.
func NewEnricher(search services.SearchClient, cfg EnricherConfig, logger *logging.Logger) *Enricher {
	if len(cfg.Triggers) == 0 {
		cfg.Triggers = DefaultTriggers
	}
	return &Enricher{
		search: search,
		cfg:    cfg,
		now:    time.Now,
		logger: logger.With("stage", telemetry.StageEnrich),
	}
}

// ShouldSearch reports whether a request warrants a web search.
func (e *Enricher) ShouldSearch(query string, analysis models.TaskAnalysis) bool {
	if analysis.NeedsWebSearch || analysis.Complexity == models.ComplexityComplex {
		return true
	}
	for _, term := range e.cfg.Triggers {
		if term != "" && strings.Contains(query, term) {
			return true
		}
	}
	return false
}

// SearchQuery is the text sent to the search provider for analysis.
func (e *Enricher) SearchQuery(analysis models.TaskAnalysis) string {
	return fmt.Sprintf("最新的 %s AI工具推荐 %d", analysis.TaskType, e.now().Year())
}

// Enrich returns web-search data for the request, or nil when the stage is
// disabled, not warranted, or fails for any reason.
func (e *Enricher) Enrich(ctx context.Context, query string, analysis models.TaskAnalysis) *models.WebSearchEnrichment {
	if !e.cfg.Enabled || e.search == nil || !e.ShouldSearch(query, analysis) {
		return nil
	}
	if ctx.Err() != nil {
		e.logger.Debug("web search skipped", "error", ctx.Err())
		return nil
	}

	ctx, span := telemetry.Tracer().Start(ctx, "pipeline.enrich")
	defer span.End()
	defer observeStage(telemetry.StageEnrich, time.Now())

	searchQuery := e.SearchQuery(analysis)
	result, err := e.search.Search(ctx, searchQuery)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "web search failed")
		telemetry.Degraded.WithLabelValues(telemetry.StageEnrich).Inc()
		e.logger.Warn("web search failed", "query", searchQuery, "error", err)
		return nil
	}
	e.logger.Debug("web search done", "query", searchQuery, "result", result.String())

	sources := result.Sources
	if sources == nil {
		sources = []models.SearchSource{}
	}
	return &models.WebSearchEnrichment{
		SearchQuery: searchQuery,
		Answer:      result.Answer,
		Tools:       ExtractTools(result.Answer),
		Sources:     sources,
	}
}

// ExtractTools picks "label: description" lines out of free text. Labels of
// 30 characters or more are dropped and at most five tools are returned.
func ExtractTools(text string) []models.SearchTool {
	tools := []models.SearchTool{}
	for _, line := range strings.Split(text, "\n") {
		m := toolLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.Trim(m[1], " \t*#")
		desc := strings.TrimSpace(m[2])
		if name == "" || desc == "" || utf8.RuneCountInString(name) >= maxToolLabelLen {
			continue
		}
		tools = append(tools, models.SearchTool{Name: name, Description: desc})
		if len(tools) == maxSearchTools {
			break
		}
	}
	return tools
}
