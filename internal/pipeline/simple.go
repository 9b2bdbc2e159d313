package pipeline

import (
	"strings"
	"time"

	"ainav/backend/internal/repository"
	"ainav/backend/internal/telemetry"
	"ainav/backend/pkg/models"
)

const (
	maxRecommendations = 3
	recommendMessage   = "为您推荐以下工具"
	defaultsMessage    = "未找到匹配的分类，为您推荐常用工具"
)

// SimpleRecommender answers simple tasks straight from the catalog.
type SimpleRecommender struct {
	catalog repository.Catalog
	match   MatchFunc
}

// NewSimpleRecommender creates a SimpleRecommender. A nil match selects
// SubstringMatch.
func NewSimpleRecommender(catalog repository.Catalog, match MatchFunc) *SimpleRecommender {
	return &SimpleRecommender{catalog: catalog, match: orDefault(match)}
}

// Recommend returns at most three tools with unique names. It never fails:
// when no category matches, the built-in defaults are returned degraded.
func (r *SimpleRecommender) Recommend(analysis models.TaskAnalysis) Outcome[models.SimpleRecommendation] {
	defer observeStage(telemetry.StageSimple, time.Now())

	keywords := analysis.Keywords
	if len(keywords) == 0 {
		keywords = []string{analysis.TaskType}
	}

	var collected []models.ToolRecord
	for _, kw := range keywords {
		collected = append(collected, r.lookup(kw)...)
	}
	if len(collected) == 0 {
		collected = r.lookup(analysis.TaskType)
	}

	rec := models.SimpleRecommendation{
		Query:           analysis.TaskType,
		Complexity:      models.ComplexitySimple,
		MatchedKeywords: keywords,
		Recommendations: uniqueByName(collected, maxRecommendations),
		Message:         recommendMessage,
	}
	if len(rec.Recommendations) == 0 {
		rec.Recommendations = r.catalog.SimpleDefaults()
		rec.Message = defaultsMessage
		telemetry.Degraded.WithLabelValues(telemetry.StageSimple).Inc()
		return Degrade(rec, "no catalog category matched")
	}
	return Ok(rec)
}

// lookup tries an exact category key first, then every category the keyword
// fuzzily matches, in catalog order.
func (r *SimpleRecommender) lookup(keyword string) []models.ToolRecord {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil
	}
	if tools, ok := r.catalog.Lookup(keyword); ok {
		return head(tools, maxRecommendations)
	}
	var out []models.ToolRecord
	for _, cat := range r.catalog.Categories() {
		if r.match(keyword, cat.Key) {
			out = append(out, head(cat.Tools, maxRecommendations)...)
		}
	}
	return out
}

func head(tools []models.ToolRecord, n int) []models.ToolRecord {
	if len(tools) > n {
		return tools[:n]
	}
	return tools
}

// uniqueByName keeps the first record for each name, up to limit records.
func uniqueByName(tools []models.ToolRecord, limit int) []models.ToolRecord {
	seen := make(map[string]struct{}, len(tools))
	out := make([]models.ToolRecord, 0, limit)
	for _, t := range tools {
		if _, dup := seen[t.Name]; dup {
			continue
		}
		seen[t.Name] = struct{}{}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out
}
