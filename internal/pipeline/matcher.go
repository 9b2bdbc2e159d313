package pipeline

import (
	"strings"
	"time"

	"ainav/backend/internal/repository"
	"ainav/backend/internal/telemetry"
	"ainav/backend/pkg/models"
)

// ScenarioMatcher selects a curated template for a set of request keywords.
type ScenarioMatcher struct {
	store repository.ScenarioStore
	match MatchFunc
}

// NewScenarioMatcher creates a ScenarioMatcher. A nil match selects
// SubstringMatch.
func NewScenarioMatcher(store repository.ScenarioStore, match MatchFunc) *ScenarioMatcher {
	return &ScenarioMatcher{store: store, match: orDefault(match)}
}

// Match returns the first template, in store order, sharing at least one
// keyword with keywords. It is not a best-match search: a later template with
// a higher score loses to an earlier one. Returns nil when nothing overlaps.
func (m *ScenarioMatcher) Match(keywords []string) *models.ScenarioMatch {
	defer observeStage(telemetry.StageMatch, time.Now())

	for _, tpl := range m.store.Scenarios() {
		if len(tpl.Keywords) == 0 {
			continue
		}
		count := 0
		for _, kw := range tpl.Keywords {
			if m.related(kw, keywords) {
				count++
			}
		}
		if count > 0 {
			return &models.ScenarioMatch{
				ScenarioTemplate: tpl,
				MatchScore:       float64(count) / float64(len(tpl.Keywords)),
			}
		}
	}
	return nil
}

func (m *ScenarioMatcher) related(templateKeyword string, keywords []string) bool {
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" && m.match(kw, templateKeyword) {
			return true
		}
	}
	return false
}
