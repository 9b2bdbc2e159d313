package models

// Mode selects the shape of a recommendation response
type Mode string

const (
	ModeSimple   Mode = "simple"
	ModeWorkflow Mode = "workflow"
	ModeFallback Mode = "fallback"
)

// Response is any of the three recommendation documents.
type Response interface {
	ResponseMode() Mode
}

// SimpleRecommendation is the catalog-only answer for simple tasks.
type SimpleRecommendation struct {
	Query           string       `json:"query"`
	Complexity      Complexity   `json:"complexity"`
	MatchedKeywords []string     `json:"matchedKeywords"`
	Recommendations []ToolRecord `json:"recommendations"`
	Message         string       `json:"message"`
}

// SimpleResponse is returned when the classifier labels the task simple.
type SimpleResponse struct {
	SimpleRecommendation
	Mode      Mode  `json:"mode"`
	Timestamp int64 `json:"timestamp"`
}

func (SimpleResponse) ResponseMode() Mode { return ModeSimple }

// WorkflowResponse carries a template or generated workflow.
type WorkflowResponse struct {
	Workflow
	ScenarioID string               `json:"scenarioId,omitempty"`
	MatchScore float64              `json:"matchScore,omitempty"`
	Mode       Mode                 `json:"mode"`
	Analysis   TaskAnalysis         `json:"analysis"`
	WebSearch  *WebSearchEnrichment `json:"webSearch"`
	Timestamp  int64                `json:"timestamp"`
}

func (WorkflowResponse) ResponseMode() Mode { return ModeWorkflow }

// FallbackResponse is the degraded answer used when generation fails.
// It is still served with a success status.
type FallbackResponse struct {
	Query           string       `json:"query"`
	Complexity      Complexity   `json:"complexity"`
	Recommendations []ToolRecord `json:"recommendations"`
	Error           string       `json:"error"`
	Mode            Mode         `json:"mode"`
	Timestamp       int64        `json:"timestamp"`
}

func (FallbackResponse) ResponseMode() Mode { return ModeFallback }

// SearchTool is a tool mention extracted from a web-search answer.
type SearchTool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SearchSource is one web page the search provider consulted.
type SearchSource struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// WebSearchEnrichment is optional freshness data attached to workflow
// responses.
type WebSearchEnrichment struct {
	SearchQuery string         `json:"searchQuery"`
	Answer      string         `json:"answer"`
	Tools       []SearchTool   `json:"tools"`
	Sources     []SearchSource `json:"sources"`
}
