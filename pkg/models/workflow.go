package models

// WorkflowSource tells whether a workflow came from a curated template or
// was generated by the LLM.
type WorkflowSource string

const (
	SourceTemplate WorkflowSource = "template"
	SourceAI       WorkflowSource = "ai"
)

// MaxToolsPerStep bounds WorkflowStep.Tools.
const MaxToolsPerStep = 3

// StepTool is a tool pick inside a workflow step.
type StepTool struct {
	Name   string `json:"name" yaml:"name"`
	URL    string `json:"url" yaml:"url"`
	Reason string `json:"reason" yaml:"reason"`
}

// StepPrompt is the prompt template handed to the user for a step.
type StepPrompt struct {
	Template  string   `json:"template" yaml:"template"`
	Example   string   `json:"example,omitempty" yaml:"example"`
	Variables []string `json:"variables" yaml:"variables"`
}

// WorkflowStep is one stage of an execution plan
type WorkflowStep struct {
	Step        int        `json:"step" yaml:"step"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description"`
	Tools       []StepTool `json:"tools" yaml:"tools"`
	Prompt      StepPrompt `json:"prompt" yaml:"prompt"`
	Tips        []string   `json:"tips" yaml:"tips"`
	Tutorial    string     `json:"tutorial,omitempty" yaml:"tutorial"`
}

// Workflow is an ordered multi-step plan. Steps are non-empty and ordered by
// increasing Step value.
type Workflow struct {
	Task          string         `json:"task" yaml:"task"`
	Complexity    Complexity     `json:"complexity" yaml:"complexity"`
	EstimatedTime string         `json:"estimatedTime,omitempty" yaml:"estimated_time"`
	Steps         []WorkflowStep `json:"workflow" yaml:"workflow"`
	Mermaid       string         `json:"mermaid,omitempty" yaml:"mermaid"`
	Source        WorkflowSource `json:"source" yaml:"-"`
}

// ScenarioTemplate is a pre-authored workflow plus the keywords used to
// match it against a request.
type ScenarioTemplate struct {
	ID       string   `json:"id" yaml:"id"`
	Keywords []string `json:"keywords" yaml:"keywords"`
	Workflow `yaml:",inline"`
}

// ScenarioMatch is a template selected for one request.
type ScenarioMatch struct {
	ScenarioTemplate
	MatchScore float64 `json:"matchScore"`
}

// ScenarioSummary is the public listing entry for a template.
type ScenarioSummary struct {
	ID            string     `json:"id"`
	Task          string     `json:"task"`
	Complexity    Complexity `json:"complexity"`
	EstimatedTime string     `json:"estimatedTime"`
	Keywords      []string   `json:"keywords"`
}

// Summary strips the steps from a template.
func (t ScenarioTemplate) Summary() ScenarioSummary {
	return ScenarioSummary{
		ID:            t.ID,
		Task:          t.Task,
		Complexity:    t.Complexity,
		EstimatedTime: t.EstimatedTime,
		Keywords:      t.Keywords,
	}
}
