package pipeline

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"ainav/backend/pkg/models"
)

// Model answers follow the requested shape only loosely. The types below
// decode scalars of the wrong kind instead of failing the whole answer.

// looseString accepts a string, number or bool. Anything else decodes to "".
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	switch b[0] {
	case '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
	case '{', '[':
		*s = ""
	default:
		*s = looseString(b)
	}
	return nil
}

// looseInt accepts a number or a numeric string. Unparseable values decode
// to 0, which forces step renumbering.
type looseInt int

func (n *looseInt) UnmarshalJSON(b []byte) error {
	var s looseString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*n = 0
		return nil
	}
	*n = looseInt(f)
	return nil
}

// looseStrings accepts a list or a single scalar.
type looseStrings []string

func (l *looseStrings) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var items []looseString
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			if v := strings.TrimSpace(string(item)); v != "" {
				out = append(out, v)
			}
		}
		*l = out
		return nil
	}
	var s looseString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	if v := strings.TrimSpace(string(s)); v != "" {
		*l = []string{v}
	} else {
		*l = []string{}
	}
	return nil
}

type looseTool struct {
	Name   looseString `json:"name"`
	URL    looseString `json:"url"`
	Reason looseString `json:"reason"`
}

type loosePrompt struct {
	Template  looseString  `json:"template"`
	Example   looseString  `json:"example"`
	Variables looseStrings `json:"variables"`
}

// UnmarshalJSON also takes a bare string as the template.
func (p *loosePrompt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		*p = loosePrompt{}
		return p.Template.UnmarshalJSON(b)
	}
	type plain loosePrompt
	return json.Unmarshal(b, (*plain)(p))
}

type looseStep struct {
	Step        looseInt     `json:"step"`
	Name        looseString  `json:"name"`
	Description looseString  `json:"description"`
	Tools       []looseTool  `json:"tools"`
	Prompt      loosePrompt  `json:"prompt"`
	Tips        looseStrings `json:"tips"`
	Tutorial    looseString  `json:"tutorial"`
}

type looseWorkflow struct {
	Task          looseString `json:"task"`
	Complexity    looseString `json:"complexity"`
	EstimatedTime looseString `json:"estimatedTime"`
	Steps         []looseStep `json:"workflow"`
	Mermaid       looseString `json:"mermaid"`
}

func (w looseWorkflow) workflow() models.Workflow {
	out := models.Workflow{
		Task:          strings.TrimSpace(string(w.Task)),
		Complexity:    models.Complexity(strings.ToLower(strings.TrimSpace(string(w.Complexity)))),
		EstimatedTime: string(w.EstimatedTime),
		Mermaid:       string(w.Mermaid),
		Steps:         make([]models.WorkflowStep, 0, len(w.Steps)),
	}
	for _, s := range w.Steps {
		step := models.WorkflowStep{
			Step:        int(s.Step),
			Name:        string(s.Name),
			Description: string(s.Description),
			Tools:       make([]models.StepTool, 0, len(s.Tools)),
			Prompt: models.StepPrompt{
				Template:  string(s.Prompt.Template),
				Example:   string(s.Prompt.Example),
				Variables: nonNil(s.Prompt.Variables),
			},
			Tips:     nonNil(s.Tips),
			Tutorial: string(s.Tutorial),
		}
		for _, t := range s.Tools {
			step.Tools = append(step.Tools, models.StepTool{Name: string(t.Name), URL: string(t.URL), Reason: string(t.Reason)})
		}
		out.Steps = append(out.Steps, step)
	}
	return out
}

func nonNil(l looseStrings) []string {
	if l == nil {
		return []string{}
	}
	return l
}
