// Package models defines the domain models for the recommendation service
package models

import (
	"time"
)

// Complexity is the classifier's verdict on how much work a task needs
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Valid reports whether c is one of the three known tiers.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexitySimple, ComplexityModerate, ComplexityComplex:
		return true
	}
	return false
}

// SpeedClass is the relative latency of a model tier
type SpeedClass string

const (
	SpeedFast   SpeedClass = "fast"
	SpeedMedium SpeedClass = "medium"
	SpeedSlow   SpeedClass = "slow"
)

// ToolRecord is a single catalog entry. Name is the deduplication key.
type ToolRecord struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
	Desc string `json:"desc" yaml:"desc"`
}

// Category groups the tools recommended for one task keyword
type Category struct {
	Key   string       `json:"key" yaml:"key"`
	Tools []ToolRecord `json:"tools" yaml:"tools"`
}

// ModelTier describes one LLM and the complexity class it serves
type ModelTier struct {
	ID                   string     `json:"id" yaml:"id"`
	CostPerMillionTokens float64    `json:"costPerMillionTokens" yaml:"cost_per_million_tokens"`
	Speed                SpeedClass `json:"speedClass" yaml:"speed"`
	Capability           Complexity `json:"capabilityClass" yaml:"capability"`
}

// TaskAnalysis is produced once per request by the classifier and never
// mutated afterwards.
type TaskAnalysis struct {
	Complexity     Complexity `json:"complexity"`
	TaskType       string     `json:"taskType"`
	Keywords       []string   `json:"keywords"`
	Reasoning      string     `json:"reasoning"`
	NeedsWebSearch bool       `json:"needsWebSearch"`
}

// CaseRecord is a curated before/after example shown on the landing page
type CaseRecord struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Desc     string   `json:"desc" yaml:"desc"`
	Solution string   `json:"solution" yaml:"solution"`
	Products []string `json:"products" yaml:"products"`
}

// HealthStatus represents service health
type HealthStatus struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// ProblemDetails represents RFC 7807 Problem Details
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	TraceID  string `json:"trace_id,omitempty"`
}
