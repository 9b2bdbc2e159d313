// Package telemetry holds the process-wide prometheus collectors and the
// otel instrumentation handles used by the recommendation pipeline.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "ainav/backend/pipeline"

// Pipeline stage labels.
const (
	StageClassify = "classify"
	StageSimple   = "simple"
	StageMatch    = "match"
	StageGenerate = "generate"
	StageEnrich   = "enrich"
)

var (
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ainav_recommendations_total",
			Help: "Total number of recommendation responses by mode and workflow source",
		},
		[]string{"mode", "source"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ainav_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: []float64{.005, .05, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	Degraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ainav_degraded_total",
			Help: "Total number of stages that answered with a fallback value",
		},
		[]string{"stage"},
	)
)

// Tracer returns the pipeline tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Meter returns the pipeline meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
