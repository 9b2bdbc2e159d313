package telemetry

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors(t *testing.T) {
	before := testutil.ToFloat64(Recommendations.WithLabelValues("simple", "catalog"))
	Recommendations.WithLabelValues("simple", "catalog").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Recommendations.WithLabelValues("simple", "catalog")))

	before = testutil.ToFloat64(Degraded.WithLabelValues(StageEnrich))
	Degraded.WithLabelValues(StageEnrich).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Degraded.WithLabelValues(StageEnrich)))

	StageDuration.WithLabelValues(StageClassify).Observe(0.01)
	assert.Positive(t, testutil.CollectAndCount(StageDuration))
}

func TestInstrumentation(t *testing.T) {
	_, span := Tracer().Start(context.Background(), "test")
	span.End()

	counter, err := Meter().Int64Counter("test.counter")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)
}
