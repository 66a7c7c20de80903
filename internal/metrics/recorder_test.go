package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_CountsAndGauges(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.IncStageResult("render", ResultSuccess)
	r.IncStageResult("render", ResultSuccess)
	r.IncStageResult("feed", ResultWarning)
	r.IncBuildOutcome("success")
	r.SetPostCounts(12, 3)
	r.IncRebuildTrigger("fsnotify")
	r.ObserveBuildDuration(120 * time.Millisecond)
	r.ObserveStageDuration("render", 80*time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(r.stageResults.WithLabelValues("render", "success")), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(r.stageResults.WithLabelValues("feed", "warning")), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(r.buildOutcome.WithLabelValues("success")), 0.001)
	assert.InDelta(t, 12, testutil.ToFloat64(r.postsPublished), 0.001)
	assert.InDelta(t, 3, testutil.ToFloat64(r.postsDrafts), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(r.rebuildTriggers.WithLabelValues("fsnotify")), 0.001)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNoopRecorder_IsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveBuildDuration(time.Second)
	r.IncStageResult("render", ResultFatal)
	r.SetPostCounts(0, 0)
}
