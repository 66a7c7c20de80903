package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder on a Prometheus registry.
type PrometheusRecorder struct {
	stageDuration   *prom.HistogramVec
	buildDuration   prom.Histogram
	stageResults    *prom.CounterVec
	buildOutcome    *prom.CounterVec
	postsPublished  prom.Gauge
	postsDrafts     prom.Gauge
	rebuildTriggers *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the build metrics. A nil
// registry gets a fresh private one (useful in tests).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "blogbuilder",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "blogbuilder",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogbuilder",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogbuilder",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		postsPublished: prom.NewGauge(prom.GaugeOpts{
			Namespace: "blogbuilder",
			Name:      "posts_published",
			Help:      "Published posts in the last completed build",
		}),
		postsDrafts: prom.NewGauge(prom.GaugeOpts{
			Namespace: "blogbuilder",
			Name:      "posts_drafts",
			Help:      "Draft posts excluded from the last completed build",
		}),
		rebuildTriggers: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogbuilder",
			Name:      "rebuild_triggers_total",
			Help:      "Rebuilds by trigger reason",
		}, []string{"reason"}),
	}
	reg.MustRegister(
		pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
		pr.postsPublished, pr.postsDrafts, pr.rebuildTriggers,
	)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetPostCounts(published, drafts int) {
	p.postsPublished.Set(float64(published))
	p.postsDrafts.Set(float64(drafts))
}

func (p *PrometheusRecorder) IncRebuildTrigger(reason string) {
	p.rebuildTriggers.WithLabelValues(reason).Inc()
}
