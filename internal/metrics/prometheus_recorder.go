package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once           sync.Once
	stageDuration  *prom.HistogramVec
	buildDuration  prom.Histogram
	stageResults   *prom.CounterVec
	runOutcome     *prom.CounterVec
	analyzeRaces   prom.Histogram
	uploadDuration prom.Histogram
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "raceboard",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "raceboard",
			Name:      "build_duration_seconds",
			Help:      "Total build pipeline duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "raceboard",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.runOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "raceboard",
			Name:      "run_outcomes_total",
			Help:      "Run outcomes by run type and final status",
		}, []string{"run_type", "outcome"})
		pr.analyzeRaces = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "raceboard",
			Name:      "analyze_races",
			Help:      "Races detected per analyzed log",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		})
		pr.uploadDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "raceboard",
			Name:      "upload_duration_seconds",
			Help:      "Duration of dashboard uploads",
			Buckets:   prom.DefBuckets,
		})
		reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.runOutcome, pr.analyzeRaces, pr.uploadDuration)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncRunOutcome(runType, outcome string) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(runType, outcome).Inc()
}

func (p *PrometheusRecorder) ObserveAnalyzeRaces(n int) {
	if p == nil || p.analyzeRaces == nil {
		return
	}
	p.analyzeRaces.Observe(float64(n))
}

func (p *PrometheusRecorder) ObserveUploadDuration(d time.Duration) {
	if p == nil || p.uploadDuration == nil {
		return
	}
	p.uploadDuration.Observe(d.Seconds())
}
