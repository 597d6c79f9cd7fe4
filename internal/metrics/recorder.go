package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
)

// Recorder exposes the progress and results of a run as prometheus metrics.
// It has its own registry so several recorders can coexist in tests.
type Recorder struct {
	registry *prometheus.Registry

	attempts             *prometheus.CounterVec
	mismatches           *prometheus.CounterVec
	attemptDuration      *prometheus.HistogramVec
	roundLatency         *prometheus.GaugeVec
	roundErrors          *prometheus.GaugeVec
	roundThroughput      *prometheus.GaugeVec
	maxStableConcurrency *prometheus.GaugeVec
}

// NewRecorder creates a recorder and registers the standard metrics
func NewRecorder(namespace string) (*Recorder, error) {
	r := &Recorder{registry: prometheus.NewRegistry()}

	for _, def := range StandardMetrics {
		metric := NewMetric(def, namespace)
		if metric == nil {
			return nil, fmt.Errorf("metric %s: unsupported type %q", def.ID, def.Type)
		}
		if err := r.registry.Register(metric); err != nil {
			return nil, fmt.Errorf("register metric %s: %w", def.ID, err)
		}
		switch def {
		case AttemptsTotal:
			r.attempts = metric.(*prometheus.CounterVec)
		case MismatchesTotal:
			r.mismatches = metric.(*prometheus.CounterVec)
		case AttemptDuration:
			r.attemptDuration = metric.(*prometheus.HistogramVec)
		case RoundLatency:
			r.roundLatency = metric.(*prometheus.GaugeVec)
		case RoundErrors:
			r.roundErrors = metric.(*prometheus.GaugeVec)
		case RoundThroughput:
			r.roundThroughput = metric.(*prometheus.GaugeVec)
		case MaxStableConcurrency:
			r.maxStableConcurrency = metric.(*prometheus.GaugeVec)
		}
	}

	return r, nil
}

// Registry returns the registry holding the recorder's collectors
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RoundObserver counts the attempts of one (target, category) round
type RoundObserver struct {
	recorder *Recorder
	target   string
	category string
}

// Round returns an observer bound to target and category
func (r *Recorder) Round(target string, category benchmark.Category) *RoundObserver {
	return &RoundObserver{recorder: r, target: target, category: string(category)}
}

// Observe implements httpload.Observer
func (o *RoundObserver) Observe(sample benchmark.Sample) {
	o.recorder.attempts.WithLabelValues(o.target, o.category, sample.Outcome.String()).Inc()
	if sample.Outcome == benchmark.OutcomeSuccess {
		o.recorder.attemptDuration.WithLabelValues(o.target, o.category).Observe(sample.Duration.Seconds())
	}
	if sample.Mismatch {
		o.recorder.mismatches.WithLabelValues(o.target, o.category).Inc()
	}
}

// RecordSummary publishes the summary of a finished round
func (r *Recorder) RecordSummary(category benchmark.Category, target string, rec benchmark.SummaryRecord) {
	c := string(category)
	r.roundErrors.WithLabelValues(target, c).Set(float64(rec.ErrorCount))
	r.roundThroughput.WithLabelValues(target, c).Set(rec.Throughput)
	if rec.NoData {
		return
	}
	r.roundLatency.WithLabelValues(target, c, "avg").Set(rec.Avg.Seconds())
	r.roundLatency.WithLabelValues(target, c, "p50").Set(rec.P50.Seconds())
	r.roundLatency.WithLabelValues(target, c, "p95").Set(rec.P95.Seconds())
	r.roundLatency.WithLabelValues(target, c, "p99").Set(rec.P99.Seconds())
	r.roundLatency.WithLabelValues(target, c, "max").Set(rec.Max.Seconds())
}

// RecordBreakingPoint publishes the result of a breaking-point search
func (r *Recorder) RecordBreakingPoint(target string, result benchmark.BreakingPointResult) {
	r.maxStableConcurrency.WithLabelValues(target, string(result.StopReason)).Set(float64(result.MaxStableConcurrency))
}
