package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric describes one collector the recorder registers
type Metric struct {
	ID          string
	Name        string
	Description string
	Type        string
	Args        []string
	Buckets     []float64
}

var AttemptsTotal = &Metric{
	ID:          "attemptsTotal",
	Name:        "attempts_total",
	Description: "Finished attempts, partitioned by target, category and outcome.",
	Type:        "counter_vec",
	Args:        []string{"target", "category", "outcome"},
}

var MismatchesTotal = &Metric{
	ID:          "mismatchesTotal",
	Name:        "correctness_mismatches_total",
	Description: "Successful responses whose payload disagreed with the expected value.",
	Type:        "counter_vec",
	Args:        []string{"target", "category"},
}

var AttemptDuration = &Metric{
	ID:          "attemptDuration",
	Name:        "attempt_duration_seconds",
	Description: "Latency of successful attempts.",
	Type:        "histogram_vec",
	Args:        []string{"target", "category"},
	Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.15, 0.25, 0.5, 1, 2.5, 5, 10, 30},
}

var RoundLatency = &Metric{
	ID:          "roundLatency",
	Name:        "round_latency_seconds",
	Description: "Latency summary of the last round, partitioned by statistic (avg, p50, p95, p99, max).",
	Type:        "gauge_vec",
	Args:        []string{"target", "category", "stat"},
}

var RoundErrors = &Metric{
	ID:          "roundErrors",
	Name:        "round_errors",
	Description: "Failed attempts in the last round.",
	Type:        "gauge_vec",
	Args:        []string{"target", "category"},
}

var RoundThroughput = &Metric{
	ID:          "roundThroughput",
	Name:        "round_throughput_rps",
	Description: "Successful requests per second in the last round.",
	Type:        "gauge_vec",
	Args:        []string{"target", "category"},
}

var MaxStableConcurrency = &Metric{
	ID:          "maxStableConcurrency",
	Name:        "max_stable_concurrency",
	Description: "Highest concurrency the breaking-point search found stable.",
	Type:        "gauge_vec",
	Args:        []string{"target", "stop_reason"},
}

var StandardMetrics = []*Metric{
	AttemptsTotal,
	MismatchesTotal,
	AttemptDuration,
	RoundLatency,
	RoundErrors,
	RoundThroughput,
	MaxStableConcurrency,
}

// NewMetric builds the prometheus collector matching m.Type
func NewMetric(m *Metric, namespace string) prometheus.Collector {
	var metric prometheus.Collector
	switch m.Type {
	case "counter_vec":
		metric = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      m.Name,
				Help:      m.Description,
			},
			m.Args,
		)
	case "gauge_vec":
		metric = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      m.Name,
				Help:      m.Description,
			},
			m.Args,
		)
	case "histogram_vec":
		buckets := m.Buckets
		if buckets == nil {
			buckets = prometheus.DefBuckets
		}
		metric = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      m.Name,
				Help:      m.Description,
				Buckets:   buckets,
			},
			m.Args,
		)
	}
	return metric
}
