package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
)

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	r, err := NewRecorder("test")
	require.NoError(t, err)
	return r
}

func TestRoundObserver_CountsOutcomes(t *testing.T) {
	t.Parallel()

	r := newTestRecorder(t)
	o := r.Round("Go", benchmark.CategoryIO)

	o.Observe(benchmark.Sample{Outcome: benchmark.OutcomeSuccess, Duration: 100 * time.Millisecond})
	o.Observe(benchmark.Sample{Outcome: benchmark.OutcomeSuccess, Duration: 120 * time.Millisecond, Mismatch: true})
	o.Observe(benchmark.Sample{Outcome: benchmark.OutcomeTimeout})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.attempts.WithLabelValues("Go", "IO", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.attempts.WithLabelValues("Go", "IO", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.mismatches.WithLabelValues("Go", "IO")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.attemptDuration))
}

func TestRecorder_RecordSummary(t *testing.T) {
	t.Parallel()

	r := newTestRecorder(t)
	r.RecordSummary(benchmark.CategoryCPU, "Node.js", benchmark.SummaryRecord{
		P95:        95 * time.Millisecond,
		ErrorCount: 4,
		Throughput: 250,
	})

	assert.InDelta(t, 0.095, testutil.ToFloat64(r.roundLatency.WithLabelValues("Node.js", "CPU", "p95")), 1e-9)
	assert.Equal(t, 4.0, testutil.ToFloat64(r.roundErrors.WithLabelValues("Node.js", "CPU")))
	assert.Equal(t, 250.0, testutil.ToFloat64(r.roundThroughput.WithLabelValues("Node.js", "CPU")))
}

func TestRecorder_RecordSummaryNoData(t *testing.T) {
	t.Parallel()

	r := newTestRecorder(t)
	r.RecordSummary(benchmark.CategoryIO, "Go", benchmark.SummaryRecord{NoData: true, ErrorCount: 9})

	assert.Equal(t, 0, testutil.CollectAndCount(r.roundLatency))
	assert.Equal(t, 9.0, testutil.ToFloat64(r.roundErrors.WithLabelValues("Go", "IO")))
}

func TestRecorder_RecordBreakingPoint(t *testing.T) {
	t.Parallel()

	r := newTestRecorder(t)
	r.RecordBreakingPoint("Dotnet", benchmark.BreakingPointResult{MaxStableConcurrency: 22500, StopReason: benchmark.StopThresholdExceeded})

	assert.Equal(t, 22500.0, testutil.ToFloat64(r.maxStableConcurrency.WithLabelValues("Dotnet", "ThresholdExceeded")))
}

func TestNewRouter_ServesRegistry(t *testing.T) {
	t.Parallel()

	r := newTestRecorder(t)
	r.Round("Go", benchmark.CategoryBaseline).Observe(benchmark.Sample{Outcome: benchmark.OutcomeSuccess})

	srv := httptest.NewServer(NewRouter(r, ""))
	defer srv.Close()

	resp, err := http.Get(srv.URL + DefaultPath)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `test_attempts_total{category="Baseline",outcome="success",target="Go"} 1`)
}

func TestNewMetric_UnknownType(t *testing.T) {
	t.Parallel()
	assert.Nil(t, NewMetric(&Metric{Name: "x", Type: "summary"}, "test"))
}
