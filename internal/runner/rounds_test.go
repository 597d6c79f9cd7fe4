package runner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
	"github.com/moguls753/runtime-benchmark/internal/benchmark/docker"
	"github.com/moguls753/runtime-benchmark/internal/benchmark/httpload"
	"github.com/moguls753/runtime-benchmark/internal/metrics"
)

type countingServer struct {
	*httptest.Server
	requests atomic.Int64
}

func newTarget(t *testing.T, name string, delay time.Duration, status int) (benchmark.Target, *countingServer) {
	t.Helper()

	s := &countingServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		time.Sleep(delay)
		w.WriteHeader(status)
		w.Write([]byte(`{"result":224737}`))
	}))
	t.Cleanup(s.Close)
	return benchmark.Target{Name: name, BaseURL: s.URL}, s
}

func smallRound(category benchmark.Category) Round {
	return Round{
		Category: category,
		Endpoint: benchmark.EndpointIO,
		Profile: benchmark.LoadProfile{
			Concurrency: 2,
			Shape:       benchmark.ShapeCount,
			Requests:    3,
			Timeout:     time.Second,
		},
	}
}

func newTestRunner(targets ...benchmark.Target) *Runner {
	logger, _ := test.NewNullLogger()
	return &Runner{
		RunID:   "test-run",
		Targets: targets,
		Warmup:  httpload.Warmup{Requests: 2},
		Logger:  logger,
	}
}

func TestRunner_RunsEveryCategoryAgainstEveryTarget(t *testing.T) {
	t.Parallel()

	fast, fastSrv := newTarget(t, "Fast", time.Millisecond, http.StatusOK)
	slow, _ := newTarget(t, "Slow", 5*time.Millisecond, http.StatusOK)

	r := newTestRunner(fast, slow)
	r.Rounds = []Round{smallRound(benchmark.CategoryBaseline), smallRound(benchmark.CategoryIO)}

	results, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "test-run", results.RunID)
	assert.Equal(t, []benchmark.Category{benchmark.CategoryBaseline, benchmark.CategoryIO}, results.Categories)
	for _, category := range results.Categories {
		for _, name := range []string{"Fast", "Slow"} {
			rec := results.Summaries[category][name]
			assert.Equal(t, 6, rec.SampleCount, "%s/%s", category, name)
			assert.Zero(t, rec.ErrorCount)
			assert.False(t, rec.NoData)
		}
		cmp, ok := results.Comparisons[category]["Slow"]
		require.True(t, ok)
		assert.Equal(t, "Fast", cmp.Reference)
	}
	assert.False(t, results.FinishedAt.Before(results.StartedAt))

	// two rounds of 6 attempts plus two warmups of 2
	assert.Equal(t, int64(16), fastSrv.requests.Load())
}

func TestRunner_FailingTargetHasNoData(t *testing.T) {
	t.Parallel()

	ok, _ := newTarget(t, "OK", 0, http.StatusOK)
	broken, _ := newTarget(t, "Broken", 0, http.StatusBadGateway)

	r := newTestRunner(ok, broken)
	r.Rounds = []Round{smallRound(benchmark.CategoryIO)}

	results, err := r.Run(context.Background())
	require.NoError(t, err)

	rec := results.Summaries[benchmark.CategoryIO]["Broken"]
	assert.True(t, rec.NoData)
	assert.Equal(t, 6, rec.ErrorCount)
	assert.NotContains(t, results.Comparisons[benchmark.CategoryIO], "Broken")
}

func TestRunner_BreakingPoint(t *testing.T) {
	t.Parallel()

	target, _ := newTarget(t, "Go", 0, http.StatusOK)
	recorder, err := metrics.NewRecorder("test")
	require.NoError(t, err)

	r := newTestRunner(target)
	r.Recorder = recorder
	r.Breaking = &BreakingRound{
		Endpoint: benchmark.EndpointIO,
		Config: httpload.BreakingConfig{
			Start:            1,
			Step:             1,
			Limit:            3,
			RequestsPerRound: 2,
			Timeout:          time.Second,
		},
	}

	results, err := r.Run(context.Background())
	require.NoError(t, err)

	bp := results.BreakingPoints["Go"]
	assert.Equal(t, benchmark.StopSurvived, bp.StopReason)
	assert.Equal(t, 3, bp.MaxStableConcurrency)
	assert.Len(t, bp.Probes, 3)
	assert.Equal(t, []benchmark.Category{benchmark.CategoryBreakingPoint}, results.Categories)

	count, err := testutil.GatherAndCount(recorder.Registry(), "test_max_stable_concurrency")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRunner_RecordsMetricsAndResources(t *testing.T) {
	t.Parallel()

	target, _ := newTarget(t, "Go", 0, http.StatusOK)
	target.Container = "go-server"
	recorder, err := metrics.NewRecorder("test")
	require.NoError(t, err)

	var reads atomic.Int64
	start := time.Now()
	r := newTestRunner(target)
	r.Recorder = recorder
	r.Rounds = []Round{smallRound(benchmark.CategoryCPU)}
	r.ProgressInterval = time.Millisecond
	r.Snapshot = func(container string) (*docker.Snapshot, error) {
		n := reads.Add(1)
		return &docker.Snapshot{
			CPUUsage:    time.Duration(n) * time.Second,
			MemoryBytes: 1024,
			Timestamp:   start.Add(time.Duration(n) * time.Second),
		}, nil
	}

	results, err := r.Run(context.Background())
	require.NoError(t, err)

	usage, ok := results.Resources[benchmark.CategoryCPU]["Go"]
	require.True(t, ok)
	assert.InDelta(t, 1.0, usage.CPUSeconds, 1e-9)
	assert.Equal(t, uint64(1024), usage.MemoryBytes)

	count, err := testutil.GatherAndCount(recorder.Registry(), "test_attempts_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "one success series")
}

func TestRunner_CancelledReturnsPartialResults(t *testing.T) {
	t.Parallel()

	target, _ := newTarget(t, "Go", 0, http.StatusOK)
	r := newTestRunner(target)
	r.Rounds = []Round{smallRound(benchmark.CategoryIO)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, results)
	assert.Empty(t, results.Summaries)
}

func TestRunner_CooldownBetweenTargets(t *testing.T) {
	t.Parallel()

	a, _ := newTarget(t, "A", 0, http.StatusOK)
	b, _ := newTarget(t, "B", 0, http.StatusOK)

	round := smallRound(benchmark.CategoryIO)
	round.Cooldown = 100 * time.Millisecond

	r := newTestRunner(a, b)
	r.Rounds = []Round{round}

	start := time.Now()
	_, err := r.Run(context.Background())
	require.NoError(t, err)

	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Less(t, elapsed, 200*time.Millisecond+time.Second, "no cooldown after the last step")
}
