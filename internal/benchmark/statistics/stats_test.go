package statistics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oneToHundredMillis() []time.Duration {
	durations := make([]time.Duration, 100)
	for i := range durations {
		durations[i] = time.Duration(i+1) * time.Millisecond
	}
	return durations
}

func TestSummarize_InterpolatesBetweenRanks(t *testing.T) {
	t.Parallel()

	lat := Summarize(oneToHundredMillis())

	assert.Equal(t, 95050*time.Microsecond, lat.P95)
	assert.Equal(t, 99010*time.Microsecond, lat.P99)
	assert.Equal(t, 50500*time.Microsecond, lat.P50)
	assert.Equal(t, 50500*time.Microsecond, lat.Mean)
	assert.Equal(t, time.Millisecond, lat.Min)
	assert.Equal(t, 100*time.Millisecond, lat.Max)
}

func TestSummarize_IgnoresInputOrder(t *testing.T) {
	t.Parallel()

	sorted := oneToHundredMillis()
	reversed := make([]time.Duration, len(sorted))
	for i, d := range sorted {
		reversed[len(sorted)-1-i] = d
	}

	assert.Equal(t, Summarize(sorted), Summarize(reversed))
	assert.Equal(t, time.Millisecond, reversed[len(reversed)-1], "input must not be modified")
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Latency{}, Summarize(nil))
}

func TestSummarize_SingleValue(t *testing.T) {
	t.Parallel()

	lat := Summarize([]time.Duration{42 * time.Millisecond})
	assert.Equal(t, 42*time.Millisecond, lat.P50)
	assert.Equal(t, 42*time.Millisecond, lat.P99)
	assert.Equal(t, time.Duration(0), lat.StdDev)
}

func TestPercentile(t *testing.T) {
	t.Parallel()

	sorted := []float64{10, 20, 30, 40}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 10},
		{25, 17.5},
		{50, 25},
		{100, 40},
		{150, 40},
		{-5, 10},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Percentile(sorted, tt.p), 1e-9, "p=%v", tt.p)
	}
	assert.Zero(t, Percentile(nil, 50))
}

func TestCalculate(t *testing.T) {
	t.Parallel()

	stats := Calculate([]float64{3, 1, 2})
	assert.Equal(t, []float64{1, 2, 3}, stats.Values)
	assert.InDelta(t, 2.0, stats.Median, 1e-9)
	assert.InDelta(t, 2.0, stats.Mean, 1e-9)
	assert.InDelta(t, 1.0, stats.StdDev, 1e-9)
	assert.InDelta(t, 50.0, stats.CV, 1e-9)

	assert.Equal(t, Stats{}, Calculate(nil))
}

func TestMannWhitneyU(t *testing.T) {
	t.Parallel()

	same := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.InDelta(t, 1.0, MannWhitneyU(same, same), 1e-9)

	low := make([]float64, 20)
	high := make([]float64, 20)
	for i := range low {
		low[i] = float64(i)
		high[i] = float64(i + 100)
	}
	assert.Less(t, MannWhitneyU(low, high), 0.001)

	assert.Equal(t, 1.0, MannWhitneyU(nil, high))
}

func TestCompare(t *testing.T) {
	t.Parallel()

	reference := Calculate([]float64{9, 10, 11})
	slower := Calculate([]float64{11, 12, 13})
	disjoint := Calculate([]float64{100, 101, 102})

	cmp := Compare("Go", reference, slower)
	require.Equal(t, "Go", cmp.Reference)
	assert.InDelta(t, 20.0, cmp.MedianDiffPct, 1e-9)
	assert.True(t, cmp.HasOverlap)

	cmp = Compare("Go", reference, disjoint)
	assert.False(t, cmp.HasOverlap)
	assert.Equal(t, "No overlap", cmp.Significance())
}

func TestComparison_Significance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pValue float64
		want   string
	}{
		{0.0001, "*** (p<0.001)"},
		{0.005, "** (p<0.01)"},
		{0.03, "* (p<0.05)"},
		{0.2, "n.s."},
	}
	for _, tt := range tests {
		c := Comparison{PValue: tt.pValue, HasOverlap: true}
		assert.Equal(t, tt.want, c.Significance())
	}
}
