package benchmark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	t.Parallel()

	durations := make([]time.Duration, 100)
	for i := range durations {
		durations[i] = time.Duration(i+1) * time.Millisecond
	}
	set := SampleSet{
		Durations:  durations,
		Errors:     3,
		Timeouts:   1,
		Mismatches: 2,
		Attempted:  103,
		Span:       10 * time.Second,
	}

	rec := Aggregate(set)

	assert.False(t, rec.NoData)
	assert.Equal(t, 95050*time.Microsecond, rec.P95)
	assert.Equal(t, 99010*time.Microsecond, rec.P99)
	assert.Equal(t, 100, rec.SampleCount)
	assert.Equal(t, 3, rec.ErrorCount)
	assert.Equal(t, 1, rec.TimeoutCount)
	assert.Equal(t, 2, rec.MismatchCount)
	assert.InDelta(t, 10.0, rec.Throughput, 1e-9)
	assert.Equal(t, set.Attempted, rec.Total())
}

func TestAggregate_NoDataKeepsCounters(t *testing.T) {
	t.Parallel()

	rec := Aggregate(SampleSet{Errors: 7, Timeouts: 4, Attempted: 7})

	assert.True(t, rec.NoData)
	assert.Equal(t, 7, rec.ErrorCount)
	assert.Equal(t, 4, rec.TimeoutCount)
	assert.Zero(t, rec.SampleCount)
	assert.Zero(t, rec.P95)
	assert.InDelta(t, 100.0, rec.ErrorRate(), 1e-9)
}

func TestSummaryRecord_ErrorRate(t *testing.T) {
	t.Parallel()

	assert.Zero(t, SummaryRecord{}.ErrorRate())
	assert.InDelta(t, 25.0, SummaryRecord{SampleCount: 3, ErrorCount: 1}.ErrorRate(), 1e-9)
}
