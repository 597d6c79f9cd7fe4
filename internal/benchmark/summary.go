package benchmark

import (
	"github.com/moguls753/runtime-benchmark/internal/benchmark/statistics"
)

// NoDataRecord is the summary of a round in which no attempt succeeded
func NoDataRecord(set SampleSet) SummaryRecord {
	return SummaryRecord{
		NoData:        true,
		ErrorCount:    set.Errors,
		TimeoutCount:  set.Timeouts,
		MismatchCount: set.Mismatches,
	}
}

// Aggregate turns a finished sample set into its summary. p95 and p99 use
// linear interpolation between ranks, see statistics.Percentile.
func Aggregate(set SampleSet) SummaryRecord {
	if len(set.Durations) == 0 {
		return NoDataRecord(set)
	}

	lat := statistics.Summarize(set.Durations)

	var throughput float64
	if set.Span > 0 {
		throughput = float64(len(set.Durations)) / set.Span.Seconds()
	}

	return SummaryRecord{
		Avg:           lat.Mean,
		P50:           lat.P50,
		P95:           lat.P95,
		P99:           lat.P99,
		Min:           lat.Min,
		Max:           lat.Max,
		StdDev:        lat.StdDev,
		SampleCount:   len(set.Durations),
		ErrorCount:    set.Errors,
		TimeoutCount:  set.Timeouts,
		MismatchCount: set.Mismatches,
		Throughput:    throughput,
	}
}
