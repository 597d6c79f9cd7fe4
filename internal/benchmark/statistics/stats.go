package statistics

import (
	"math"
	"sort"
	"time"
)

// Stats holds statistical measures for a metric
type Stats struct {
	Median float64
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	CV     float64 // Coefficient of Variation (%)
	Values []float64
}

// Percentile returns the p-th percentile (0..100) of an ascending slice using
// linear interpolation between closest ranks: rank = p/100 * (n-1), and the
// result is sorted[lo] + (rank-lo) * (sorted[lo+1]-sorted[lo]). This matches
// numpy's default ("linear") method.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}

	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Median calculates the median of a slice of float64 values
func Median(values []float64) float64 {
	return Percentile(sortedCopy(values), 50)
}

// Mean calculates the arithmetic mean
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev calculates the sample standard deviation
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	mean := Mean(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	return math.Sqrt(variance / float64(len(values)-1))
}

// CV calculates the coefficient of variation (stddev/mean * 100)
func CV(values []float64) float64 {
	mean := Mean(values)
	if mean == 0 {
		return 0
	}
	return (StdDev(values) / math.Abs(mean)) * 100
}

// Calculate computes all statistical measures for a slice of values
func Calculate(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	sorted := sortedCopy(values)

	return Stats{
		Median: Percentile(sorted, 50),
		Mean:   Mean(values),
		StdDev: StdDev(values),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		CV:     CV(values),
		Values: sorted,
	}
}

// HasOverlap checks if two value ranges overlap
func HasOverlap(statsA, statsB Stats) bool {
	return !(statsA.Min > statsB.Max || statsB.Min > statsA.Max)
}

// Latency is the latency summary of a set of durations
type Latency struct {
	Mean   time.Duration
	P50    time.Duration
	P95    time.Duration
	P99    time.Duration
	Min    time.Duration
	Max    time.Duration
	StdDev time.Duration
}

// Summarize computes the latency summary. The input is not modified and its
// order does not matter. Interpolated values are rounded to the nearest
// nanosecond.
func Summarize(durations []time.Duration) Latency {
	if len(durations) == 0 {
		return Latency{}
	}

	values := Seconds(durations)
	sorted := sortedCopy(values)

	return Latency{
		Mean:   fromSeconds(Mean(values)),
		P50:    fromSeconds(Percentile(sorted, 50)),
		P95:    fromSeconds(Percentile(sorted, 95)),
		P99:    fromSeconds(Percentile(sorted, 99)),
		Min:    fromSeconds(sorted[0]),
		Max:    fromSeconds(sorted[len(sorted)-1]),
		StdDev: fromSeconds(StdDev(values)),
	}
}

// Seconds converts durations to float seconds
func Seconds(durations []time.Duration) []float64 {
	values := make([]float64, len(durations))
	for i, d := range durations {
		values[i] = d.Seconds()
	}
	return values
}

func fromSeconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}
