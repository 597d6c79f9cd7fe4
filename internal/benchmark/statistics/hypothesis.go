package statistics

import (
	"math"
	"sort"
)

// significanceLevel is the p-value below which two latency distributions are
// reported as different
const significanceLevel = 0.05

// MannWhitneyU performs a two-sided Mann-Whitney U test on two groups and
// returns the p-value using the normal approximation.
// H0: both groups come from the same distribution.
func MannWhitneyU(groupA, groupB []float64) float64 {
	if len(groupA) == 0 || len(groupB) == 0 {
		return 1.0
	}

	n1 := float64(len(groupA))
	n2 := float64(len(groupB))

	type rankItem struct {
		value float64
		fromA bool
	}

	combined := make([]rankItem, 0, len(groupA)+len(groupB))
	for _, v := range groupA {
		combined = append(combined, rankItem{v, true})
	}
	for _, v := range groupB {
		combined = append(combined, rankItem{v, false})
	}
	sort.Slice(combined, func(i, j int) bool {
		return combined[i].value < combined[j].value
	})

	// Tied values share the average of their ranks
	rankSumA := 0.0
	for i := 0; i < len(combined); {
		j := i
		for j < len(combined) && combined[j].value == combined[i].value {
			j++
		}
		avgRank := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			if combined[k].fromA {
				rankSumA += avgRank
			}
		}
		i = j
	}

	u1 := rankSumA - n1*(n1+1)/2.0
	u := math.Min(u1, n1*n2-u1)

	meanU := n1 * n2 / 2.0
	stdU := math.Sqrt(n1 * n2 * (n1 + n2 + 1) / 12.0)
	if stdU == 0 {
		return 1.0
	}

	z := (u - meanU) / stdU
	return 2.0 * normalCDF(-math.Abs(z))
}

// normalCDF approximates the standard normal cumulative distribution function
func normalCDF(z float64) float64 {
	return 0.5 * (1.0 + math.Erf(z/math.Sqrt2))
}

// Comparison describes how a candidate latency distribution differs from a
// reference one
type Comparison struct {
	Reference     string  `json:"reference"`
	MedianDiffPct float64 `json:"median_diff_pct"` // positive: candidate is slower
	PValue        float64 `json:"p_value"`
	HasOverlap    bool    `json:"has_overlap"`
	Significant   bool    `json:"significant"`
}

// Compare performs statistical comparison between two groups
func Compare(reference string, statsA, statsB Stats) Comparison {
	medianDiff := 0.0
	if statsA.Median != 0 {
		medianDiff = ((statsB.Median - statsA.Median) / statsA.Median) * 100
	}

	pValue := MannWhitneyU(statsA.Values, statsB.Values)

	return Comparison{
		Reference:     reference,
		MedianDiffPct: medianDiff,
		PValue:        pValue,
		HasOverlap:    HasOverlap(statsA, statsB),
		Significant:   pValue < significanceLevel,
	}
}

// Significance renders the comparison the way the console tables show it
func (c Comparison) Significance() string {
	switch {
	case !c.HasOverlap:
		return "No overlap"
	case c.PValue < 0.001:
		return "*** (p<0.001)"
	case c.PValue < 0.01:
		return "** (p<0.01)"
	case c.PValue < significanceLevel:
		return "* (p<0.05)"
	default:
		return "n.s."
	}
}
