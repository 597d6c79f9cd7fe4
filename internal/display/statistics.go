package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
)

// Comparisons writes the significance tests of every category that has them
func Comparisons(w io.Writer, results *benchmark.Results) {
	for _, category := range results.SummaryCategories() {
		comparisons := results.Comparisons[category]
		if len(comparisons) == 0 {
			continue
		}

		reference := ""
		for _, c := range comparisons {
			reference = c.Reference
			break
		}

		fmt.Fprintf(w, "\nStatistical Comparisons - %s (vs %s):\n", category, reference)
		fmt.Fprintln(w, "┌────────────────────────────────────┬─────────────┬──────────┬───────────┬──────────────┐")
		fmt.Fprintln(w, "│ Comparison                         │ Median Diff │ p-value  │ Overlap?  │ Significant? │")
		fmt.Fprintln(w, "├────────────────────────────────────┼─────────────┼──────────┼───────────┼──────────────┤")

		for _, target := range results.Targets {
			comp, ok := comparisons[target]
			if !ok {
				continue
			}

			overlap := "No"
			if comp.HasOverlap {
				overlap = "Yes"
			}

			fmt.Fprintf(w, "│ %-34s │ %+10.1f%% │ %8.4f │ %-9s │ %-12s │\n",
				truncate(comp.Reference+" vs "+target, 34),
				comp.MedianDiffPct,
				comp.PValue,
				overlap,
				comp.Significance(),
			)
		}

		fmt.Fprintln(w, "└────────────────────────────────────┴─────────────┴──────────┴───────────┴──────────────┘")
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Header prints the run banner
func Header(w io.Writer, runID string, targets []benchmark.Target) {
	fmt.Fprintln(w, "Runtime Benchmark")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Run ID:       %s\n", runID)
	for _, t := range targets {
		fmt.Fprintf(w, "Target:       %-14s %s\n", t.Name, t.BaseURL)
	}
	fmt.Fprintln(w)
}
