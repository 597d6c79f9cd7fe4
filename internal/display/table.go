package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
)

const notAvailable = "N/A"

// Summaries writes one comparison table per measured category
func Summaries(w io.Writer, results *benchmark.Results) {
	for _, category := range results.SummaryCategories() {
		Category(w, category, results.Targets, results.Summaries[category])
	}
}

// Category writes the comparison table of one category, a column per target
func Category(w io.Writer, category benchmark.Category, targets []string, records map[string]benchmark.SummaryRecord) {
	width := 16 + 16*len(targets)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "COMPARISON - %s\n", category)
	fmt.Fprintln(w, strings.Repeat("=", width))

	// Header
	fmt.Fprintf(w, "%-16s", "Metric")
	for _, t := range targets {
		fmt.Fprintf(w, "%-16s", t)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", width))

	latencyRow(w, "Avg", targets, records, func(r benchmark.SummaryRecord) string { return benchmark.FormatLatency(r.Avg) })
	latencyRow(w, "P50", targets, records, func(r benchmark.SummaryRecord) string { return benchmark.FormatLatency(r.P50) })
	latencyRow(w, "P95", targets, records, func(r benchmark.SummaryRecord) string { return benchmark.FormatLatency(r.P95) })
	latencyRow(w, "P99", targets, records, func(r benchmark.SummaryRecord) string { return benchmark.FormatLatency(r.P99) })
	latencyRow(w, "Min", targets, records, func(r benchmark.SummaryRecord) string { return benchmark.FormatLatency(r.Min) })
	latencyRow(w, "Max", targets, records, func(r benchmark.SummaryRecord) string { return benchmark.FormatLatency(r.Max) })
	latencyRow(w, "Throughput", targets, records, func(r benchmark.SummaryRecord) string { return fmt.Sprintf("%.0f req/s", r.Throughput) })

	// Counters are shown even when no attempt succeeded
	countRow(w, "Samples", targets, records, func(r benchmark.SummaryRecord) int { return r.SampleCount })
	countRow(w, "Errors", targets, records, func(r benchmark.SummaryRecord) int { return r.ErrorCount })
	countRow(w, "Timeouts", targets, records, func(r benchmark.SummaryRecord) int { return r.TimeoutCount })
	countRow(w, "Mismatches", targets, records, func(r benchmark.SummaryRecord) int { return r.MismatchCount })

	fmt.Fprintf(w, "%-16s", "Error Rate")
	for _, t := range targets {
		rec, ok := records[t]
		if !ok {
			fmt.Fprintf(w, "%-16s", notAvailable)
			continue
		}
		fmt.Fprintf(w, "%-16s", fmt.Sprintf("%.2f%%", rec.ErrorRate()))
	}
	fmt.Fprintln(w)
}

func latencyRow(w io.Writer, label string, targets []string, records map[string]benchmark.SummaryRecord, value func(benchmark.SummaryRecord) string) {
	fmt.Fprintf(w, "%-16s", label)
	for _, t := range targets {
		rec, ok := records[t]
		if !ok || rec.NoData {
			fmt.Fprintf(w, "%-16s", notAvailable)
			continue
		}
		fmt.Fprintf(w, "%-16s", value(rec))
	}
	fmt.Fprintln(w)
}

func countRow(w io.Writer, label string, targets []string, records map[string]benchmark.SummaryRecord, value func(benchmark.SummaryRecord) int) {
	fmt.Fprintf(w, "%-16s", label)
	for _, t := range targets {
		rec, ok := records[t]
		if !ok {
			fmt.Fprintf(w, "%-16s", notAvailable)
			continue
		}
		fmt.Fprintf(w, "%-16d", value(rec))
	}
	fmt.Fprintln(w)
}

// BreakingPoints writes the breaking-point search results
func BreakingPoints(w io.Writer, results *benchmark.Results) {
	if len(results.BreakingPoints) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "BREAKING POINT")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "%-20s%-16s%-20s%-14s\n", "Target", "Max Stable", "Stop Reason", "Probes")
	fmt.Fprintln(w, strings.Repeat("-", 70))

	for _, t := range results.Targets {
		bp, ok := results.BreakingPoints[t]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%-20s%-16d%-20s%-14d\n", t, bp.MaxStableConcurrency, bp.StopReason, len(bp.Probes))
	}
}

// Resources writes the container resource usage per category, if any was sampled
func Resources(w io.Writer, results *benchmark.Results) {
	for _, category := range results.Categories {
		usage := results.Resources[category]
		if len(usage) == 0 {
			continue
		}

		fmt.Fprintln(w)
		fmt.Fprintf(w, "RESOURCES - %s\n", category)
		fmt.Fprintln(w, strings.Repeat("=", 84))
		fmt.Fprintf(w, "%-20s%-12s%-12s%-14s%-13s%-13s\n", "Target", "CPU s", "CPU %", "Memory", "Read MB/s", "Write MB/s")
		fmt.Fprintln(w, strings.Repeat("-", 84))

		for _, t := range results.Targets {
			u, ok := usage[t]
			if !ok {
				continue
			}
			fmt.Fprintf(w, "%-20s%-12s%-12s%-14s%-13s%-13s\n",
				t,
				fmt.Sprintf("%.2f", u.CPUSeconds),
				fmt.Sprintf("%.1f", u.CPUPercent),
				benchmark.FormatBytes(u.MemoryBytes),
				fmt.Sprintf("%.2f", u.ReadMBps),
				fmt.Sprintf("%.2f", u.WriteMBps),
			)
		}
	}
}
