package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
)

// SummariesToCSV exports one row per (category, target) summary for plotting
func SummariesToCSV(results *benchmark.Results, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	// Header row
	header := []string{
		"Category", "Target", "NoData",
		"Avg_ms", "P50_ms", "P95_ms", "P99_ms", "Min_ms", "Max_ms", "StdDev_ms",
		"Samples", "Errors", "Timeouts", "Mismatches", "Throughput_rps",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, category := range results.SummaryCategories() {
		for _, target := range results.Targets {
			rec, ok := results.Summaries[category][target]
			if !ok {
				continue
			}
			row := []string{
				string(category),
				target,
				strconv.FormatBool(rec.NoData),
				millis(rec.Avg, rec.NoData),
				millis(rec.P50, rec.NoData),
				millis(rec.P95, rec.NoData),
				millis(rec.P99, rec.NoData),
				millis(rec.Min, rec.NoData),
				millis(rec.Max, rec.NoData),
				millis(rec.StdDev, rec.NoData),
				strconv.Itoa(rec.SampleCount),
				strconv.Itoa(rec.ErrorCount),
				strconv.Itoa(rec.TimeoutCount),
				strconv.Itoa(rec.MismatchCount),
				fmt.Sprintf("%.2f", rec.Throughput),
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// ProbesToCSV exports every breaking-point probe, one row per probe
func ProbesToCSV(results *benchmark.Results, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{"Target", "Concurrency", "Attempts", "Errors", "Timeouts", "Duration_ms", "MaxStable", "StopReason"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, target := range results.Targets {
		bp, ok := results.BreakingPoints[target]
		if !ok {
			continue
		}
		for _, p := range bp.Probes {
			row := []string{
				target,
				strconv.Itoa(p.Concurrency),
				strconv.Itoa(p.Attempts),
				strconv.Itoa(p.Errors),
				strconv.Itoa(p.Timeouts),
				millis(p.Duration, false),
				strconv.Itoa(bp.MaxStableConcurrency),
				string(bp.StopReason),
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// millis renders a duration in milliseconds, empty when there is no data
func millis(d time.Duration, noData bool) string {
	if noData {
		return ""
	}
	return fmt.Sprintf("%.3f", float64(d)/float64(time.Millisecond))
}
