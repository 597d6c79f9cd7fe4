package main

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/moguls753/runtime-benchmark/cmd/benchmark/scenarios"
	"github.com/moguls753/runtime-benchmark/internal/benchmark/httpload"
	"github.com/moguls753/runtime-benchmark/internal/config"
	"github.com/moguls753/runtime-benchmark/internal/container"
	"github.com/moguls753/runtime-benchmark/internal/display"
	"github.com/moguls753/runtime-benchmark/internal/export"
	"github.com/moguls753/runtime-benchmark/internal/metrics"
	"github.com/moguls753/runtime-benchmark/internal/runner"
)

const metricsNamespace = "runtime_benchmark"

func newRunCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the category rounds against every target",
		RunE: func(cmd *cobra.Command, _ []string) error {
			applyRunFlags(cmd, a.cfg)
			progress, _ := cmd.Flags().GetDuration("progress")
			return a.execute(cmd.Context(), progress)
		},
	}

	flags := cmd.Flags()
	flags.StringSlice("categories", nil, "Categories to run, in order (Baseline, IO, CPU, Sustained)")
	flags.String("shape", "", "Workload shape: duration or count")
	flags.Duration("duration", 0, "Length of a duration-bound round")
	flags.Int("requests", 0, "Attempts per worker in a count-bound round")
	flags.Duration("timeout", 0, "Per-request timeout")
	flags.Duration("ramp-up", 0, "Spread worker start-up over this window")
	flags.Duration("think-min", 0, "Minimum think-time between a worker's attempts")
	flags.Duration("think-max", 0, "Maximum think-time between a worker's attempts")
	flags.Bool("attack", false, "Attack mode: no ramp-up and no think-time")
	flags.Bool("check-correctness", true, "Verify the /heavy result")
	flags.Bool("breaking-point", false, "Run the breaking-point search after the rounds")
	flags.Duration("progress", 5*time.Second, "Progress log interval, 0 disables")
	return cmd
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("categories") {
		cfg.Categories, _ = flags.GetStringSlice("categories")
	}
	if flags.Changed("shape") {
		cfg.Load.Shape, _ = flags.GetString("shape")
	}
	if flags.Changed("duration") {
		cfg.Load.Duration, _ = flags.GetDuration("duration")
	}
	if flags.Changed("requests") {
		cfg.Load.RequestsPerWorker, _ = flags.GetInt("requests")
	}
	if flags.Changed("timeout") {
		cfg.Load.RequestTimeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("ramp-up") {
		cfg.Load.RampUp, _ = flags.GetDuration("ramp-up")
	}
	if flags.Changed("think-min") {
		cfg.Load.ThinkTimeMin, _ = flags.GetDuration("think-min")
	}
	if flags.Changed("think-max") {
		cfg.Load.ThinkTimeMax, _ = flags.GetDuration("think-max")
	}
	if flags.Changed("attack") {
		cfg.Load.AttackMode, _ = flags.GetBool("attack")
	}
	if flags.Changed("check-correctness") {
		cfg.Correctness.Enabled, _ = flags.GetBool("check-correctness")
	}
	if flags.Changed("breaking-point") {
		cfg.Breaking.Enabled, _ = flags.GetBool("breaking-point")
	}
}

func newBreakpointCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "breakpoint",
		Short: "Search the highest concurrency every target survives",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.cfg.Categories = nil
			a.cfg.Breaking.Enabled = true
			applyBreakpointFlags(cmd, a.cfg)
			return a.execute(cmd.Context(), 0)
		},
	}

	flags := cmd.Flags()
	flags.String("endpoint", "", "Endpoint to probe")
	flags.Int("start", 0, "First concurrency probed")
	flags.Int("step", 0, "Concurrency increment between probes")
	flags.Int("limit", 0, "Highest concurrency probed")
	flags.Int("threshold", 0, "Errors a probe may have before the target counts as broken")
	flags.Int("requests", 0, "Attempts per worker in each probe")
	flags.Duration("timeout", 0, "Per-request timeout during probes")
	flags.Duration("pause", 0, "Pause between probes")
	return cmd
}

func applyBreakpointFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("endpoint") {
		cfg.Breaking.Endpoint, _ = flags.GetString("endpoint")
	}
	if flags.Changed("start") {
		cfg.Breaking.Start, _ = flags.GetInt("start")
	}
	if flags.Changed("step") {
		cfg.Breaking.Step, _ = flags.GetInt("step")
	}
	if flags.Changed("limit") {
		cfg.Breaking.Limit, _ = flags.GetInt("limit")
	}
	if flags.Changed("threshold") {
		cfg.Breaking.Threshold, _ = flags.GetInt("threshold")
	}
	if flags.Changed("requests") {
		cfg.Breaking.RequestsPerRound, _ = flags.GetInt("requests")
	}
	if flags.Changed("timeout") {
		cfg.Breaking.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("pause") {
		cfg.Breaking.Pause, _ = flags.GetDuration("pause")
	}
}

// execute runs the configured rounds, prints the tables and writes the reports.
// Partial results are still reported when the run is interrupted.
func (a *app) execute(ctx context.Context, progress time.Duration) error {
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	rounds, err := scenarios.Rounds(cfg)
	if err != nil {
		return err
	}

	display.Header(os.Stdout, a.runID, cfg.Targets)
	log := a.logger.WithField("run_id", a.runID)

	recorder, err := metrics.NewRecorder(metricsNamespace)
	if err != nil {
		return err
	}

	var metricsListener net.Listener
	if cfg.Metrics.Addr != "" {
		if metricsListener, err = metrics.Listen(cfg.Metrics.Addr); err != nil {
			return err
		}
		defer metricsListener.Close()
	}

	if cfg.Container.ComposeFile != "" {
		if err := container.Start(ctx, container.Config{
			ComposeFile:  cfg.Container.ComposeFile,
			Targets:      cfg.Targets,
			ReadyTimeout: cfg.Container.ReadyTimeout,
			Logger:       log,
		}); err != nil {
			return err
		}
		defer container.Stop(cfg.Container.ComposeFile, log)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g errgroup.Group
	if metricsListener != nil {
		g.Go(func() error {
			return metrics.ServeListener(runCtx, metricsListener, cfg.Metrics.Path, recorder, log)
		})
	}

	r := &runner.Runner{
		RunID:    a.runID,
		Targets:  cfg.Targets,
		Rounds:   rounds,
		Breaking: scenarios.BreakingPoint(cfg),
		Warmup: httpload.Warmup{
			Requests:    cfg.Warmup.Requests,
			MaxDuration: cfg.Warmup.MaxDuration,
		},
		Dispatcher:       httpload.NewDispatcher(log),
		Recorder:         recorder,
		Logger:           log,
		ProgressInterval: progress,
	}

	results, runErr := r.Run(runCtx)
	cancel()
	if err := g.Wait(); err != nil {
		log.WithError(err).Warn("metrics server failed")
	}

	display.Summaries(os.Stdout, results)
	display.Comparisons(os.Stdout, results)
	display.Resources(os.Stdout, results)
	display.BreakingPoints(os.Stdout, results)

	files, err := export.Write(results, cfg.Output.Dir, cfg.OutputFormats())
	for _, f := range files {
		log.Infof("✓ Report written → %s", f)
	}
	if err != nil {
		return err
	}

	return runErr
}
