package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
	"github.com/moguls753/runtime-benchmark/internal/benchmark/docker"
	"github.com/moguls753/runtime-benchmark/internal/benchmark/httpload"
	"github.com/moguls753/runtime-benchmark/internal/benchmark/statistics"
	"github.com/moguls753/runtime-benchmark/internal/metrics"
)

// Round is one category's workload, run against every target in turn
type Round struct {
	Category benchmark.Category
	Endpoint string
	Profile  benchmark.LoadProfile
	Cooldown time.Duration // pause after each target's round
}

// BreakingRound runs the breaking-point search against every target
type BreakingRound struct {
	Endpoint string
	Config   httpload.BreakingConfig
	Cooldown time.Duration
}

// Runner sequences warmup, measurement and cooldown over all targets and
// categories. It owns the sample stores of the rounds it runs.
type Runner struct {
	RunID    string
	Targets  []benchmark.Target
	Rounds   []Round
	Breaking *BreakingRound // nil skips the search

	Warmup     httpload.Warmup
	Dispatcher *httpload.Dispatcher
	Recorder   *metrics.Recorder // optional
	Logger     logrus.FieldLogger

	// ProgressInterval is how often a running round logs its progress, 0 disables
	ProgressInterval time.Duration
	// Snapshot reads a target container's resource counters. Defaults to
	// docker.ContainerSnapshot; only used for targets with a container name.
	Snapshot func(container string) (*docker.Snapshot, error)
}

// Run executes every round and returns the collected results. On
// cancellation the results gathered so far are returned with ctx's error.
func (r *Runner) Run(ctx context.Context) (*benchmark.Results, error) {
	results := benchmark.NewResults(r.RunID, r.Targets)
	defer func() { results.FinishedAt = time.Now() }()

	steps := len(r.Rounds) * len(r.Targets)
	if r.Breaking != nil {
		steps += len(r.Targets)
	}
	step := 0

	for _, round := range r.Rounds {
		r.logger().Infof("--- ROUND: %s (%s, %d concurrent users) ---", round.Category, round.Endpoint, round.Profile.Concurrency)

		durations := make(map[string][]time.Duration, len(r.Targets))
		for _, target := range r.Targets {
			step++
			set, usage, err := r.runRound(ctx, round, target)
			if err != nil {
				return results, err
			}
			if usage != nil {
				results.AddResources(round.Category, target.Name, *usage)
			}

			record := benchmark.Aggregate(set)
			results.AddSummary(round.Category, target.Name, record)
			if r.Recorder != nil {
				r.Recorder.RecordSummary(round.Category, target.Name, record)
			}
			durations[target.Name] = set.Durations

			if step < steps {
				if err := httpload.Cooldown(ctx, round.Cooldown, r.logger()); err != nil {
					return results, err
				}
			}
		}

		r.compare(results, round.Category, durations)
	}

	if r.Breaking != nil {
		r.logger().Infof("--- ROUND: %s (%s) ---", benchmark.CategoryBreakingPoint, r.Breaking.Endpoint)
		for _, target := range r.Targets {
			step++
			bp, err := r.runBreakingPoint(ctx, target)
			if err != nil {
				return results, err
			}
			results.AddBreakingPoint(target.Name, bp)
			if r.Recorder != nil {
				r.Recorder.RecordBreakingPoint(target.Name, bp)
			}

			if step < steps {
				if err := httpload.Cooldown(ctx, r.Breaking.Cooldown, r.logger()); err != nil {
					return results, err
				}
			}
		}
	}

	return results, nil
}

// runRound warms the target up and measures one round against it. Usage is
// nil unless the target runs in a container that could be sampled.
func (r *Runner) runRound(ctx context.Context, round Round, target benchmark.Target) (benchmark.SampleSet, *docker.Usage, error) {
	log := r.logger().WithFields(logrus.Fields{
		"category": round.Category,
		"target":   target.Name,
	})

	if err := r.warmup(ctx, target, round.Endpoint, round.Profile.Timeout); err != nil {
		return benchmark.SampleSet{}, nil, err
	}

	log.Infof("[%s] %s -> %d concurrent users", round.Category, target.Name, round.Profile.Concurrency)

	store := benchmark.NewSampleStore(expectedSamples(round.Profile))
	dispatcher := r.dispatcher(target.Name, round.Category)

	before := r.snapshot(log, target)
	stop := r.watchProgress(log, store)
	err := dispatcher.Run(ctx, target, round.Endpoint, round.Profile, store)
	stop()
	if err != nil {
		return benchmark.SampleSet{}, nil, fmt.Errorf("%s round against %s: %w", round.Category, target.Name, err)
	}

	var usage *docker.Usage
	if before != nil {
		if after := r.snapshot(log, target); after != nil {
			u := docker.CalculateUsage(before, after)
			log.WithFields(logrus.Fields{
				"cpu_seconds": fmt.Sprintf("%.2f", u.CPUSeconds),
				"memory":      benchmark.FormatBytes(u.MemoryBytes),
			}).Info("target resource usage")
			usage = &u
		}
	}

	set := store.Snapshot()
	log.WithFields(logrus.Fields{
		"samples":    len(set.Durations),
		"errors":     set.Errors,
		"timeouts":   set.Timeouts,
		"mismatches": set.Mismatches,
	}).Info("round complete")

	return set, usage, nil
}

func (r *Runner) runBreakingPoint(ctx context.Context, target benchmark.Target) (benchmark.BreakingPointResult, error) {
	log := r.logger().WithFields(logrus.Fields{
		"category": benchmark.CategoryBreakingPoint,
		"target":   target.Name,
	})

	if err := r.warmup(ctx, target, r.Breaking.Endpoint, r.Breaking.Config.Timeout); err != nil {
		return benchmark.BreakingPointResult{}, err
	}

	search := &httpload.BreakingPointSearch{
		Config: r.Breaking.Config,
		Probe:  r.dispatcher(target.Name, benchmark.CategoryBreakingPoint).Prober(target, r.Breaking.Endpoint, r.Breaking.Config),
		Logger: log,
	}
	result, err := search.Run(ctx)
	if err != nil {
		return result, fmt.Errorf("breaking-point search against %s: %w", target.Name, err)
	}

	log.WithFields(logrus.Fields{
		"max_stable": result.MaxStableConcurrency,
		"reason":     result.StopReason,
	}).Info("breaking-point search complete")
	return result, nil
}

func (r *Runner) warmup(ctx context.Context, target benchmark.Target, endpoint string, timeout time.Duration) error {
	if r.Warmup.Requests <= 0 {
		return nil
	}
	w := r.Warmup
	if w.Timeout <= 0 {
		w.Timeout = timeout
	}
	if w.Logger == nil {
		w.Logger = r.logger()
	}

	client := r.baseDispatcher().NewClient()
	defer httpload.CloseIdle(client)
	_, err := w.Run(ctx, client, target.URL(endpoint))
	return err
}

// compare tests every target's latencies against the first target that
// produced data in the category
func (r *Runner) compare(results *benchmark.Results, category benchmark.Category, durations map[string][]time.Duration) {
	reference := ""
	var refStats statistics.Stats
	for _, t := range r.Targets {
		if len(durations[t.Name]) > 0 {
			reference = t.Name
			refStats = statistics.Calculate(statistics.Seconds(durations[t.Name]))
			break
		}
	}
	if reference == "" {
		return
	}

	for _, t := range r.Targets {
		if t.Name == reference || len(durations[t.Name]) == 0 {
			continue
		}
		stats := statistics.Calculate(statistics.Seconds(durations[t.Name]))
		results.AddComparison(category, t.Name, statistics.Compare(reference, refStats, stats))
	}
}

// dispatcher returns a copy of the base dispatcher whose observer also feeds
// the metrics recorder for this round
func (r *Runner) dispatcher(target string, category benchmark.Category) *httpload.Dispatcher {
	d := *r.baseDispatcher()
	if r.Recorder != nil {
		d.Observer = httpload.Observers(d.Observer, r.Recorder.Round(target, category))
	}
	return &d
}

func (r *Runner) baseDispatcher() *httpload.Dispatcher {
	if r.Dispatcher == nil {
		r.Dispatcher = httpload.NewDispatcher(r.logger())
	}
	if r.Dispatcher.NewClient == nil {
		r.Dispatcher.NewClient = func() httpload.Doer { return httpload.NewWorkerClient() }
	}
	return r.Dispatcher
}

func (r *Runner) logger() logrus.FieldLogger {
	if r.Logger == nil {
		r.Logger = logrus.StandardLogger()
	}
	return r.Logger
}

func expectedSamples(p benchmark.LoadProfile) int {
	if p.Shape == benchmark.ShapeCount {
		return p.Concurrency * p.Requests
	}
	return p.Concurrency * 64
}
