package httpload

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
)

// BreakingConfig controls the breaking-point search
type BreakingConfig struct {
	Start            int           // first concurrency probed
	Step             int           // linear increment between probes
	Limit            int           // upper bound; reaching it means the target survived
	Threshold        int           // a probe with more errors than this breaks the target
	RequestsPerRound int           // attempts per worker in each probe
	Timeout          time.Duration // per attempt, tighter than regular rounds
	Pause            time.Duration // between probes
}

// Validate reports the first inconsistency in the configuration
func (c BreakingConfig) Validate() error {
	switch {
	case c.Start < 1:
		return fmt.Errorf("breaking-point start must be positive, got %d", c.Start)
	case c.Step < 1:
		return fmt.Errorf("breaking-point step must be positive, got %d", c.Step)
	case c.Limit < c.Start:
		return fmt.Errorf("breaking-point limit %d is below start %d", c.Limit, c.Start)
	case c.Threshold < 0:
		return fmt.Errorf("breaking-point threshold must not be negative, got %d", c.Threshold)
	case c.RequestsPerRound < 1:
		return fmt.Errorf("breaking-point requests per round must be positive, got %d", c.RequestsPerRound)
	case c.Timeout <= 0:
		return fmt.Errorf("breaking-point timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// Profile is the load profile of a probe at the given concurrency: a short
// count-bound round with no ramp-up and no think-time.
func (c BreakingConfig) Profile(concurrency int) benchmark.LoadProfile {
	return benchmark.LoadProfile{
		Concurrency: concurrency,
		Shape:       benchmark.ShapeCount,
		Requests:    c.RequestsPerRound,
		AttackMode:  true,
		Timeout:     c.Timeout,
	}
}

// ProbeFunc runs one probe at the given concurrency and returns its samples
type ProbeFunc func(ctx context.Context, concurrency int) (benchmark.SampleSet, error)

type searchState int

const (
	stateProbing searchState = iota
	stateBroken
	stateSurvived
)

// BreakingPointSearch steps concurrency up linearly until a probe exceeds the
// error threshold or the limit is reached. Resolution is one step; the number
// of probes is at most (Limit-Start)/Step + 1.
type BreakingPointSearch struct {
	Config BreakingConfig
	Probe  ProbeFunc
	Logger logrus.FieldLogger
}

// Run executes the search. Every kind of failed attempt (status, network,
// timeout) counts against the threshold; correctness mismatches do not.
func (s *BreakingPointSearch) Run(ctx context.Context) (benchmark.BreakingPointResult, error) {
	var result benchmark.BreakingPointResult
	if err := s.Config.Validate(); err != nil {
		return result, err
	}

	log := s.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	state := stateProbing
	concurrency := s.Config.Start
	previous := 0

	for state == stateProbing {
		start := time.Now()
		set, err := s.Probe(ctx, concurrency)
		if err != nil {
			return result, fmt.Errorf("probe at concurrency %d: %w", concurrency, err)
		}

		result.Probes = append(result.Probes, benchmark.Probe{
			Concurrency: concurrency,
			Attempts:    set.Attempted,
			Errors:      set.Errors,
			Timeouts:    set.Timeouts,
			Duration:    time.Since(start),
		})

		probeLog := log.WithFields(logrus.Fields{
			"concurrency": concurrency,
			"errors":      set.Errors,
			"attempts":    set.Attempted,
		})

		switch {
		case set.Errors > s.Config.Threshold:
			probeLog.Warn("stability threshold exceeded")
			result.MaxStableConcurrency = previous
			result.StopReason = benchmark.StopThresholdExceeded
			state = stateBroken

		case concurrency+s.Config.Step > s.Config.Limit:
			probeLog.Info("survived up to the configured limit")
			result.MaxStableConcurrency = s.Config.Limit
			result.StopReason = benchmark.StopSurvived
			state = stateSurvived

		default:
			probeLog.Info("stable")
			result.MaxStableConcurrency = concurrency
			previous = concurrency
			concurrency += s.Config.Step
			if err := sleepContext(ctx, s.Config.Pause); err != nil {
				return result, err
			}
		}
	}

	return result, nil
}

// Prober returns a ProbeFunc that runs each probe through the dispatcher
// against target's endpoint, with a fresh sample store per probe.
func (d *Dispatcher) Prober(target benchmark.Target, endpoint string, cfg BreakingConfig) ProbeFunc {
	return func(ctx context.Context, concurrency int) (benchmark.SampleSet, error) {
		profile := cfg.Profile(concurrency)
		store := benchmark.NewSampleStore(concurrency * cfg.RequestsPerRound)
		if err := d.Run(ctx, target, endpoint, profile, store); err != nil {
			return benchmark.SampleSet{}, err
		}
		return store.Snapshot(), nil
	}
}
