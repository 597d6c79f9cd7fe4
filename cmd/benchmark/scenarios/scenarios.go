package scenarios

import (
	"math"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
	"github.com/moguls753/runtime-benchmark/internal/config"
	"github.com/moguls753/runtime-benchmark/internal/runner"
)

// Baseline measures a single user against the I/O endpoint
//
// This scenario measures:
//   - Raw request latency without contention
//   - The floor every other round is compared to
func Baseline(cfg *config.Config) runner.Round {
	return runner.Round{
		Category: benchmark.CategoryBaseline,
		Endpoint: benchmark.EndpointIO,
		Profile:  profile(cfg, cfg.Concurrency.Baseline),
		Cooldown: cfg.Cooldown.AfterBaseline,
	}
}

// IO evaluates async scalability on the I/O endpoint
//
// This scenario measures:
//   - Latency under many concurrent slow requests
//   - How well each runtime overlaps waiting requests
func IO(cfg *config.Config) runner.Round {
	return runner.Round{
		Category: benchmark.CategoryIO,
		Endpoint: benchmark.EndpointIO,
		Profile:  profile(cfg, cfg.Concurrency.IO),
		Cooldown: cfg.Cooldown.BetweenRounds,
	}
}

// CPU evaluates compute throughput on the prime endpoint
//
// This scenario measures:
//   - Latency of a CPU-bound request under bounded concurrency
//   - Correctness of the computed prime, when enabled
func CPU(cfg *config.Config) runner.Round {
	p := profile(cfg, cfg.Concurrency.CPU)
	if cfg.Correctness.Enabled {
		expected := ExpectedPrime(cfg)
		p.Expected = &expected
	}
	return runner.Round{
		Category: benchmark.CategoryCPU,
		Endpoint: benchmark.EndpointHeavy,
		Profile:  p,
		Cooldown: cfg.Cooldown.BetweenRounds,
	}
}

// Sustained keeps high concurrency on the I/O endpoint
//
// This scenario measures:
//   - Tail latency (p99) under sustained load
//   - Error rate once connection backlogs build up
func Sustained(cfg *config.Config) runner.Round {
	return runner.Round{
		Category: benchmark.CategorySustained,
		Endpoint: benchmark.EndpointIO,
		Profile:  profile(cfg, cfg.Concurrency.Sustained),
		Cooldown: cfg.Cooldown.BetweenRounds,
	}
}

// BreakingPoint is the breaking-point search round, nil when disabled
func BreakingPoint(cfg *config.Config) *runner.BreakingRound {
	if !cfg.Breaking.Enabled {
		return nil
	}
	return &runner.BreakingRound{
		Endpoint: cfg.Breaking.Endpoint,
		Config:   cfg.BreakingConfig(),
		Cooldown: cfg.Cooldown.BetweenRounds,
	}
}

// Rounds returns the configured rounds in execution order
func Rounds(cfg *config.Config) ([]runner.Round, error) {
	categories, err := cfg.ParsedCategories()
	if err != nil {
		return nil, err
	}

	rounds := make([]runner.Round, 0, len(categories))
	for _, c := range categories {
		switch c {
		case benchmark.CategoryBaseline:
			rounds = append(rounds, Baseline(cfg))
		case benchmark.CategoryIO:
			rounds = append(rounds, IO(cfg))
		case benchmark.CategoryCPU:
			rounds = append(rounds, CPU(cfg))
		case benchmark.CategorySustained:
			rounds = append(rounds, Sustained(cfg))
		}
	}
	return rounds, nil
}

func profile(cfg *config.Config, concurrency int) benchmark.LoadProfile {
	shape, _ := cfg.Shape()
	return benchmark.LoadProfile{
		Concurrency: concurrency,
		Shape:       shape,
		Duration:    cfg.Load.Duration,
		Requests:    cfg.Load.RequestsPerWorker,
		ThinkTime: benchmark.ThinkTime{
			Min: cfg.Load.ThinkTimeMin,
			Max: cfg.Load.ThinkTimeMax,
		},
		RampUp:     cfg.Load.RampUp,
		AttackMode: cfg.Load.AttackMode,
		Timeout:    cfg.Load.RequestTimeout,
	}
}

// ExpectedPrime is the value /heavy must return
func ExpectedPrime(cfg *config.Config) int64 {
	if cfg.Correctness.ExpectedPrime != 0 {
		return cfg.Correctness.ExpectedPrime
	}
	return NthPrime(cfg.Correctness.PrimeIndex)
}

// NthPrime returns the n-th prime (1-based) by trial division, the same way
// the target servers compute it
func NthPrime(n int) int64 {
	if n < 1 {
		return 0
	}
	count := 0
	num := int64(1)
	for count < n {
		num++
		if isPrime(num) {
			count++
		}
	}
	return num
}

func isPrime(num int64) bool {
	if num < 2 {
		return false
	}
	limit := int64(math.Sqrt(float64(num)))
	for i := int64(2); i <= limit; i++ {
		if num%i == 0 {
			return false
		}
	}
	return true
}
