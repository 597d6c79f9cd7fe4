package scenarios

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
	"github.com/moguls753/runtime-benchmark/internal/config"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(nil)
	require.NoError(t, err)
	return cfg
}

func TestNthPrime(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(2), NthPrime(1))
	assert.Equal(t, int64(13), NthPrime(6))
	assert.Equal(t, int64(7919), NthPrime(1000))
	assert.Equal(t, int64(224737), NthPrime(20000))
	assert.Zero(t, NthPrime(0))
}

func TestRounds_DefaultCategories(t *testing.T) {
	cfg := defaultConfig(t)

	rounds, err := Rounds(cfg)
	require.NoError(t, err)
	require.Len(t, rounds, 4)

	baseline, io, cpu, sustained := rounds[0], rounds[1], rounds[2], rounds[3]

	assert.Equal(t, benchmark.CategoryBaseline, baseline.Category)
	assert.Equal(t, 1, baseline.Profile.Concurrency)
	assert.Equal(t, 5*time.Second, baseline.Cooldown)

	assert.Equal(t, benchmark.EndpointIO, io.Endpoint)
	assert.Equal(t, 200, io.Profile.Concurrency)
	assert.Equal(t, 10*time.Second, io.Cooldown)
	assert.Nil(t, io.Profile.Expected)

	assert.Equal(t, benchmark.EndpointHeavy, cpu.Endpoint)
	assert.Equal(t, 4, cpu.Profile.Concurrency)
	require.NotNil(t, cpu.Profile.Expected)
	assert.Equal(t, int64(224737), *cpu.Profile.Expected)

	assert.Equal(t, 300, sustained.Profile.Concurrency)
	for _, r := range rounds {
		assert.Equal(t, benchmark.ShapeDuration, r.Profile.Shape)
		assert.Equal(t, 30*time.Second, r.Profile.Duration)
		assert.NoError(t, r.Profile.Validate())
	}
}

func TestRounds_Selection(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Categories = []string{"sustained", "cpu"}
	cfg.Correctness.Enabled = false

	rounds, err := Rounds(cfg)
	require.NoError(t, err)
	require.Len(t, rounds, 2)
	assert.Equal(t, benchmark.CategorySustained, rounds[0].Category)
	assert.Nil(t, rounds[1].Profile.Expected)

	cfg.Categories = []string{"Turbo"}
	_, err = Rounds(cfg)
	assert.Error(t, err)
}

func TestExpectedPrime_Override(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Correctness.ExpectedPrime = 104729
	assert.Equal(t, int64(104729), ExpectedPrime(cfg))
}

func TestBreakingPoint(t *testing.T) {
	cfg := defaultConfig(t)
	assert.Nil(t, BreakingPoint(cfg))

	cfg.Breaking.Enabled = true
	round := BreakingPoint(cfg)
	require.NotNil(t, round)
	assert.Equal(t, "/io", round.Endpoint)
	assert.Equal(t, 2500, round.Config.Start)
	assert.NoError(t, round.Config.Validate())
}
