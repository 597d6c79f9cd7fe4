package httpload

import (
	"math/rand/v2"
	"time"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
)

// ThinkTimer decides how long a worker pauses before its next attempt
type ThinkTimer interface {
	Next() time.Duration
}

type noThinkTime struct{}

func (noThinkTime) Next() time.Duration { return 0 }

type uniformThinkTime struct {
	min, max time.Duration
	rng      *rand.Rand
}

func (u *uniformThinkTime) Next() time.Duration {
	if u.max <= u.min {
		return u.min
	}
	return u.min + time.Duration(u.rng.Int64N(int64(u.max-u.min)+1))
}

// NewThinkTimer returns the think-time policy of one worker. Each worker gets
// its own random source so workers never contend on it. Attack mode disables
// think-time regardless of the configured range.
func NewThinkTimer(profile benchmark.LoadProfile, seed uint64) ThinkTimer {
	if profile.AttackMode || !profile.ThinkTime.Enabled() {
		return noThinkTime{}
	}
	return &uniformThinkTime{
		min: profile.ThinkTime.Min,
		max: profile.ThinkTime.Max,
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}
