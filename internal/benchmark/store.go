package benchmark

import (
	"sync"
	"sync/atomic"
	"time"
)

// SampleStore collects the outcomes of one round for a (target, category)
// pair. All workers of a round append to the same store.
type SampleStore struct {
	mu            sync.Mutex
	durations     []time.Duration
	errors        int
	statusErrors  int
	networkErrors int
	timeouts      int
	mismatches    int
	earliest      time.Time
	latest        time.Time

	completed atomic.Int64
}

// NewSampleStore creates a store with room for capacity successful durations
func NewSampleStore(capacity int) *SampleStore {
	return &SampleStore{
		durations: make([]time.Duration, 0, capacity),
	}
}

// Append records a finished attempt. Only successful attempts contribute a
// duration.
func (s *SampleStore) Append(sample Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch sample.Outcome {
	case OutcomeSuccess:
		s.durations = append(s.durations, sample.Duration)
	case OutcomeStatusError:
		s.errors++
		s.statusErrors++
	case OutcomeTimeout:
		s.errors++
		s.timeouts++
	default:
		s.errors++
		s.networkErrors++
	}
	if sample.Mismatch {
		s.mismatches++
	}

	if s.earliest.IsZero() || sample.Started.Before(s.earliest) {
		s.earliest = sample.Started
	}
	if end := sample.Finished(); end.After(s.latest) {
		s.latest = end
	}

	s.completed.Add(1)
}

// Completed returns the number of attempts recorded so far. Safe to poll from
// any goroutine while the round is running.
func (s *SampleStore) Completed() int64 {
	return s.completed.Load()
}

// Snapshot returns a copy of the current contents. Call it after the round's
// workers have returned to get the final set.
func (s *SampleStore) Snapshot() SampleSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	durations := make([]time.Duration, len(s.durations))
	copy(durations, s.durations)

	var span time.Duration
	if !s.earliest.IsZero() {
		span = s.latest.Sub(s.earliest)
	}

	return SampleSet{
		Durations:     durations,
		Errors:        s.errors,
		StatusErrors:  s.statusErrors,
		NetworkErrors: s.networkErrors,
		Timeouts:      s.timeouts,
		Mismatches:    s.mismatches,
		Attempted:     len(s.durations) + s.errors,
		Span:          span,
	}
}

// SampleSet is an immutable view of a SampleStore
type SampleSet struct {
	Durations     []time.Duration // successful attempts only
	Errors        int             // StatusErrors + NetworkErrors + Timeouts
	StatusErrors  int
	NetworkErrors int
	Timeouts      int
	Mismatches    int
	Attempted     int
	Span          time.Duration // first attempt start to last attempt end
}
