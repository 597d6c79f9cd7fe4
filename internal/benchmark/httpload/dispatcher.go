package httpload

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
)

// Dispatcher runs rounds of attempts against a single target endpoint
type Dispatcher struct {
	// NewClient creates the connection pool of one worker. Defaults to NewWorkerClient.
	NewClient func() Doer
	// Observer, if set, sees every sample after it was stored
	Observer Observer
	Logger   logrus.FieldLogger
}

// NewDispatcher creates a dispatcher with per-worker HTTP clients
func NewDispatcher(logger logrus.FieldLogger) *Dispatcher {
	return &Dispatcher{
		NewClient: func() Doer { return NewWorkerClient() },
		Logger:    logger,
	}
}

// Run executes one round and appends a sample per finished attempt to store.
// At most profile.Concurrency attempts are in flight at any time. Cancelling
// ctx stops new attempts from being launched; attempts already in flight run
// to completion or their own timeout.
func (d *Dispatcher) Run(ctx context.Context, target benchmark.Target, endpoint string, profile benchmark.LoadProfile, store *benchmark.SampleStore) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("invalid load profile: %w", err)
	}

	attempter := Attempter{
		URL:      target.URL(endpoint),
		Timeout:  profile.Timeout,
		Expected: profile.Expected,
	}

	log := d.logger().WithFields(logrus.Fields{
		"target":      target.Name,
		"url":         attempter.URL,
		"concurrency": profile.Concurrency,
		"shape":       profile.Shape.String(),
	})
	log.Debug("round started")
	start := time.Now()

	var err error
	switch profile.Shape {
	case benchmark.ShapeDuration:
		err = d.runDuration(ctx, attempter, profile, store)
	case benchmark.ShapeCount:
		err = d.runCount(ctx, attempter, profile, store)
	}

	log.WithFields(logrus.Fields{
		"attempts": store.Completed(),
		"elapsed":  time.Since(start).Round(time.Millisecond),
	}).Debug("round finished")

	return err
}

// runDuration issues batches of Concurrency attempts back-to-back until the
// round duration has elapsed. Every attempt holds a limiter slot while in
// flight; slot i always uses worker i's client. The first batch follows the
// ramp schedule.
func (d *Dispatcher) runDuration(ctx context.Context, attempter Attempter, profile benchmark.LoadProfile, store *benchmark.SampleStore) error {
	limiter := semaphore.NewWeighted(int64(profile.Concurrency))
	clients := make([]Doer, profile.Concurrency)
	for i := range clients {
		clients[i] = d.newClient()
	}
	defer closeAll(clients)

	delay := RampDelay(profile.Concurrency, profile.RampUp, profile.AttackMode)
	deadline := time.Now().Add(profile.Duration)
	for first := true; time.Now().Before(deadline); first = false {
		var batch errgroup.Group
		for slot := range clients {
			if err := limiter.Acquire(ctx, 1); err != nil {
				batch.Wait()
				return err
			}
			var offset time.Duration
			if first {
				offset = RampOffset(slot, delay)
			}
			batch.Go(func() error {
				defer limiter.Release(1)
				if sleepContext(ctx, offset) != nil {
					return nil
				}
				d.record(store, attempter.Do(ctx, clients[slot], slot))
				return nil
			})
		}
		batch.Wait()

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	return nil
}

// runCount starts Concurrency workers, staggered by the ramp schedule, each
// performing exactly Requests sequential attempts with think-time in between.
func (d *Dispatcher) runCount(ctx context.Context, attempter Attempter, profile benchmark.LoadProfile, store *benchmark.SampleStore) error {
	delay := RampDelay(profile.Concurrency, profile.RampUp, profile.AttackMode)
	seed := rand.Uint64()

	var workers errgroup.Group
	for worker := 0; worker < profile.Concurrency; worker++ {
		workers.Go(func() error {
			if err := sleepContext(ctx, RampOffset(worker, delay)); err != nil {
				return err
			}

			client := d.newClient()
			defer CloseIdle(client)
			think := NewThinkTimer(profile, seed+uint64(worker))

			for i := 0; i < profile.Requests; i++ {
				if i > 0 {
					if err := sleepContext(ctx, think.Next()); err != nil {
						return err
					}
				} else if err := ctx.Err(); err != nil {
					return err
				}
				d.record(store, attempter.Do(ctx, client, worker))
			}
			return nil
		})
	}

	return workers.Wait()
}

func (d *Dispatcher) record(store *benchmark.SampleStore, sample benchmark.Sample) {
	store.Append(sample)
	if d.Observer != nil {
		d.Observer.Observe(sample)
	}
}

func (d *Dispatcher) newClient() Doer {
	if d.NewClient == nil {
		return NewWorkerClient()
	}
	return d.NewClient()
}

func (d *Dispatcher) logger() logrus.FieldLogger {
	if d.Logger == nil {
		return logrus.StandardLogger()
	}
	return d.Logger
}

func closeAll(clients []Doer) {
	for _, c := range clients {
		CloseIdle(c)
	}
}

// sleepContext pauses for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
