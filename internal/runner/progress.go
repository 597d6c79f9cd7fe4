package runner

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
	"github.com/moguls753/runtime-benchmark/internal/benchmark/docker"
)

// watchProgress logs the store's completed count until the returned stop
// function is called. It only reads the count.
func (r *Runner) watchProgress(log logrus.FieldLogger, store *benchmark.SampleStore) (stop func()) {
	if r.ProgressInterval <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	finished := make(chan struct{})
	start := time.Now()

	go func() {
		defer close(finished)
		ticker := time.NewTicker(r.ProgressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				completed := store.Completed()
				elapsed := time.Since(start)
				log.WithFields(logrus.Fields{
					"completed": completed,
					"rate":      int(float64(completed) / elapsed.Seconds()),
				}).Info("progress")
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}

// snapshot reads a target container's counters, nil when the target has no
// container or it cannot be read
func (r *Runner) snapshot(log logrus.FieldLogger, target benchmark.Target) *docker.Snapshot {
	if target.Container == "" {
		return nil
	}
	read := r.Snapshot
	if read == nil {
		read = docker.ContainerSnapshot
	}
	snap, err := read(target.Container)
	if err != nil {
		log.WithError(err).Warn("could not read container resource usage")
		return nil
	}
	return snap
}
