// Package httpload drives HTTP targets: single attempts, bounded concurrent
// rounds, ramp-up and think-time pacing, warmup and cooldown, and the
// breaking-point search.
package httpload

import (
	"net/http"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
)

// Doer is the part of *http.Client an attempt needs
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer is notified of every finished attempt. Implementations must not
// block and must not modify the sample store.
type Observer interface {
	Observe(sample benchmark.Sample)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(sample benchmark.Sample)

func (f ObserverFunc) Observe(sample benchmark.Sample) {
	f(sample)
}

type multiObserver []Observer

func (m multiObserver) Observe(sample benchmark.Sample) {
	for _, o := range m {
		o.Observe(sample)
	}
}

// Observers fans a sample out to several observers, skipping nil ones
func Observers(observers ...Observer) Observer {
	out := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}
