package httpload

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
)

// inFlightServer answers every request after delay and records the highest
// number of requests it was serving at once
type inFlightServer struct {
	*httptest.Server
	current  atomic.Int64
	peak     atomic.Int64
	requests atomic.Int64
}

func newInFlightServer(t *testing.T, delay time.Duration, status func(n int64) int) *inFlightServer {
	t.Helper()

	s := &inFlightServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := s.requests.Add(1)
		cur := s.current.Add(1)
		defer s.current.Add(-1)
		for {
			peak := s.peak.Load()
			if cur <= peak || s.peak.CompareAndSwap(peak, cur) {
				break
			}
		}

		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}

		code := http.StatusOK
		if status != nil {
			code = status(n)
		}
		w.WriteHeader(code)
		w.Write([]byte(`{"result":224737}`))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *inFlightServer) target() benchmark.Target {
	return benchmark.Target{Name: "test", BaseURL: s.URL}
}
