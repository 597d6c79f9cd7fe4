package httpload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
)

const userAgent = "runtime-benchmark/1.0"

// resultField is the JSON field /heavy reports its computed prime in. Targets
// disagree on casing ("result" vs "Result").
const resultField = "result"

// Attempter issues single-shot GET requests against one URL
type Attempter struct {
	URL      string
	Timeout  time.Duration
	Expected *int64
}

// Do performs one attempt and classifies it. It never returns an error: every
// failure mode ends up in the sample's Outcome. There are no retries.
func (a Attempter) Do(ctx context.Context, client Doer, worker int) benchmark.Sample {
	// In-flight attempts are bounded by their own timeout only
	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Timeout)
	defer cancel()

	sample := benchmark.Sample{Worker: worker}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, a.URL, nil)
	if err != nil {
		sample.Started = time.Now()
		sample.Outcome = benchmark.OutcomeNetworkError
		return sample
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	sample.Started = time.Now()
	resp, err := client.Do(req)
	if err != nil {
		sample.Duration = time.Since(sample.Started)
		sample.Outcome = classifyError(err)
		return sample
	}
	defer resp.Body.Close()

	// The body is always consumed; latency includes the full transfer and the
	// connection stays reusable.
	var body []byte
	if a.Expected != nil && resp.StatusCode == http.StatusOK {
		body, err = io.ReadAll(resp.Body)
	} else {
		_, err = io.Copy(io.Discard, resp.Body)
	}
	sample.Duration = time.Since(sample.Started)
	sample.StatusCode = resp.StatusCode

	switch {
	case err != nil:
		sample.Outcome = classifyError(err)
	case resp.StatusCode != http.StatusOK:
		sample.Outcome = benchmark.OutcomeStatusError
	default:
		sample.Outcome = benchmark.OutcomeSuccess
		if a.Expected != nil {
			sample.Mismatch = !resultMatches(body, *a.Expected)
		}
	}

	return sample
}

func classifyError(err error) benchmark.Outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return benchmark.OutcomeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return benchmark.OutcomeTimeout
	}
	return benchmark.OutcomeNetworkError
}

// resultMatches reports whether the JSON body carries the expected integer in
// its result field. The value may be encoded as a number or a numeric string.
func resultMatches(body []byte, expected int64) bool {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}

	for key, raw := range payload {
		if !strings.EqualFold(key, resultField) {
			continue
		}
		text := string(bytes.Trim(bytes.TrimSpace(raw), `"`))
		if v, err := strconv.ParseInt(text, 10, 64); err == nil {
			return v == expected
		}
		// Some serializers emit integral floats ("224737.0")
		f, err := strconv.ParseFloat(text, 64)
		return err == nil && f == float64(expected)
	}
	return false
}
