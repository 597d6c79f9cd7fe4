package benchmark

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Target identifies one system under test
type Target struct {
	Name      string `json:"name" yaml:"name"`
	BaseURL   string `json:"base_url" yaml:"url"`
	Container string `json:"container,omitempty" yaml:"container,omitempty"` // Docker container name, enables resource sampling
}

// URL joins the target base address with an endpoint path
func (t Target) URL(endpoint string) string {
	return strings.TrimRight(t.BaseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
}

// Validate checks that the base address is an absolute http(s) URL
func (t Target) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("target name is required")
	}
	u, err := url.ParseRequestURI(t.BaseURL)
	if err != nil {
		return fmt.Errorf("target %s: invalid url %q: %w", t.Name, t.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("target %s: unsupported scheme %q", t.Name, u.Scheme)
	}
	return nil
}

// Category is a named workload scenario
type Category string

const (
	CategoryBaseline      Category = "Baseline"
	CategoryIO            Category = "IO"
	CategoryCPU           Category = "CPU"
	CategorySustained     Category = "Sustained"
	CategoryBreakingPoint Category = "BreakingPoint"
)

// Endpoints served by every target
const (
	EndpointIO    = "/io"
	EndpointHeavy = "/heavy"
)

// Shape selects how a round decides it is finished
type Shape int

const (
	// ShapeDuration issues back-to-back batches until the round duration elapses
	ShapeDuration Shape = iota
	// ShapeCount runs a fixed number of sequential attempts per worker
	ShapeCount
)

func (s Shape) String() string {
	switch s {
	case ShapeDuration:
		return "duration"
	case ShapeCount:
		return "count"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// ThinkTime is the uniform range a worker pauses between attempts.
// A zero Max disables it.
type ThinkTime struct {
	Min time.Duration
	Max time.Duration
}

func (t ThinkTime) Enabled() bool {
	return t.Max > 0
}

// LoadProfile describes one round. It is not modified once a round starts.
type LoadProfile struct {
	Concurrency int
	Shape       Shape
	Duration    time.Duration // ShapeDuration
	Requests    int           // ShapeCount, per worker
	ThinkTime   ThinkTime
	RampUp      time.Duration
	AttackMode  bool
	Timeout     time.Duration // per attempt
	Expected    *int64        // expected numeric result, nil disables the correctness check
}

// Validate reports the first inconsistency in the profile
func (p LoadProfile) Validate() error {
	if p.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", p.Concurrency)
	}
	switch p.Shape {
	case ShapeDuration:
		if p.Duration <= 0 {
			return fmt.Errorf("duration-bound profile needs a positive duration, got %s", p.Duration)
		}
	case ShapeCount:
		if p.Requests < 1 {
			return fmt.Errorf("count-bound profile needs a positive request count, got %d", p.Requests)
		}
	default:
		return fmt.Errorf("unknown workload shape %d", int(p.Shape))
	}
	if p.ThinkTime.Min < 0 || p.ThinkTime.Max < p.ThinkTime.Min {
		return fmt.Errorf("invalid think-time range [%s, %s]", p.ThinkTime.Min, p.ThinkTime.Max)
	}
	if p.RampUp < 0 {
		return fmt.Errorf("ramp-up must not be negative, got %s", p.RampUp)
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", p.Timeout)
	}
	return nil
}

// Outcome classifies a single attempt
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeStatusError
	OutcomeNetworkError
	OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeStatusError:
		return "status_error"
	case OutcomeNetworkError:
		return "network_error"
	case OutcomeTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// IsError reports whether the outcome counts against the error budget
func (o Outcome) IsError() bool {
	return o != OutcomeSuccess
}

// Sample is the record of one completed attempt
type Sample struct {
	Worker     int
	Started    time.Time
	Duration   time.Duration
	Outcome    Outcome
	StatusCode int
	Mismatch   bool // HTTP success but the payload disagreed with the expected value
}

// Finished returns the time the attempt completed
func (s Sample) Finished() time.Time {
	return s.Started.Add(s.Duration)
}

// SummaryRecord holds the aggregated statistics of one round.
// NoData is set when no attempt succeeded; latency fields are then zero.
type SummaryRecord struct {
	NoData        bool          `json:"no_data"`
	Avg           time.Duration `json:"avg"`
	P50           time.Duration `json:"p50"`
	P95           time.Duration `json:"p95"`
	P99           time.Duration `json:"p99"`
	Min           time.Duration `json:"min"`
	Max           time.Duration `json:"max"`
	StdDev        time.Duration `json:"stddev"`
	SampleCount   int           `json:"count"`
	ErrorCount    int           `json:"errors"`
	TimeoutCount  int           `json:"timeouts"`
	MismatchCount int           `json:"mismatches"`
	Throughput    float64       `json:"throughput"` // successful requests per second
}

// Total returns the number of attempts the record covers
func (r SummaryRecord) Total() int {
	return r.SampleCount + r.ErrorCount
}

// ErrorRate returns the failed share of all attempts in percent
func (r SummaryRecord) ErrorRate() float64 {
	if r.Total() == 0 {
		return 0
	}
	return float64(r.ErrorCount) / float64(r.Total()) * 100
}

// StopReason tells why a breaking-point search ended
type StopReason string

const (
	StopThresholdExceeded StopReason = "ThresholdExceeded"
	StopSurvived          StopReason = "Survived"
)

// Probe is one breaking-point round
type Probe struct {
	Concurrency int           `json:"concurrency"`
	Attempts    int           `json:"attempts"`
	Errors      int           `json:"errors"`
	Timeouts    int           `json:"timeouts"`
	Duration    time.Duration `json:"duration"`
}

// BreakingPointResult is the outcome of a breaking-point search against one target
type BreakingPointResult struct {
	MaxStableConcurrency int        `json:"max_stable_concurrency"`
	StopReason           StopReason `json:"stop_reason"`
	Probes               []Probe    `json:"probes"`
}

// FormatLatency renders a latency the way the reports show it
func FormatLatency(d time.Duration) string {
	switch {
	case d >= time.Second:
		return d.Round(time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(10 * time.Microsecond).String()
	default:
		return d.Round(time.Microsecond).String()
	}
}

func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
