package config

import (
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
	"github.com/moguls753/runtime-benchmark/internal/benchmark/httpload"
)

// DefaultTargets are the four sample servers of the comparison
var DefaultTargets = []benchmark.Target{
	{Name: "Node.js", BaseURL: "http://localhost:3000"},
	{Name: "Dotnet", BaseURL: "http://localhost:5500"},
	{Name: "Go", BaseURL: "http://localhost:8080"},
	{Name: "Dotnet AOT", BaseURL: "http://localhost:5600"},
}

type WarmupOptions struct {
	Requests    int           `env:"BENCH_WARMUP_REQUESTS" envDefault:"20"`
	MaxDuration time.Duration `env:"BENCH_WARMUP_MAX_DURATION" envDefault:"5s"`
}

type CooldownOptions struct {
	AfterBaseline time.Duration `env:"BENCH_COOLDOWN_BASELINE" envDefault:"5s"`
	BetweenRounds time.Duration `env:"BENCH_COOLDOWN" envDefault:"10s"`
}

type ConcurrencyOptions struct {
	Baseline  int `env:"BENCH_BASELINE_CONCURRENCY" envDefault:"1"`
	IO        int `env:"BENCH_IO_CONCURRENCY" envDefault:"200"`
	CPU       int `env:"BENCH_CPU_CONCURRENCY" envDefault:"4"`
	Sustained int `env:"BENCH_SUSTAINED_CONCURRENCY" envDefault:"300"`
}

type LoadOptions struct {
	Shape             string        `env:"BENCH_SHAPE" envDefault:"duration"` // duration or count
	Duration          time.Duration `env:"BENCH_TEST_DURATION" envDefault:"30s"`
	RequestsPerWorker int           `env:"BENCH_REQUESTS_PER_WORKER" envDefault:"100"`
	RequestTimeout    time.Duration `env:"BENCH_REQUEST_TIMEOUT" envDefault:"30s"`
	RampUp            time.Duration `env:"BENCH_RAMP_UP" envDefault:"0s"`
	ThinkTimeMin      time.Duration `env:"BENCH_THINK_TIME_MIN" envDefault:"0s"`
	ThinkTimeMax      time.Duration `env:"BENCH_THINK_TIME_MAX" envDefault:"0s"`
	AttackMode        bool          `env:"BENCH_ATTACK_MODE" envDefault:"false"`
}

type BreakingOptions struct {
	Enabled          bool          `env:"BENCH_BREAKING_ENABLED" envDefault:"false"`
	Endpoint         string        `env:"BENCH_BREAKING_ENDPOINT" envDefault:"/io"`
	Start            int           `env:"BENCH_BREAKING_START" envDefault:"2500"`
	Step             int           `env:"BENCH_BREAKING_STEP" envDefault:"10000"`
	Limit            int           `env:"BENCH_BREAKING_LIMIT" envDefault:"50000"`
	Threshold        int           `env:"BENCH_BREAKING_THRESHOLD" envDefault:"10"`
	RequestsPerRound int           `env:"BENCH_BREAKING_REQUESTS" envDefault:"5"`
	Timeout          time.Duration `env:"BENCH_BREAKING_TIMEOUT" envDefault:"5s"`
	Pause            time.Duration `env:"BENCH_BREAKING_PAUSE" envDefault:"2s"`
}

type CorrectnessOptions struct {
	Enabled       bool  `env:"BENCH_CHECK_CORRECTNESS" envDefault:"true"`
	PrimeIndex    int   `env:"BENCH_PRIME_INDEX" envDefault:"20000"`
	ExpectedPrime int64 `env:"BENCH_EXPECTED_PRIME" envDefault:"0"` // 0 = compute from PrimeIndex
}

type OutputOptions struct {
	Dir     string `env:"BENCH_OUTPUT_DIR" envDefault:"."`
	Formats string `env:"BENCH_OUTPUT_FORMATS" envDefault:"html,csv,json"`
}

type LoggingOptions struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

type MetricsOptions struct {
	Addr string `env:"BENCH_METRICS_ADDR"`
	Path string `env:"BENCH_METRICS_PATH" envDefault:"/metrics"`
}

type ContainerOptions struct {
	ComposeFile  string        `env:"BENCH_COMPOSE_FILE"`
	ReadyTimeout time.Duration `env:"BENCH_READY_TIMEOUT" envDefault:"60s"`
}

// Config is the complete run configuration
type Config struct {
	TargetsFile string             `env:"BENCH_TARGETS_FILE"`
	Targets     []benchmark.Target `env:"-"`
	Categories  []string           `env:"BENCH_CATEGORIES" envDefault:"Baseline,IO,CPU,Sustained" envSeparator:","`

	Warmup      WarmupOptions
	Cooldown    CooldownOptions
	Concurrency ConcurrencyOptions
	Load        LoadOptions
	Breaking    BreakingOptions
	Correctness CorrectnessOptions
	Output      OutputOptions
	Logging     LoggingOptions
	Metrics     MetricsOptions
	Container   ContainerOptions
}

// LoadEnv loads the given .env files, skipping the ones that do not exist
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads .env files and the environment, then the targets file if one is
// configured. It does not validate; call Validate once flags are applied.
func Load(envFiles []string) (*Config, error) {
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, errors.Wrap(err, "load .env files")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}

	if err := cfg.LoadTargets(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type targetsFile struct {
	Targets []benchmark.Target `yaml:"targets"`
}

// LoadTargets fills Targets from TargetsFile, or from DefaultTargets when no
// file is configured
func (c *Config) LoadTargets() error {
	if c.TargetsFile == "" {
		c.Targets = append([]benchmark.Target(nil), DefaultTargets...)
		return nil
	}

	raw, err := os.ReadFile(c.TargetsFile)
	if err != nil {
		return errors.Wrapf(err, "read targets file %s", c.TargetsFile)
	}

	var file targetsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return errors.Wrapf(err, "parse targets file %s", c.TargetsFile)
	}
	c.Targets = file.Targets
	return nil
}

// Validate checks the configuration and reports every problem found
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, errors.Errorf(format, args...).Error())
	}

	if len(c.Targets) == 0 {
		add("at least one target is required")
	}
	seen := make(map[string]bool, len(c.Targets))
	for _, t := range c.Targets {
		if err := t.Validate(); err != nil {
			add("%v", err)
		}
		if seen[t.Name] {
			add("duplicate target name %q", t.Name)
		}
		seen[t.Name] = true
	}

	if _, err := c.ParsedCategories(); err != nil {
		add("%v", err)
	}

	for name, v := range map[string]int{
		"baseline":  c.Concurrency.Baseline,
		"io":        c.Concurrency.IO,
		"cpu":       c.Concurrency.CPU,
		"sustained": c.Concurrency.Sustained,
	} {
		if v < 1 {
			add("%s concurrency must be positive, got %d", name, v)
		}
	}

	if _, err := c.Shape(); err != nil {
		add("%v", err)
	}
	if c.Load.Duration <= 0 {
		add("test duration must be positive, got %s", c.Load.Duration)
	}
	if c.Load.RequestsPerWorker < 1 {
		add("requests per worker must be positive, got %d", c.Load.RequestsPerWorker)
	}
	if c.Load.RequestTimeout <= 0 {
		add("request timeout must be positive, got %s", c.Load.RequestTimeout)
	}
	if c.Load.RampUp < 0 {
		add("ramp-up must not be negative, got %s", c.Load.RampUp)
	}
	if c.Load.ThinkTimeMin < 0 || c.Load.ThinkTimeMax < c.Load.ThinkTimeMin {
		add("invalid think-time range [%s, %s]", c.Load.ThinkTimeMin, c.Load.ThinkTimeMax)
	}
	if c.Warmup.Requests < 0 {
		add("warmup requests must not be negative, got %d", c.Warmup.Requests)
	}
	if c.Correctness.Enabled && c.Correctness.ExpectedPrime == 0 && c.Correctness.PrimeIndex < 1 {
		add("prime index must be positive, got %d", c.Correctness.PrimeIndex)
	}
	if c.Breaking.Enabled {
		if err := c.BreakingConfig().Validate(); err != nil {
			add("%v", err)
		}
	}
	for _, f := range c.OutputFormats() {
		switch f {
		case "html", "csv", "json":
		default:
			add("unknown output format %q", f)
		}
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration:\n  " + strings.Join(problems, "\n  "))
	}
	return nil
}

// ParsedCategories returns the configured load categories in order
func (c *Config) ParsedCategories() ([]benchmark.Category, error) {
	out := make([]benchmark.Category, 0, len(c.Categories))
	for _, raw := range c.Categories {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		found := false
		for _, known := range []benchmark.Category{
			benchmark.CategoryBaseline,
			benchmark.CategoryIO,
			benchmark.CategoryCPU,
			benchmark.CategorySustained,
		} {
			if strings.EqualFold(name, string(known)) {
				out = append(out, known)
				found = true
				break
			}
		}
		if !found {
			return nil, errors.Errorf("unknown category %q", name)
		}
	}
	return out, nil
}

// Shape returns the workload shape of the regular rounds
func (c *Config) Shape() (benchmark.Shape, error) {
	switch strings.ToLower(c.Load.Shape) {
	case "duration", "":
		return benchmark.ShapeDuration, nil
	case "count":
		return benchmark.ShapeCount, nil
	default:
		return 0, errors.Errorf("unknown workload shape %q (must be 'duration' or 'count')", c.Load.Shape)
	}
}

// BreakingConfig converts the breaking-point options
func (c *Config) BreakingConfig() httpload.BreakingConfig {
	return httpload.BreakingConfig{
		Start:            c.Breaking.Start,
		Step:             c.Breaking.Step,
		Limit:            c.Breaking.Limit,
		Threshold:        c.Breaking.Threshold,
		RequestsPerRound: c.Breaking.RequestsPerRound,
		Timeout:          c.Breaking.Timeout,
		Pause:            c.Breaking.Pause,
	}
}

// OutputFormats returns the requested report formats, lower-cased
func (c *Config) OutputFormats() []string {
	var out []string
	for _, f := range strings.Split(c.Output.Formats, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
