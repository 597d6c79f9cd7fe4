package main

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
	"github.com/moguls753/runtime-benchmark/internal/config"
)

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(nil)
	require.NoError(t, err)
	return cfg
}

func TestApplyRunFlags_OnlyChangedFlagsOverride(t *testing.T) {
	cfg := loadConfig(t)
	cmd := newRunCommand(&app{})
	require.NoError(t, cmd.ParseFlags([]string{"--duration=2s", "--categories=IO,CPU", "--attack"}))

	applyRunFlags(cmd, cfg)

	assert.Equal(t, 2*time.Second, cfg.Load.Duration)
	assert.Equal(t, []string{"IO", "CPU"}, cfg.Categories)
	assert.True(t, cfg.Load.AttackMode)
	assert.Equal(t, 30*time.Second, cfg.Load.RequestTimeout, "unset flags keep the configured value")
	assert.True(t, cfg.Correctness.Enabled)
}

func TestApplyBreakpointFlags(t *testing.T) {
	cfg := loadConfig(t)
	cmd := newBreakpointCommand(&app{})
	require.NoError(t, cmd.ParseFlags([]string{"--start=100", "--step=50", "--limit=1000"}))

	applyBreakpointFlags(cmd, cfg)

	bc := cfg.BreakingConfig()
	assert.Equal(t, 100, bc.Start)
	assert.Equal(t, 50, bc.Step)
	assert.Equal(t, 1000, bc.Limit)
	assert.Equal(t, 10, bc.Threshold)
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"run", "breakpoint"}, names)
}

func TestExecute_MetricsAddrInUseFailsBeforeLoad(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(srv.Close)

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { busy.Close() })

	cfg := loadConfig(t)
	cfg.Targets = []benchmark.Target{{Name: "test", BaseURL: srv.URL}}
	cfg.Categories = []string{"IO"}
	cfg.Metrics.Addr = busy.Addr().String()
	cfg.Output.Dir = t.TempDir()

	logger, _ := test.NewNullLogger()
	a := &app{cfg: cfg, logger: logger, runID: "test"}

	err = a.execute(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), busy.Addr().String())
	assert.Zero(t, hits.Load())
}
