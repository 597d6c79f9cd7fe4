package container

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
	"github.com/moguls753/runtime-benchmark/internal/benchmark/httpload"
)

// Config defines how the target containers are brought up
type Config struct {
	ComposeFile  string             // Path to docker-compose file
	Targets      []benchmark.Target // Polled until every one answers
	ReadyTimeout time.Duration      // Per target
	Logger       logrus.FieldLogger
}

// command is swapped in tests
var command = exec.CommandContext

// Start brings the compose project up and waits until every target answers
// HTTP requests.
func Start(ctx context.Context, cfg Config) error {
	log := cfg.logger()
	log.Infof("Starting target containers from %s...", cfg.ComposeFile)

	cmd := command(ctx, "docker", "compose", "-f", cfg.ComposeFile, "up", "-d")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to start containers: %w\nOutput: %s", err, string(output))
	}

	log.Info("Waiting for targets to initialize...")
	if err := WaitForTargets(ctx, cfg.Targets, cfg.ReadyTimeout); err != nil {
		return err
	}

	log.Info("Containers ready")
	return nil
}

// WaitForTargets blocks until every target answers on its base URL
func WaitForTargets(ctx context.Context, targets []benchmark.Target, timeout time.Duration) error {
	for _, t := range targets {
		if err := httpload.WaitForReady(ctx, t.URL(benchmark.EndpointIO), timeout); err != nil {
			return fmt.Errorf("%s failed to start: %w", t.Name, err)
		}
	}
	return nil
}

// Stop tears the compose project down
func Stop(composeFile string, logger logrus.FieldLogger) {
	cfg := Config{Logger: logger}
	log := cfg.logger()
	log.Info("Cleaning up containers...")

	// Ignore errors on cleanup - containers might already be stopped
	cmd := command(context.Background(), "docker", "compose", "-f", composeFile, "down")
	cmd.Run()

	log.Info("Containers stopped and removed")
}

func (c Config) logger() logrus.FieldLogger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}
