package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/moguls753/runtime-benchmark/internal/config"
	"github.com/moguls753/runtime-benchmark/internal/logging"
)

// app carries what every subcommand needs once flags are parsed
type app struct {
	cfg    *config.Config
	logger *logrus.Logger
	runID  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}
	var envFiles []string

	root := &cobra.Command{
		Use:           "benchmark",
		Short:         "Comparative HTTP load tests against several runtime implementations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFiles)
			if err != nil {
				return err
			}
			if err := applyRootFlags(cmd, cfg); err != nil {
				return err
			}

			logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return err
			}

			a.cfg = cfg
			a.logger = logger
			a.runID = ulid.Make().String()
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringSliceVar(&envFiles, "env-file", []string{".env", ".env.local"}, ".env files to load before reading the environment")
	flags.String("targets", "", "YAML file listing the targets (default: the four sample servers)")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (text, json)")
	flags.String("output-dir", "", "Directory for the report files")
	flags.String("formats", "", "Comma-separated report formats (html, csv, json)")
	flags.String("metrics-addr", "", "Serve prometheus metrics on this address while running")
	flags.String("compose-file", "", "docker compose file that starts the targets")

	root.AddCommand(newRunCommand(a), newBreakpointCommand(a))
	return root
}

// applyRootFlags overrides configuration values with the flags that were set
func applyRootFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("targets") {
		cfg.TargetsFile, _ = flags.GetString("targets")
		if err := cfg.LoadTargets(); err != nil {
			return err
		}
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("output-dir") {
		cfg.Output.Dir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("formats") {
		cfg.Output.Formats, _ = flags.GetString("formats")
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr, _ = flags.GetString("metrics-addr")
	}
	if flags.Changed("compose-file") {
		cfg.Container.ComposeFile, _ = flags.GetString("compose-file")
	}
	return nil
}
