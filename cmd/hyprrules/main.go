package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyprpal/hyprrules/internal/config"
	"github.com/hyprpal/hyprrules/internal/engine"
	"github.com/hyprpal/hyprrules/internal/ipc"
	"github.com/hyprpal/hyprrules/internal/metrics"
	"github.com/hyprpal/hyprrules/internal/rules"
	"github.com/hyprpal/hyprrules/internal/util"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		exitErr(err)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hyprrules [config]",
		Short: "Compile YAML window rules for Hyprland and keep follow rules applied",
		Long: `hyprrules reads a YAML rule file, prints the equivalent windowrule
statements for hyprland.conf, and, when any rule sets follow-title, stays
running to re-apply that rule's placement whenever a matching window gains focus.

Settings are read from the environment:
  HYPRRULES_LOG_LEVEL   trace|debug|info|warn|error (default info)
  HYPRRULES_LOG_FORMAT  console|json (default console)
  HYPRRULES_STATS       log follow-rule counters on exit (default true)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultRulesPath()
			if len(args) == 1 {
				path = args[0]
			}
			settings, err := config.LoadSettings()
			if err != nil {
				return err
			}
			logger := newLogger(settings, cmd.ErrOrStderr())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, path, settings, logger, cmd.OutOrStdout())
		},
	}
}

func newLogger(settings config.Settings, w io.Writer) *util.Logger {
	level := util.ParseLogLevel(settings.LogLevel)
	if settings.LogFormat == config.LogFormatJSON {
		return util.NewJSONLogger(level, w)
	}
	return util.NewLoggerWithWriter(level, w)
}

func run(ctx context.Context, path string, settings config.Settings, logger *util.Logger, out io.Writer) error {
	blocks, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	set, err := rules.Compile(blocks)
	if err != nil {
		return fmt.Errorf("compile rules: %w", err)
	}
	for _, line := range set.Lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("write rules: %w", err)
		}
	}
	logger.Debugf("compiled %d statements and %d follow rules from %s", len(set.Lines), len(set.Runtime), path)
	if len(set.Runtime) == 0 {
		return nil
	}
	return follow(ctx, set.Runtime, settings, logger)
}

func follow(ctx context.Context, runtime []rules.RuntimeRule, settings config.Settings, logger *util.Logger) error {
	events, err := ipc.DialEvents(logger)
	if err != nil {
		return fmt.Errorf("subscribe to events: %w", err)
	}
	hypr, err := ipc.NewHyprctl(logger)
	if err != nil {
		return fmt.Errorf("configure control socket: %w", err)
	}
	if err := hypr.Probe(); err != nil {
		return err
	}
	logger.Debugf("control socket %s", hypr.SocketPath())

	collector := metrics.NewCollector(settings.Stats)
	eng := engine.New(hypr, logger, runtime, collector)
	eng.Prime()

	err = eng.Run(ctx, events)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Infof("shutting down")
	case err != nil:
		logger.Warnf("event stream: %v", err)
	default:
		logger.Warnf("event stream closed")
		_ = hypr.Notify(ipc.IconWarning, 5*time.Second, "rgb(ff1ea3)", "hyprrules: event stream closed, follow rules are no longer applied")
	}
	logger.Infof("handled %d focus events", events.Received())
	logSnapshot(logger, collector.Snapshot())
	return nil
}

func logSnapshot(logger *util.Logger, snap metrics.Snapshot) {
	if !snap.Enabled {
		return
	}
	logger.Infof("focus events: %d, matched: %d, applied: %d, dispatch errors: %d",
		snap.Totals.Events, snap.Totals.Matched, snap.Totals.Applied, snap.Totals.DispatchErrors)
	for _, r := range snap.Rules {
		logger.Infof("rule %s: matched %d, applied %d, dispatch errors %d", r.Rule, r.Matched, r.Applied, r.DispatchErrors)
	}
}

func exitErr(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
