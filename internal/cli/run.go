package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/puraz/pure-paste/internal/clipboard"
	"github.com/puraz/pure-paste/internal/engine"
	"github.com/puraz/pure-paste/internal/monitor"
	"github.com/puraz/pure-paste/internal/store"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the clipboard capture daemon",
		Long: `Start the clipboard capture daemon.

The daemon polls the system clipboard, records new plain-text content
into the history database (creating it if it doesn't exist), and keeps
the history deduplicated and pruned to capacity.

Example:
  purepaste run
  purepaste run --config ~/.config/purepaste/config.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(rootOpts, cmd)
		},
	}
	return cmd
}

func runDaemon(opts *RootOptions, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	cfg, st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database ready", "path", cfg.DatabasePath)

	port := clipboard.NewSystemPort()
	eng := engine.New(st,
		engine.WithCapacity(cfg.MaxItems),
		engine.WithCommitDelay(cfg.CommitDelay),
		engine.WithLoadLimit(cfg.LoadLimit),
		engine.WithClipboard(port),
	)
	mon := monitor.New(port, eng,
		monitor.WithInterval(cfg.PollInterval),
		monitor.WithOnError(eng.RecordError),
		monitor.WithEnabledSource(func() (bool, error) {
			return st.MonitoringEnabled(context.Background())
		}),
	)
	eng.AttachMonitor(mon)

	// Use the command's context if set (for testing), otherwise create one.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	if err := eng.Start(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to load history", err)
	}
	defer eng.Close()

	enabled, err := st.MonitoringEnabled(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read monitoring setting", err)
	}
	mon.SetEnabled(enabled)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	slog.Info("daemon starting",
		"db", cfg.DatabasePath,
		"capacity", cfg.MaxItems,
		"poll_interval", cfg.PollInterval,
		"monitoring", enabled)
	fmt.Fprintln(cmd.OutOrStdout(), "Capture daemon started. Watching the clipboard...")
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	if err := mon.Run(ctx); err != nil &&
		!errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "monitor error", err)
	}

	slog.Info("daemon stopped gracefully")
	return nil
}

// compile-time check that the store satisfies the engine's gateway.
var _ engine.Gateway = (*store.Store)(nil)
