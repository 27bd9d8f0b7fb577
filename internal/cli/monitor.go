package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewMonitorCommand creates the monitor command.
func NewMonitorCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor [on|off|status]",
		Short: "Toggle or inspect clipboard monitoring",
		Long: `Toggle or inspect clipboard monitoring.

The setting is persisted: a running daemon re-reads it on its next
poll cycle, and a daemon started later honors it on startup. With no
argument the current state is printed.

Example:
  purepaste monitor off
  purepaste monitor on
  purepaste monitor status`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "status"
			if len(args) == 1 {
				action = args[0]
			}
			return monitorAction(rootOpts, action, cmd)
		},
	}
	return cmd
}

func monitorAction(opts *RootOptions, action string, cmd *cobra.Command) error {
	_, st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch action {
	case "on":
		if err := st.SetMonitoringEnabled(ctx, true); err != nil {
			return WrapExitError(ExitFailure, "failed to enable monitoring", err)
		}
	case "off":
		if err := st.SetMonitoringEnabled(ctx, false); err != nil {
			return WrapExitError(ExitFailure, "failed to disable monitoring", err)
		}
	case "status":
		// read-only
	default:
		return NewExitError(ExitCommandError,
			fmt.Sprintf("unknown action %q: must be on, off or status", action))
	}

	enabled, err := st.MonitoringEnabled(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read monitoring setting", err)
	}

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	if opts.Format == "json" {
		return formatter.Success(map[string]bool{"monitoring": enabled})
	}
	state := "off"
	if enabled {
		state = "on"
	}
	return formatter.Success("monitoring " + state)
}
