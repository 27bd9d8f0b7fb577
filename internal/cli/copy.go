package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/puraz/pure-paste/internal/clipboard"
	"github.com/puraz/pure-paste/internal/history"
)

// NewCopyCommand creates the copy command.
func NewCopyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy <id>",
		Short: "Copy a history entry back to the clipboard",
		Long: `Copy a history entry back to the system clipboard.

The entry's hit count is bumped and it moves to the top of the history,
the same as copying the text again by hand. A running daemon also
notices the changed clipboard on its next poll and records it once
more, so with a daemon active the hit count rises by two.

Example:
  purepaste copy 018f3b1c-2f6e-7a90-b1c4-d5e6f7a8b9c0`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return copyEntry(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func copyEntry(opts *RootOptions, id string, cmd *cobra.Command) error {
	cfg, st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	entry, err := st.Entry(ctx, id)
	if err != nil {
		return WrapExitError(ExitFailure, "entry not found", err)
	}

	port := clipboard.NewSystemPort()
	if err := port.WriteText(entry.Text); err != nil {
		return WrapExitError(ExitFailure, "failed to write clipboard", err)
	}

	bumped, err := st.Upsert(ctx, history.NewEntry(entry.Text, time.Now()), cfg.MaxItems)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to record copy", err)
	}

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	if opts.Format == "json" {
		return formatter.Success(bumped)
	}
	return formatter.Success("copied to clipboard")
}
