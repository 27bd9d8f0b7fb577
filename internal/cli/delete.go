package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a history entry",
		Long: `Delete one entry from the history.

Example:
  purepaste delete 018f3b1c-2f6e-7a90-b1c4-d5e6f7a8b9c0`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return deleteEntry(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func deleteEntry(opts *RootOptions, id string, cmd *cobra.Command) error {
	_, st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := st.Delete(ctx, id); err != nil {
		return WrapExitError(ExitFailure, "failed to delete entry", err)
	}

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	return formatter.Success(fmt.Sprintf("deleted %s", id))
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the entire history",
		Long: `Delete every entry from the history, pinned ones included.

Example:
  purepaste clear`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return clearHistory(rootOpts, cmd)
		},
	}
	return cmd
}

func clearHistory(opts *RootOptions, cmd *cobra.Command) error {
	_, st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := st.Clear(ctx); err != nil {
		return WrapExitError(ExitFailure, "failed to clear history", err)
	}

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	return formatter.Success("history cleared")
}
