package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// PinOptions holds flags for the pin command.
type PinOptions struct {
	*RootOptions
	Remove bool
}

// NewPinCommand creates the pin command.
func NewPinCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PinOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "pin <id>",
		Short: "Pin a history entry",
		Long: `Pin a history entry so it sorts first and is never pruned.

Example:
  purepaste pin 018f3b1c-2f6e-7a90-b1c4-d5e6f7a8b9c0
  purepaste pin --remove 018f3b1c-2f6e-7a90-b1c4-d5e6f7a8b9c0`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setPin(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Remove, "remove", false, "unpin instead of pin")

	return cmd
}

func setPin(opts *PinOptions, id string, cmd *cobra.Command) error {
	_, st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := st.Entry(ctx, id); err != nil {
		return WrapExitError(ExitFailure, "entry not found", err)
	}

	entry, err := st.SetPinned(ctx, id, !opts.Remove)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to update pin", err)
	}

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	if opts.Format == "json" {
		return formatter.Success(entry)
	}
	verb := "pinned"
	if opts.Remove {
		verb = "unpinned"
	}
	return formatter.Success(fmt.Sprintf("%s %s", verb, entry.ID))
}
