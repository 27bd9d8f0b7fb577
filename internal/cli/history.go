package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/puraz/pure-paste/internal/history"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Query string
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List clipboard history",
		Long: `List clipboard history, pinned entries first, newest first.

Example:
  purepaste history
  purepaste history --query invoice --limit 20
  purepaste history --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "case-insensitive substring filter")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "max entries to list (0 means the configured load limit)")

	return cmd
}

func listHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	cfg, st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	limit := opts.Limit
	if limit <= 0 {
		limit = cfg.LoadLimit
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	entries, err := st.LoadHistory(ctx, limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load history", err)
	}
	entries = history.Project(entries, opts.Query)

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	return formatter.Entries(entries)
}
