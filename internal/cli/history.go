package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/j-millet/scriptrunner/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Journal string
	Limit   int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent dispatches from the journal",
		Long: `Print the most recent dispatch attempts recorded with run --journal,
newest first.

Example:
  scriptrunner history --journal ~/.local/state/scriptrunner.db --limit 5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to the SQLite journal (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of dispatches to show")
	_ = cmd.MarkFlagRequired("journal")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	if opts.Limit <= 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid limit %d", opts.Limit))
	}
	// store.Open creates missing databases; history must not.
	if _, err := os.Stat(opts.Journal); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("journal not found: %s", opts.Journal), err)
	}

	st, err := store.Open(opts.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	records, err := st.ReadDispatches(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	f := newFormatter(opts.RootOptions, cmd)
	if f.JSON() {
		return f.Success(records)
	}

	w := f.Writer
	if len(records) == 0 {
		fmt.Fprintln(w, "No dispatches recorded.")
		return nil
	}
	fmt.Fprintf(w, "%-6s %-8s %-16s %5s  %s\n", "SEQ", "TICK", "OUTCOME", "EXIT", "COMMAND")
	for _, rec := range records {
		fmt.Fprintf(w, "%-6d %-8d %-16s %5d  %s\n", rec.Seq, rec.Tick, rec.Outcome, rec.ExitCode, rec.Command)
		if f.Verbose {
			fmt.Fprintf(w, "       id=%s rule=%q\n", rec.ID, rec.Rule)
			if rec.Error != "" {
				fmt.Fprintf(w, "       error=%s\n", rec.Error)
			}
		}
	}
	return nil
}
