package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/j-millet/scriptrunner/internal/engine"
	"github.com/j-millet/scriptrunner/internal/metrics"
	"github.com/j-millet/scriptrunner/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Interval        time.Duration
	Journal         string
	MetricsTextfile string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the rule engine until interrupted",
		Long: `Register the providers, load the rules and poll until SIGINT or SIGTERM.

The first observation of every provider only seeds the state; rules fire
on changes after it. Providers that fail at startup are skipped, as are
rules that depend on keys no provider supplies.

Example:
  scriptrunner run -c ~/.config/scriptrunner/config
  scriptrunner run --interval 1s --journal ~/.local/state/scriptrunner.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoop(opts, cmd)
		},
	}

	addRunFlags(cmd, opts)
	return cmd
}

func addRunFlags(cmd *cobra.Command, opts *RunOptions) {
	cmd.Flags().DurationVar(&opts.Interval, "interval", engine.DefaultInterval, "pause between polls (overrides the configuration)")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record dispatches to this SQLite database")
	cmd.Flags().StringVar(&opts.MetricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file after every poll")
}

func runLoop(opts *RunOptions, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	cfg, err := loadConfigOrExit(opts.Config)
	if err != nil {
		return err
	}
	logger.Info("configuration loaded", "path", cfg.Path, "rules", len(cfg.Rules))

	interval := engine.DefaultInterval
	if cfg.Interval > 0 {
		interval = cfg.Interval
	}
	if cmd.Flags().Changed("interval") {
		interval = opts.Interval
	}
	if interval <= 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid interval %s", interval))
	}

	engOpts := []engine.EngineOption{
		engine.WithInterval(interval),
		engine.WithLogger(logger),
	}
	if opts.Dispatcher != nil {
		engOpts = append(engOpts, engine.WithDispatcher(opts.Dispatcher))
	}

	if opts.Journal != "" {
		st, err := store.Open(opts.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing journal", "error", closeErr)
			}
		}()
		engOpts = append(engOpts, engine.WithJournal(st))
	}

	if opts.MetricsTextfile != "" {
		engOpts = append(engOpts,
			engine.WithMetrics(metrics.NewCollector(nil)),
			engine.WithMetricsTextfile(opts.MetricsTextfile),
		)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.New(engOpts...)

	errw := cmd.ErrOrStderr()
	for _, err := range eng.RegisterProviders(ctx, opts.providers()) {
		var re *engine.RuntimeError
		if errors.As(err, &re) && re.Provider != "" {
			fmt.Fprintf(errw, "Provider %s does not work in your environment.\n", re.Provider)
		}
	}
	for _, err := range eng.AddRules(cfg.Rules) {
		fmt.Fprintf(errw, "Rule skipped: %v\n", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %d key(s) with %d rule(s) every %s. Press Ctrl-C to stop.\n",
		len(eng.Keys()), len(eng.Rules()), interval)

	if err := eng.Run(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "engine error", err)
	}

	logger.Info("engine stopped gracefully")
	return nil
}
