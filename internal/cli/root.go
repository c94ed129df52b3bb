package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/j-millet/scriptrunner/internal/compiler"
	"github.com/j-millet/scriptrunner/internal/dispatch"
	"github.com/j-millet/scriptrunner/internal/provider"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string

	// NewProviders builds the provider set (for testing).
	// If nil, defaults to provider.Builtins.
	NewProviders func() []provider.Provider

	// Dispatcher replaces the bash dispatcher (for testing).
	Dispatcher dispatch.Dispatcher
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

func (o *RootOptions) providers() []provider.Provider {
	if o.NewProviders != nil {
		return o.NewProviders()
	}
	return provider.Builtins()
}

// NewRootCommand creates the root command for the scriptrunner CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	runOpts := &RunOptions{RootOptions: opts}
	var displayKeys bool

	cmd := &cobra.Command{
		Use:   "scriptrunner",
		Short: "Run shell commands when system state changes",
		Long: `scriptrunner polls system state providers (network interfaces, laptop
lid, connected monitors) and runs a shell command whenever a rule's
condition becomes true after one of its keys changes.

Rules are read from the configuration file, one per line:

  lid_open == false => loginctl lock-session
  $:last_display_changed && last_display_was_connected == true => autorandr -c

Without a subcommand the engine runs until interrupted.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if displayKeys {
				return runKeys(opts, cmd)
			}
			return runLoop(runOpts, cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", compiler.DefaultConfigPath, "configuration file (.cue for CUE)")

	cmd.Flags().BoolVar(&displayKeys, "display-keys", false, "list the keys every provider supplies and exit")
	addRunFlags(cmd, runOpts)

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewKeysCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// newLogger builds the process logger: text records on w at Info, or
// Debug with --verbose.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
