package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/j-millet/scriptrunner/internal/compiler"
	"github.com/j-millet/scriptrunner/internal/provider"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Rules  int                        `json:"rules"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration against the available providers",
		Long: `Compile the configuration and check every rule against the keys the
providers on this machine supply, without running anything.

Exit codes:
  0 - Configuration is valid
  1 - One or more rules would be rejected or could never dispatch
  2 - Configuration missing or malformed`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := LoadConfig(opts.Config)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			msg := loadErr.Message
			if loadErr.Line > 0 {
				msg = fmt.Sprintf("line %d: %s", loadErr.Line, msg)
			}
			if outErr := formatter.Error(loadErr.Code, msg, nil); outErr != nil {
				return outErr
			}
		}
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	formatter.VerboseLog("Loaded %d rule(s) from %s", len(cfg.Rules), cfg.Path)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	keys := availableKeys(ctx, opts.providers(), formatter)

	validationErrors := compiler.Validate(cfg.Rules, keys)
	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, len(cfg.Rules), validationErrors)
	}
	return outputValidateSuccess(formatter, len(cfg.Rules))
}

// availableKeys queries the providers and returns the union of their keys.
func availableKeys(ctx context.Context, providers []provider.Provider, formatter *OutputFormatter) []string {
	var keys []string
	for _, d := range provider.Describe(ctx, providers) {
		if d.Error != "" {
			formatter.VerboseLog("Provider %s unavailable: %s", d.Provider, d.Error)
			continue
		}
		formatter.VerboseLog("Provider %s supplies %d key(s)", d.Provider, len(d.Keys))
		for _, k := range d.Keys {
			keys = append(keys, k.Key)
		}
	}
	return keys
}

func outputValidationErrors(formatter *OutputFormatter, rules int, errs []compiler.ValidationError) error {
	if formatter.JSON() {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Rules: rules, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: fmt.Sprintf("%d validation error(s)", len(errs)),
			},
		}); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		fmt.Fprintf(w, "✗ %d validation error(s):\n", len(errs))
		for _, e := range errs {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(errs)))
}

func outputValidateSuccess(formatter *OutputFormatter, rules int) error {
	if formatter.JSON() {
		return formatter.Success(ValidationResult{Valid: true, Rules: rules})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d rule(s) valid\n", rules)
	return nil
}
