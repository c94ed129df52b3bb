package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/j-millet/scriptrunner/internal/provider"
)

const keysHeading = "Usable Keys"

// NewKeysCommand creates the keys command.
func NewKeysCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the keys every provider supplies",
		Long: `Take one observation from every provider and list the keys it supplies
with their kinds. These are the names rules can refer to.

A provider that does not work on this machine is listed with its error.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeys(rootOpts, cmd)
		},
	}
}

func runKeys(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	descs := provider.Describe(ctx, opts.providers())

	f := newFormatter(opts, cmd)
	if f.JSON() {
		return f.Success(descs)
	}
	writeKeys(f.Writer, descs)
	return nil
}

// writeKeys prints the key listing: a heading, then one block per
// provider with a kind column padded to the longest kind name.
func writeKeys(w io.Writer, descs []provider.Description) {
	fmt.Fprintf(w, "%s\n%s\n\n", keysHeading, strings.Repeat("▼", len(keysHeading)))
	for _, d := range descs {
		fmt.Fprintf(w, "%s\n%s\n", d.Provider, strings.Repeat("-", len(d.Provider)))
		if d.Error != "" {
			fmt.Fprintf(w, "Module does not work: %s\n", d.Error)
		}
		for _, k := range d.Keys {
			fmt.Fprintf(w, "  -%-7s : %s\n", k.Kind, k.Key)
		}
		fmt.Fprintln(w)
	}
}
