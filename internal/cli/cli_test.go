package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/j-millet/scriptrunner/internal/ir"
	"github.com/j-millet/scriptrunner/internal/provider"
	"github.com/j-millet/scriptrunner/internal/testutil"
)

// testProviders returns a provider factory: a lid provider that reports
// open at startup and closed afterwards, and a battery provider that
// always fails.
func testProviders() func() []provider.Provider {
	return func() []provider.Provider {
		return []provider.Provider{
			testutil.NewScriptedProvider("lid",
				ir.Snapshot{"lid_open": ir.Bool(true)},
				ir.Snapshot{"lid_open": ir.Bool(false)},
			),
			testutil.NewScriptedProviderSteps("battery",
				testutil.Step{Err: errors.New("no battery")},
			),
		}
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs the root command with args and returns stdout, stderr and
// the error.
func execute(t *testing.T, opts *RootOptions, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	if opts.NewProviders == nil {
		opts.NewProviders = testProviders()
	}
	cmd := newRootCommand(opts)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	if ctx == nil {
		ctx = context.Background()
	}
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}
