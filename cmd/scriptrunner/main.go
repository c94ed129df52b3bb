// Command scriptrunner runs shell commands when system state changes.
//
// Usage:
//
//	# Run with ./config
//	scriptrunner
//
//	# Run with another rule file and keep a dispatch journal
//	scriptrunner run -c ~/.config/scriptrunner/config --journal ~/.local/state/scriptrunner.db
//
//	# List the keys rules can use
//	scriptrunner --display-keys
//
//	# Check a rule file against this machine's providers
//	scriptrunner validate -c rules.cue
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/j-millet/scriptrunner/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
