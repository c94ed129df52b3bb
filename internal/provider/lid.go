package provider

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/j-millet/scriptrunner/internal/ir"
)

// DefaultLidPath is the ACPI lid switch state file.
const DefaultLidPath = "/proc/acpi/button/lid/LID/state"

// Lid reports whether the laptop lid is open.
//
// Keys:
//   - lid_open (Boolean)
type Lid struct {
	path string
}

// NewLid creates a Lid provider reading DefaultLidPath.
func NewLid() *Lid {
	return NewLidAt(DefaultLidPath)
}

// NewLidAt creates a Lid provider reading the given state file.
func NewLidAt(path string) *Lid {
	return &Lid{path: path}
}

// Name implements Provider.
func (l *Lid) Name() string { return "lid" }

// Snapshot implements Provider.
// The state file reads like "state:      open"; the last field decides.
func (l *Lid) Snapshot(ctx context.Context) (ir.Snapshot, error) {
	contents, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("no lid state file: %w", err)
	}

	fields := strings.Fields(string(contents))
	if len(fields) == 0 {
		return nil, fmt.Errorf("lid state file %s is empty", l.path)
	}

	return ir.Snapshot{
		"lid_open": ir.NewBool(fields[len(fields)-1] == "open"),
	}, nil
}
