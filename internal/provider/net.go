package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/j-millet/scriptrunner/internal/ir"
)

// DefaultNetRoot is where the kernel exposes network interfaces.
const DefaultNetRoot = "/sys/class/net"

// Net reports how many network interfaces are up and which interface
// changed state most recently.
//
// Keys:
//   - num_up_interfaces (Integer)
//   - last_updated_interface (String, empty until the first change)
type Net struct {
	root string
	up   map[string]bool
	last string
}

// NewNet creates a Net provider reading DefaultNetRoot.
func NewNet() *Net {
	return NewNetAt(DefaultNetRoot)
}

// NewNetAt creates a Net provider reading interfaces from root.
func NewNetAt(root string) *Net {
	return &Net{root: root, up: map[string]bool{}}
}

// Name implements Provider.
func (n *Net) Name() string { return "net" }

// Snapshot implements Provider.
func (n *Net) Snapshot(ctx context.Context) (ir.Snapshot, error) {
	entries, err := os.ReadDir(n.root)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", n.root, err)
	}

	up := make(map[string]bool, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		state, err := os.ReadFile(filepath.Join(n.root, name, "operstate"))
		if err != nil {
			return nil, fmt.Errorf("interface %s: %w", name, err)
		}
		if strings.Contains(strings.ToLower(string(state)), "up") {
			up[name] = true
		}
	}

	switch {
	case len(up) > len(n.up):
		if name, ok := changedMember(up, n.up); ok {
			n.last = name
		}
	case len(up) < len(n.up):
		if name, ok := changedMember(n.up, up); ok {
			n.last = name
		}
	}
	n.up = up

	return ir.Snapshot{
		"num_up_interfaces":      ir.NewInt(int64(len(up))),
		"last_updated_interface": ir.NewString(n.last),
	}, nil
}
