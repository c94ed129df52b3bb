package provider

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/j-millet/scriptrunner/internal/ir"
)

// QueryFunc runs the display query and returns its standard output.
type QueryFunc func(ctx context.Context) ([]byte, error)

// XrandrQuery runs "xrandr -q".
func XrandrQuery(ctx context.Context) ([]byte, error) {
	out, err := exec.CommandContext(ctx, "xrandr", "-q").Output()
	if err != nil {
		return nil, fmt.Errorf("xrandr -q: %w", err)
	}
	return out, nil
}

// Monitor reports connected displays as seen by xrandr.
//
// Keys:
//   - <output>_connected (Boolean), one per output ever seen
//   - num_displays_plugged_in (Integer)
//   - last_display_was_connected (Boolean)
//   - last_display_changed (String, empty until the first change)
type Monitor struct {
	query QueryFunc

	// outputs remembers every output seen so far; a vanished output
	// keeps its last known state.
	outputs       map[string]bool
	lastChanged   string
	lastConnected bool
}

// NewMonitor creates a Monitor provider backed by xrandr.
func NewMonitor() *Monitor {
	return NewMonitorWithQuery(XrandrQuery)
}

// NewMonitorWithQuery creates a Monitor provider with a custom query.
func NewMonitorWithQuery(query QueryFunc) *Monitor {
	return &Monitor{query: query, outputs: map[string]bool{}}
}

// Name implements Provider.
func (m *Monitor) Name() string { return "monitor" }

// Snapshot implements Provider.
func (m *Monitor) Snapshot(ctx context.Context) (ir.Snapshot, error) {
	out, err := m.query(ctx)
	if err != nil {
		return nil, err
	}

	prev := make(map[string]bool, len(m.outputs))
	for k, v := range m.outputs {
		prev[k] = v
	}

	for name, connected := range parseXrandr(out) {
		m.outputs[name] = connected
	}

	now, before := countTrue(m.outputs), countTrue(prev)
	switch {
	case now > before:
		m.lastConnected = true
		if name, ok := changedMember(m.outputs, prev); ok {
			m.lastChanged = name
		}
	case now < before:
		m.lastConnected = false
		if name, ok := changedMember(prev, m.outputs); ok {
			m.lastChanged = name
		}
	}

	snap := make(ir.Snapshot, len(m.outputs)+3)
	for name, connected := range m.outputs {
		snap[name+"_connected"] = ir.NewBool(connected)
	}
	snap["num_displays_plugged_in"] = ir.NewInt(int64(now))
	snap["last_display_was_connected"] = ir.NewBool(m.lastConnected)
	snap["last_display_changed"] = ir.NewString(m.lastChanged)
	return snap, nil
}

// parseXrandr extracts "<output> connected|disconnected" status lines.
func parseXrandr(out []byte) map[string]bool {
	status := make(map[string]bool)
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, "connected") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		status[fields[0]] = fields[1] == "connected"
	}
	return status
}

func countTrue(m map[string]bool) int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}
