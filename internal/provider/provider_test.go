package provider

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-millet/scriptrunner/internal/ir"
)

func writeIface(t *testing.T, root, name, state string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "operstate"), []byte(state+"\n"), 0o644))
}

func TestNet_Snapshot(t *testing.T) {
	root := t.TempDir()
	writeIface(t, root, "lo", "unknown")
	writeIface(t, root, "eth0", "up")
	writeIface(t, root, "wlan0", "down")

	n := NewNetAt(root)
	snap, err := n.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ir.Int(1), snap["num_up_interfaces"])
	assert.Equal(t, ir.String("eth0"), snap["last_updated_interface"])

	writeIface(t, root, "wlan0", "UP")
	snap, err = n.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ir.Int(2), snap["num_up_interfaces"])
	assert.Equal(t, ir.String("wlan0"), snap["last_updated_interface"])

	writeIface(t, root, "eth0", "down")
	snap, err = n.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ir.Int(1), snap["num_up_interfaces"])
	assert.Equal(t, ir.String("eth0"), snap["last_updated_interface"])
}

func TestNet_MissingRoot(t *testing.T) {
	_, err := NewNetAt(filepath.Join(t.TempDir(), "nope")).Snapshot(context.Background())
	assert.Error(t, err)
}

func TestNet_InterfaceWithoutOperstate(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "broken"), 0o755))

	_, err := NewNetAt(root).Snapshot(context.Background())
	assert.ErrorContains(t, err, "broken")
}

func TestLid_Snapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	l := NewLidAt(path)

	require.NoError(t, os.WriteFile(path, []byte("state:      open\n"), 0o644))
	snap, err := l.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ir.Snapshot{"lid_open": ir.Bool(true)}, snap)

	require.NoError(t, os.WriteFile(path, []byte("state:      closed\n"), 0o644))
	snap, err = l.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ir.Snapshot{"lid_open": ir.Bool(false)}, snap)
}

func TestLid_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewLidAt(filepath.Join(dir, "missing")).Snapshot(context.Background())
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = NewLidAt(empty).Snapshot(context.Background())
	assert.Error(t, err)
}

const xrandrOneDisplay = `Screen 0: minimum 320 x 200, current 1920 x 1080, maximum 16384 x 16384
eDP-1 connected primary 1920x1080+0+0 (normal left inverted right x axis y axis) 344mm x 194mm
   1920x1080     60.02*+
HDMI-1 disconnected (normal left inverted right x axis y axis)
`

const xrandrTwoDisplays = `Screen 0: minimum 320 x 200, current 3840 x 1080, maximum 16384 x 16384
eDP-1 connected primary 1920x1080+0+0 (normal left inverted right x axis y axis) 344mm x 194mm
HDMI-1 connected 1920x1080+1920+0 (normal left inverted right x axis y axis) 527mm x 296mm
`

func TestMonitor_Snapshot(t *testing.T) {
	outputs := [][]byte{[]byte(xrandrOneDisplay), []byte(xrandrTwoDisplays), []byte(xrandrOneDisplay)}
	call := 0
	m := NewMonitorWithQuery(func(ctx context.Context) ([]byte, error) {
		out := outputs[call]
		call++
		return out, nil
	})

	snap, err := m.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ir.Bool(true), snap["eDP-1_connected"])
	assert.Equal(t, ir.Bool(false), snap["HDMI-1_connected"])
	assert.Equal(t, ir.Int(1), snap["num_displays_plugged_in"])

	snap, err = m.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ir.Int(2), snap["num_displays_plugged_in"])
	assert.Equal(t, ir.String("HDMI-1"), snap["last_display_changed"])
	assert.Equal(t, ir.Bool(true), snap["last_display_was_connected"])

	snap, err = m.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ir.Int(1), snap["num_displays_plugged_in"])
	assert.Equal(t, ir.String("HDMI-1"), snap["last_display_changed"])
	assert.Equal(t, ir.Bool(false), snap["last_display_was_connected"])
}

func TestMonitor_QueryError(t *testing.T) {
	m := NewMonitorWithQuery(func(ctx context.Context) ([]byte, error) {
		return nil, errors.New("xrandr: not found")
	})

	_, err := m.Snapshot(context.Background())
	assert.ErrorContains(t, err, "xrandr")
}

type failing struct{}

func (failing) Name() string { return "failing" }
func (failing) Snapshot(context.Context) (ir.Snapshot, error) {
	return nil, errors.New("boom")
}

func TestDescribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	require.NoError(t, os.WriteFile(path, []byte("state: open"), 0o644))

	got := Describe(context.Background(), []Provider{NewLidAt(path), failing{}})

	require.Len(t, got, 2)
	assert.Equal(t, Description{
		Provider: "lid",
		Keys:     []KeyInfo{{Key: "lid_open", Kind: "Boolean"}},
	}, got[0])
	assert.Equal(t, Description{Provider: "failing", Error: "boom"}, got[1])
}

func TestBuiltins(t *testing.T) {
	names := []string{}
	for _, p := range Builtins() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"net", "lid", "monitor"}, names)
}
