package provider

import (
	"context"
	"slices"

	"github.com/j-millet/scriptrunner/internal/ir"
)

// Provider is a source of named system state values.
type Provider interface {
	// Name identifies the provider in diagnostics.
	Name() string

	// Snapshot observes the current state. It may block on I/O.
	Snapshot(ctx context.Context) (ir.Snapshot, error)
}

// Builtins returns fresh instances of every built-in provider in
// registration order.
func Builtins() []Provider {
	return []Provider{
		NewNet(),
		NewLid(),
		NewMonitor(),
	}
}

// KeyInfo describes one key a provider can supply.
type KeyInfo struct {
	Key  string `json:"key"`
	Kind string `json:"kind"`
}

// Description is the result of probing one provider for its keys.
type Description struct {
	Provider string    `json:"provider"`
	Keys     []KeyInfo `json:"keys,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Describe takes one snapshot from each provider and lists the keys it
// returned with their kinds, sorted by key. A failing provider is reported
// with its error instead of keys.
func Describe(ctx context.Context, providers []Provider) []Description {
	out := make([]Description, 0, len(providers))
	for _, p := range providers {
		d := Description{Provider: p.Name()}
		snap, err := p.Snapshot(ctx)
		if err != nil {
			d.Error = err.Error()
			out = append(out, d)
			continue
		}
		for _, k := range snap.SortedKeys() {
			d.Keys = append(d.Keys, KeyInfo{Key: k, Kind: snap[k].Kind().String()})
		}
		out = append(out, d)
	}
	return out
}

// changedMember returns the first name, in sorted order, present in cur but
// not in prev. Used by providers to report which member was added or
// removed since the previous observation.
func changedMember(cur, prev map[string]bool) (string, bool) {
	names := make([]string, 0, len(cur))
	for name, on := range cur {
		if on && !prev[name] {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", false
	}
	slices.Sort(names)
	return names[0], true
}
