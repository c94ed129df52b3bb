package engine

import (
	"context"
	"log/slog"
	"slices"

	"github.com/j-millet/scriptrunner/internal/ir"
	"github.com/j-millet/scriptrunner/internal/metrics"
	"github.com/j-millet/scriptrunner/internal/provider"
)

// Change is one key whose stored value changed.
type Change struct {
	Provider string
	Key      string
	Old      ir.SystemValue // nil on first observation
	New      ir.SystemValue
}

// DirtySet maps each dirty rule to the keys that made it dirty this tick.
type DirtySet map[int]map[string]struct{}

func (d DirtySet) add(rule int, key string) {
	keys, ok := d[rule]
	if !ok {
		keys = make(map[string]struct{})
		d[rule] = keys
	}
	keys[key] = struct{}{}
}

// Rules returns the dirty rule ids in arena order.
func (d DirtySet) Rules() []int {
	ids := make([]int, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Keys returns the changed keys that dirtied rule.
func (d DirtySet) Keys(rule int) map[string]struct{} {
	return d[rule]
}

// ChangeDetector pulls provider snapshots into the state store and works
// out which rules are dirty.
type ChangeDetector struct {
	store   *StateStore
	index   *SubscriptionIndex
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewChangeDetector creates a detector over store and index.
func NewChangeDetector(store *StateStore, index *SubscriptionIndex, logger *slog.Logger, m *metrics.Collector) *ChangeDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChangeDetector{store: store, index: index, logger: logger, metrics: m}
}

// Detect snapshots every provider in order and applies the results. A
// failing provider is logged and contributes nothing; the others proceed.
func (d *ChangeDetector) Detect(ctx context.Context, tick Tick, providers []provider.Provider) ([]Change, DirtySet) {
	var changes []Change
	dirty := make(DirtySet)

	for _, p := range providers {
		if ctx.Err() != nil {
			break
		}
		snap, err := p.Snapshot(ctx)
		if err != nil {
			d.logger.Warn("provider snapshot failed",
				"provider", p.Name(),
				"tick", uint64(tick),
				"error", err,
			)
			d.metrics.RecordProviderError(p.Name())
			continue
		}
		changes = append(changes, d.Apply(p.Name(), snap, dirty)...)
	}

	d.metrics.SetStateKeys(d.store.Len())
	return changes, dirty
}

// Apply merges one provider's snapshot into the store. Keys the provider
// does not own are ignored. With a nil dirty set the store is updated
// without marking any rule, which is how the startup observation is
// recorded.
func (d *ChangeDetector) Apply(name string, snap ir.Snapshot, dirty DirtySet) []Change {
	var changes []Change
	for _, key := range snap.SortedKeys() {
		if owner, ok := d.index.Owner(key); !ok || owner != name {
			continue
		}
		old, _ := d.store.Get(key)
		if !d.store.Update(key, snap[key]) {
			continue
		}
		changes = append(changes, Change{Provider: name, Key: key, Old: old, New: snap[key]})
		if dirty == nil {
			continue
		}
		for _, rule := range d.index.Rules(key) {
			dirty.add(rule, key)
		}
	}
	if dirty != nil {
		d.metrics.RecordStateChanges(name, len(changes))
	}
	return changes
}
