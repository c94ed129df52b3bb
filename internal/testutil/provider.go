package testutil

import (
	"context"
	"errors"

	"github.com/j-millet/scriptrunner/internal/ir"
)

// Step is one scripted provider observation: a snapshot or an error.
type Step struct {
	Snapshot ir.Snapshot
	Err      error
}

// ScriptedProvider replays a fixed list of observations, one per Snapshot
// call. After the last step it keeps returning the last one.
//
// Thread-safety: not safe for concurrent use, like the engine that calls it.
type ScriptedProvider struct {
	name  string
	steps []Step
	calls int
}

// NewScriptedProvider creates a provider named name that returns snaps in
// order.
func NewScriptedProvider(name string, snaps ...ir.Snapshot) *ScriptedProvider {
	steps := make([]Step, len(snaps))
	for i, s := range snaps {
		steps[i] = Step{Snapshot: s}
	}
	return &ScriptedProvider{name: name, steps: steps}
}

// NewScriptedProviderSteps creates a provider from explicit steps.
func NewScriptedProviderSteps(name string, steps ...Step) *ScriptedProvider {
	return &ScriptedProvider{name: name, steps: steps}
}

// Name implements provider.Provider.
func (p *ScriptedProvider) Name() string { return p.name }

// Snapshot implements provider.Provider.
func (p *ScriptedProvider) Snapshot(ctx context.Context) (ir.Snapshot, error) {
	if len(p.steps) == 0 {
		return nil, errors.New("no scripted snapshots")
	}
	i := p.calls
	if i >= len(p.steps) {
		i = len(p.steps) - 1
	}
	p.calls++

	step := p.steps[i]
	if step.Err != nil {
		return nil, step.Err
	}
	return step.Snapshot.Clone(), nil
}

// Calls returns how many times Snapshot has been called.
func (p *ScriptedProvider) Calls() int {
	return p.calls
}
