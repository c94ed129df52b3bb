package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/j-millet/scriptrunner/internal/ir"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string      `json:"scenario_name"`
	Setup        []string    `json:"setup,omitempty"`
	Trace        []TickTrace `json:"trace"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles IR types and primitives.
// Empty lists and first observations (no old value) are omitted.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, tt := range s.Trace {
		tickMap := map[string]any{
			"tick": tt.Tick,
		}
		if len(tt.Changes) > 0 {
			changes := make([]any, len(tt.Changes))
			for j, c := range tt.Changes {
				cm := map[string]any{
					"provider": c.Provider,
					"key":      c.Key,
					"new":      c.New,
				}
				if c.Old != nil {
					cm["old"] = c.Old
				}
				changes[j] = cm
			}
			tickMap["changes"] = changes
		}
		if len(tt.Dirty) > 0 {
			dirty := make([]any, len(tt.Dirty))
			for j, id := range tt.Dirty {
				dirty[j] = id
			}
			tickMap["dirty"] = dirty
		}
		if len(tt.Dispatched) > 0 {
			dispatched := make([]any, len(tt.Dispatched))
			for j, d := range tt.Dispatched {
				dispatched[j] = map[string]any{
					"rule":    d.Rule,
					"command": d.Command,
					"outcome": d.Outcome,
				}
			}
			tickMap["dispatched"] = dispatched
		}
		if len(tt.Errors) > 0 {
			tickMap["errors"] = tt.Errors
		}
		traceList[i] = tickMap
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
	}
	if len(s.Setup) > 0 {
		result["setup"] = s.Setup
	}
	return result
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := MarshalTrace(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}

// MarshalTrace renders a result's setup errors and trace as canonical JSON.
func MarshalTrace(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Setup:        result.Setup,
		Trace:        result.Trace,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}
