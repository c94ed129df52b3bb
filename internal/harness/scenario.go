package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/j-millet/scriptrunner/internal/ir"
)

// Scenario defines a deterministic engine run: a rule set, scripted
// provider observations, and assertions about what was dispatched.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config holds rule lines in the configuration file format.
	Config string `yaml:"config,omitempty"`

	// ConfigFile is a configuration file path, relative to the scenario
	// file. Exactly one of Config and ConfigFile must be set.
	ConfigFile string `yaml:"config_file,omitempty"`

	// Providers are registered in order. Each one's first step is the
	// startup observation; step i is returned on the i-th tick after it.
	Providers []ProviderScript `yaml:"providers"`

	// Ticks is the number of loop iterations after startup. Zero means
	// one per scripted step after the first, for the longest script.
	Ticks int `yaml:"ticks,omitempty"`

	// FailCommands lists rendered commands the recording dispatcher
	// reports as failed.
	FailCommands []string `yaml:"fail_commands,omitempty"`

	// Assertions validate the dispatches, the journal and the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// ProviderScript is a scripted provider.
type ProviderScript struct {
	Name  string       `yaml:"name"`
	Steps []ScriptStep `yaml:"steps"`
}

// ScriptStep is one observation: either an error or key/value pairs.
type ScriptStep struct {
	// Error makes the snapshot fail with this text.
	Error string `yaml:"error,omitempty"`

	// Values are the observed keys. YAML integers become Int, floats
	// Float, booleans Bool and strings String.
	Values map[string]any `yaml:",inline"`
}

// Snapshot converts the step's values.
func (s ScriptStep) Snapshot() (ir.Snapshot, error) {
	snap := make(ir.Snapshot, len(s.Values))
	for k, v := range s.Values {
		sv, err := toSystemValue(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		snap[k] = sv
	}
	return snap, nil
}

func toSystemValue(v any) (ir.SystemValue, error) {
	switch val := v.(type) {
	case string:
		return ir.NewString(val), nil
	case bool:
		return ir.NewBool(val), nil
	case int:
		return ir.NewInt(int64(val)), nil
	case int64:
		return ir.NewInt(val), nil
	case float64:
		return ir.NewFloat(val), nil
	default:
		return nil, fmt.Errorf("unsupported value %v (type %T)", v, v)
	}
}

// Assertion validates the outcome of a scenario.
type Assertion struct {
	// Type specifies the assertion type:
	// - "dispatched": Command was dispatched, at Tick if given
	// - "not_dispatched": Command was never dispatched
	// - "dispatch_count": Exactly Count dispatches, of Command if given
	// - "journal_count": Exactly Count journal rows with Outcome
	// - "final_state": Key holds Value after the last tick
	Type string `yaml:"type"`

	Command string  `yaml:"command,omitempty"`
	Tick    *uint64 `yaml:"tick,omitempty"`
	Count   int     `yaml:"count,omitempty"`
	Outcome string  `yaml:"outcome,omitempty"`
	Key     string  `yaml:"key,omitempty"`
	Value   any     `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertDispatched    = "dispatched"
	AssertNotDispatched = "not_dispatched"
	AssertDispatchCount = "dispatch_count"
	AssertJournalCount  = "journal_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.ConfigFile != "" && !filepath.IsAbs(scenario.ConfigFile) {
		scenario.ConfigFile = filepath.Join(filepath.Dir(path), scenario.ConfigFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if (s.Config == "") == (s.ConfigFile == "") {
		return fmt.Errorf("exactly one of config and config_file is required")
	}
	if len(s.Providers) == 0 {
		return fmt.Errorf("providers list is required and must be non-empty")
	}
	if s.Ticks < 0 {
		return fmt.Errorf("ticks must be non-negative")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, p := range s.Providers {
		if p.Name == "" {
			return fmt.Errorf("providers[%d]: name is required", i)
		}
		if len(p.Steps) == 0 {
			return fmt.Errorf("providers[%d]: steps list is required and must be non-empty", i)
		}
		for j, step := range p.Steps {
			if step.Error != "" && len(step.Values) > 0 {
				return fmt.Errorf("providers[%d].steps[%d]: error and values are exclusive", i, j)
			}
			if _, err := step.Snapshot(); err != nil {
				return fmt.Errorf("providers[%d].steps[%d]: %w", i, j, err)
			}
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertDispatched, AssertNotDispatched:
		if a.Command == "" {
			return fmt.Errorf("assertions[%d]: command is required for %s", index, a.Type)
		}
	case AssertDispatchCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for dispatch_count", index)
		}
	case AssertJournalCount:
		switch ir.DispatchOutcome(a.Outcome) {
		case ir.OutcomeOK, ir.OutcomeFailed, ir.OutcomeMissingVariable:
		default:
			return fmt.Errorf("assertions[%d]: unknown outcome %q for journal_count", index, a.Outcome)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for journal_count", index)
		}
	case AssertFinalState:
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for final_state", index)
		}
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for final_state", index)
		}
		if _, err := toSystemValue(a.Value); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
