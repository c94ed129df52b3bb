package ir

import "strconv"

// RuleDef is one rule as written in the configuration, before compilation
// into the engine.
type RuleDef struct {
	// Line is the 1-based line in the configuration file, 0 when the rule
	// did not come from a line-oriented file.
	Line int `json:"line,omitempty"`

	// Source is the rule as written, for diagnostics.
	Source string `json:"source"`

	// Condition is the dependency expression text (left of "=>").
	Condition string `json:"condition"`

	// Action is the shell command template (right of "=>").
	Action string `json:"action"`
}

// Label identifies the rule in log lines and errors.
func (d RuleDef) Label() string {
	if d.Line > 0 {
		return "line " + strconv.Itoa(d.Line)
	}
	return d.Condition
}
