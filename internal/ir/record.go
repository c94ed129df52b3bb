package ir

import "encoding/json"

// DispatchOutcome classifies what happened to one dispatch attempt.
type DispatchOutcome string

const (
	// OutcomeOK means the command ran and exited with status 0.
	OutcomeOK DispatchOutcome = "ok"

	// OutcomeFailed means the command could not be started or exited
	// non-zero.
	OutcomeFailed DispatchOutcome = "failed"

	// OutcomeMissingVariable means the action template referenced a key
	// that is not in the state, so nothing was run.
	OutcomeMissingVariable DispatchOutcome = "missing_variable"
)

// DispatchRecord is one row of the dispatch journal.
type DispatchRecord struct {
	// ID is the dispatch id (UUIDv7 in production).
	ID string `json:"id"`

	// Seq is the journal-assigned order. Zero until written.
	Seq int64 `json:"seq,omitempty"`

	// Tick is the driver loop tick that produced the dispatch.
	Tick uint64 `json:"tick"`

	// RuleID is the rule's index in the engine's rule arena.
	RuleID int `json:"rule_id"`

	// Rule is the rule source text.
	Rule string `json:"rule"`

	// Command is the interpolated command, or the raw template when
	// interpolation failed.
	Command string `json:"command"`

	Outcome DispatchOutcome `json:"outcome"`

	// ExitCode is the process exit status, -1 when the process did not run
	// to completion.
	ExitCode int `json:"exit_code"`

	// Error holds the failure text for non-ok outcomes.
	Error string `json:"error,omitempty"`

	// DurationMS is the wall time the command took.
	DurationMS int64 `json:"duration_ms"`

	// Inputs is the canonical JSON object of the state values the rule
	// referenced when it fired.
	Inputs json.RawMessage `json:"inputs,omitempty"`
}
