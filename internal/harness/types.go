package harness

import "github.com/j-millet/scriptrunner/internal/ir"

// TickTrace records one loop iteration.
type TickTrace struct {
	Tick       uint64          `json:"tick"`
	Changes    []TraceChange   `json:"changes,omitempty"`
	Dirty      []int           `json:"dirty,omitempty"`
	Dispatched []TraceDispatch `json:"dispatched,omitempty"`
	Errors     []string        `json:"errors,omitempty"`
}

// TraceChange is one state change observed during a tick.
type TraceChange struct {
	Provider string         `json:"provider"`
	Key      string         `json:"key"`
	Old      ir.SystemValue `json:"old,omitempty"`
	New      ir.SystemValue `json:"new"`
}

// TraceDispatch is one dispatch attempt.
type TraceDispatch struct {
	Rule    int    `json:"rule"`
	Command string `json:"command"`
	Outcome string `json:"outcome"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion holds.
	Pass bool `json:"pass"`

	// Setup lists the providers and rules rejected at startup.
	Setup []string `json:"setup,omitempty"`

	// Trace contains one entry per tick, in order.
	Trace []TickTrace `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the state store after the last tick.
	State ir.Snapshot `json:"state,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TickTrace{},
		Errors: []string{},
		State:  make(ir.Snapshot),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Dispatches returns every dispatch attempt with its tick, in order.
func (r *Result) Dispatches() []TickDispatch {
	var out []TickDispatch
	for _, tt := range r.Trace {
		for _, d := range tt.Dispatched {
			out = append(out, TickDispatch{Tick: tt.Tick, TraceDispatch: d})
		}
	}
	return out
}

// TickDispatch is a dispatch attempt with the tick it happened on.
type TickDispatch struct {
	Tick uint64
	TraceDispatch
}
