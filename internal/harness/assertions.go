package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/j-millet/scriptrunner/internal/ir"
	"github.com/j-millet/scriptrunner/internal/store"
)

// AssertionContext provides what state assertions need beyond the trace.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string      // Assertion type for categorization
	Expected string      // Human-readable expected outcome
	Actual   string      // Human-readable actual outcome
	Trace    []TickTrace // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nDispatches:\n")
		for _, tt := range e.Trace {
			for _, d := range tt.Dispatched {
				fmt.Fprintf(&buf, "  [tick %d] rule %d %s: %s\n", tt.Tick, d.Rule, d.Outcome, d.Command)
			}
		}
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertDispatched:
			err = assertDispatched(result.Trace, a)
		case AssertNotDispatched:
			err = assertNotDispatched(result.Trace, a)
		case AssertDispatchCount:
			err = assertDispatchCount(result.Trace, a)
		case AssertJournalCount:
			err = assertJournalCount(actx, a)
		case AssertFinalState:
			err = assertFinalState(result.State, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

// assertDispatched checks that the command was dispatched, on the given
// tick if one is set.
func assertDispatched(trace []TickTrace, assertion Assertion) error {
	for _, tt := range trace {
		if assertion.Tick != nil && tt.Tick != *assertion.Tick {
			continue
		}
		for _, d := range tt.Dispatched {
			if d.Command == assertion.Command {
				return nil
			}
		}
	}

	expected := fmt.Sprintf("command %q dispatched", assertion.Command)
	if assertion.Tick != nil {
		expected += fmt.Sprintf(" on tick %d", *assertion.Tick)
	}
	return &AssertionError{
		Type:     AssertDispatched,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertNotDispatched checks that the command was never dispatched.
func assertNotDispatched(trace []TickTrace, assertion Assertion) error {
	for _, tt := range trace {
		for _, d := range tt.Dispatched {
			if d.Command == assertion.Command {
				return &AssertionError{
					Type:     AssertNotDispatched,
					Expected: fmt.Sprintf("command %q never dispatched", assertion.Command),
					Actual:   fmt.Sprintf("dispatched on tick %d", tt.Tick),
					Trace:    trace,
				}
			}
		}
	}
	return nil
}

// assertDispatchCount checks the number of dispatch attempts, of one
// command if set.
func assertDispatchCount(trace []TickTrace, assertion Assertion) error {
	count := 0
	for _, tt := range trace {
		for _, d := range tt.Dispatched {
			if assertion.Command == "" || d.Command == assertion.Command {
				count++
			}
		}
	}

	if count != assertion.Count {
		what := "dispatches"
		if assertion.Command != "" {
			what = fmt.Sprintf("dispatches of %q", assertion.Command)
		}
		return &AssertionError{
			Type:     AssertDispatchCount,
			Expected: fmt.Sprintf("%d %s", assertion.Count, what),
			Actual:   fmt.Sprintf("%d %s", count, what),
			Trace:    trace,
		}
	}
	return nil
}

// assertJournalCount checks how many journal rows have the outcome.
func assertJournalCount(actx *AssertionContext, assertion Assertion) error {
	if actx == nil || actx.Store == nil {
		return fmt.Errorf("journal_count assertion requires a store")
	}
	counts, err := actx.Store.CountDispatches(actx.Ctx)
	if err != nil {
		return &AssertionError{
			Type:     AssertJournalCount,
			Expected: "readable journal",
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}

	got := counts[ir.DispatchOutcome(assertion.Outcome)]
	if got != assertion.Count {
		return &AssertionError{
			Type:     AssertJournalCount,
			Expected: fmt.Sprintf("%d journal rows with outcome %s", assertion.Count, assertion.Outcome),
			Actual:   fmt.Sprintf("%d rows", got),
		}
	}
	return nil
}

// assertFinalState checks one key of the state store after the last tick.
// Values match when they have the same variant and are equal.
func assertFinalState(state ir.Snapshot, assertion Assertion) error {
	expected, err := toSystemValue(assertion.Value)
	if err != nil {
		return err
	}

	actual, ok := state[assertion.Key]
	if !ok {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("key %q = %s", assertion.Key, expected.Quoted()),
			Actual:   "key not in state",
		}
	}
	if !ir.Equal(expected, actual) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("key %q = %s (%s)", assertion.Key, expected.Quoted(), expected.Kind()),
			Actual:   fmt.Sprintf("key %q = %s (%s)", assertion.Key, actual.Quoted(), actual.Kind()),
		}
	}
	return nil
}
