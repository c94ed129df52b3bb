package expr

import "fmt"

// ParseError reports malformed condition text.
type ParseError struct {
	// Column is the 1-based byte column where the problem was detected.
	Column int

	// Message describes the problem.
	Message string

	// Source is the full condition text.
	Source string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("column %d: %s", e.Column, e.Message)
}

// EvalError reports a condition that could not be evaluated against the
// current state.
type EvalError struct {
	// Name is the variable involved.
	Name string

	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// MissingVariableError reports an action template placeholder whose key is
// not present in the state.
type MissingVariableError struct {
	Name string
}

// Error implements the error interface.
func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("%s: no such key", e.Name)
}
