package engine

import (
	"errors"
	"fmt"
)

// RuntimeError is an error detected while registering or running rules and
// providers. None of them stop the driver loop; they are logged and isolated
// to the rule or provider named in the error.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Rule labels the affected rule, if any.
	Rule string

	// Key is the state key involved, if any.
	Key string

	// Provider names the affected provider, if any.
	Provider string

	// Err is the underlying cause.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownVariable indicates a rule depends on a key no provider
	// supplies. The rule is rejected.
	ErrCodeUnknownVariable RuntimeErrorCode = "UNKNOWN_VARIABLE"

	// ErrCodeProviderUnavailable indicates a provider's first snapshot
	// failed. The provider is excluded.
	ErrCodeProviderUnavailable RuntimeErrorCode = "PROVIDER_UNAVAILABLE"

	// ErrCodeEvaluationFailed indicates a condition could not be evaluated.
	ErrCodeEvaluationFailed RuntimeErrorCode = "EVALUATION_FAILED"

	// ErrCodeMissingVariable indicates an action placeholder has no value.
	ErrCodeMissingVariable RuntimeErrorCode = "MISSING_VARIABLE"

	// ErrCodeDispatchFailed indicates a command failed to start or exited
	// non-zero.
	ErrCodeDispatchFailed RuntimeErrorCode = "DISPATCH_FAILED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	switch {
	case e.Rule != "" && e.Key != "":
		msg += fmt.Sprintf(" (rule=%s, key=%s)", e.Rule, e.Key)
	case e.Rule != "":
		msg += fmt.Sprintf(" (rule=%s)", e.Rule)
	case e.Provider != "":
		msg += fmt.Sprintf(" (provider=%s)", e.Provider)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsUnknownVariable reports whether err is an UNKNOWN_VARIABLE error.
func IsUnknownVariable(err error) bool { return hasCode(err, ErrCodeUnknownVariable) }

// IsProviderUnavailable reports whether err is a PROVIDER_UNAVAILABLE error.
func IsProviderUnavailable(err error) bool { return hasCode(err, ErrCodeProviderUnavailable) }

// IsEvaluationFailed reports whether err is an EVALUATION_FAILED error.
func IsEvaluationFailed(err error) bool { return hasCode(err, ErrCodeEvaluationFailed) }

// IsMissingVariable reports whether err is a MISSING_VARIABLE error.
func IsMissingVariable(err error) bool { return hasCode(err, ErrCodeMissingVariable) }

// IsDispatchFailed reports whether err is a DISPATCH_FAILED error.
func IsDispatchFailed(err error) bool { return hasCode(err, ErrCodeDispatchFailed) }

// NewUnknownVariableError creates a RuntimeError for a rule whose dependent
// key is not in the key universe.
func NewUnknownVariableError(rule, key string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnknownVariable,
		Message: fmt.Sprintf("no provider supplies %q", key),
		Rule:    rule,
		Key:     key,
	}
}

// NewProviderUnavailableError creates a RuntimeError for a provider whose
// first snapshot failed.
func NewProviderUnavailableError(provider string, err error) *RuntimeError {
	return &RuntimeError{
		Code:     ErrCodeProviderUnavailable,
		Message:  "first snapshot failed",
		Provider: provider,
		Err:      err,
	}
}

// NewEvaluationError creates a RuntimeError for a failed condition.
func NewEvaluationError(rule string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeEvaluationFailed,
		Message: "condition could not be evaluated",
		Rule:    rule,
		Err:     err,
	}
}

// NewMissingVariableError creates a RuntimeError for an action placeholder
// without a value.
func NewMissingVariableError(rule, key string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeMissingVariable,
		Message: "action not dispatched",
		Rule:    rule,
		Key:     key,
		Err:     err,
	}
}

// NewDispatchError creates a RuntimeError for a failed command.
func NewDispatchError(rule string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeDispatchFailed,
		Message: "command failed",
		Rule:    rule,
		Err:     err,
	}
}
