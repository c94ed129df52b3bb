package compiler

import (
	"fmt"
	"slices"

	"github.com/j-millet/scriptrunner/internal/expr"
	"github.com/j-millet/scriptrunner/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrNoRules            = "E100" // configuration contains no rules
	ErrInvalidCondition   = "E101" // condition does not parse
	ErrUnknownKey         = "E102" // condition depends on a key no provider supplies
	ErrUnknownPlaceholder = "E103" // action placeholder no provider supplies
	ErrDuplicateRule      = "E104" // identical condition and action declared twice
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks rules against the key universe. It returns every problem
// found rather than stopping at the first.
//
// Unknown condition keys would make the engine reject the rule. Unknown
// placeholders would make every dispatch of the rule fail with a missing
// variable.
func Validate(rules []ir.RuleDef, keys []string) []ValidationError {
	var errs []ValidationError

	if len(rules) == 0 {
		return []ValidationError{{
			Field:   "rules",
			Message: "configuration contains no rules",
			Code:    ErrNoRules,
		}}
	}

	type ruleKey struct{ cond, action string }
	seen := make(map[ruleKey]int)

	for i, def := range rules {
		field := fmt.Sprintf("rules[%d]", i)

		if first, dup := seen[ruleKey{def.Condition, def.Action}]; dup {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate of rules[%d]", first),
				Code:    ErrDuplicateRule,
				Line:    def.Line,
			})
		} else {
			seen[ruleKey{def.Condition, def.Action}] = i
		}

		cond, err := expr.Parse(def.Condition)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".condition",
				Message: err.Error(),
				Code:    ErrInvalidCondition,
				Line:    def.Line,
			})
			continue
		}

		for _, k := range cond.Variables() {
			if !slices.Contains(keys, k) {
				errs = append(errs, ValidationError{
					Field:   field + ".condition",
					Message: fmt.Sprintf("no provider supplies %q", k),
					Code:    ErrUnknownKey,
					Line:    def.Line,
				})
			}
		}
		for _, k := range expr.ParseTemplate(def.Action).Placeholders() {
			if !slices.Contains(keys, k) {
				errs = append(errs, ValidationError{
					Field:   field + ".action",
					Message: fmt.Sprintf("no provider supplies placeholder %q", k),
					Code:    ErrUnknownPlaceholder,
					Line:    def.Line,
				})
			}
		}
	}

	return errs
}
