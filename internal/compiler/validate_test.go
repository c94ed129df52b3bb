package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/j-millet/scriptrunner/internal/ir"
)

var knownKeys = []string{"lid_open", "num_up_interfaces", "last_updated_interface"}

func TestValidate_OK(t *testing.T) {
	errs := Validate([]ir.RuleDef{
		{Line: 1, Condition: "lid_open == false", Action: "notify-lock"},
		{Line: 2, Condition: "$:last_updated_interface", Action: "notify $:last_updated_interface"},
	}, knownKeys)
	assert.Empty(t, errs)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		rules []ir.RuleDef
		codes []string
	}{
		{
			name:  "no rules",
			rules: nil,
			codes: []string{ErrNoRules},
		},
		{
			name:  "unknown condition key",
			rules: []ir.RuleDef{{Line: 1, Condition: "battery < 10", Action: "x"}},
			codes: []string{ErrUnknownKey},
		},
		{
			name:  "unknown placeholder",
			rules: []ir.RuleDef{{Line: 1, Condition: "lid_open == true", Action: "echo $:battery"}},
			codes: []string{ErrUnknownPlaceholder},
		},
		{
			name:  "invalid condition",
			rules: []ir.RuleDef{{Line: 1, Condition: "lid_open =", Action: "x"}},
			codes: []string{ErrInvalidCondition},
		},
		{
			name: "duplicate",
			rules: []ir.RuleDef{
				{Line: 1, Condition: "lid_open == true", Action: "x"},
				{Line: 2, Condition: "lid_open == true", Action: "x"},
			},
			codes: []string{ErrDuplicateRule},
		},
		{
			name: "collects everything",
			rules: []ir.RuleDef{
				{Line: 1, Condition: "a == 1 && b == 2", Action: "echo $:c"},
			},
			codes: []string{ErrUnknownKey, ErrUnknownKey, ErrUnknownPlaceholder},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.rules, knownKeys)
			var codes []string
			for _, e := range errs {
				codes = append(codes, e.Code)
			}
			assert.Equal(t, tt.codes, codes)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	e := ValidationError{Field: "rules[0].condition", Message: `no provider supplies "x"`, Code: ErrUnknownKey, Line: 3}
	assert.Equal(t, `[E102] line 3: rules[0].condition: no provider supplies "x"`, e.Error())

	e.Line = 0
	assert.Equal(t, `[E102] rules[0].condition: no provider supplies "x"`, e.Error())
}
