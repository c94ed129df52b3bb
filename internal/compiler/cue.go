package compiler

import (
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/j-millet/scriptrunner/internal/expr"
	"github.com/j-millet/scriptrunner/internal/ir"
)

// CompileError represents a CUE compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadCUE reads and compiles a CUE configuration document.
func LoadCUE(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file %q: %w", path, err)
	}

	v := cuecontext.New().CompileBytes(data, cue.Filename(path))
	cfg, err := CompileCUE(v)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// CompileCUE compiles a CUE value of the form
//
//	interval?: string // Go duration
//	rules: [...{when: string, run: string}]
func CompileCUE(v cue.Value) (*Config, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	cfg := &Config{}

	intervalVal := v.LookupPath(cue.ParsePath("interval"))
	if intervalVal.Exists() {
		s, err := intervalVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return nil, &CompileError{
				Field:   "interval",
				Message: fmt.Sprintf("invalid duration %q", s),
				Pos:     intervalVal.Pos(),
			}
		}
		cfg.Interval = d
	}

	rulesVal := v.LookupPath(cue.ParsePath("rules"))
	if !rulesVal.Exists() {
		return nil, &CompileError{
			Field:   "rules",
			Message: "rules is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := rulesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for i := 0; iter.Next(); i++ {
		def, err := compileCUERule(i, iter.Value())
		if err != nil {
			return nil, err
		}
		cfg.Rules = append(cfg.Rules, def)
	}

	return cfg, nil
}

func compileCUERule(i int, v cue.Value) (ir.RuleDef, error) {
	field := fmt.Sprintf("rules[%d]", i)

	when, err := requiredString(v, field, "when")
	if err != nil {
		return ir.RuleDef{}, err
	}
	run, err := requiredString(v, field, "run")
	if err != nil {
		return ir.RuleDef{}, err
	}

	if _, err := expr.Parse(when); err != nil {
		return ir.RuleDef{}, &CompileError{
			Field:   field + ".when",
			Message: err.Error(),
			Pos:     v.LookupPath(cue.ParsePath("when")).Pos(),
		}
	}

	return ir.RuleDef{
		Line:      v.Pos().Line(),
		Source:    when + " " + Separator + " " + run,
		Condition: when,
		Action:    run,
	}, nil
}

func requiredString(v cue.Value, field, name string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(name))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   field + "." + name,
			Message: name + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	if s == "" {
		return "", &CompileError{
			Field:   field + "." + name,
			Message: name + " must not be empty",
			Pos:     fv.Pos(),
		}
	}
	return s, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
