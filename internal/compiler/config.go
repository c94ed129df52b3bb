package compiler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/j-millet/scriptrunner/internal/expr"
	"github.com/j-millet/scriptrunner/internal/ir"
)

// Separator divides a rule line into condition and command template.
const Separator = "=>"

// DefaultConfigPath is the configuration file used when none is given.
const DefaultConfigPath = "config"

// Config is a compiled configuration file.
type Config struct {
	// Path is the file the configuration was loaded from.
	Path string

	// Interval overrides the loop interval; zero means the default.
	Interval time.Duration

	// Rules in declaration order.
	Rules []ir.RuleDef
}

// SyntaxError reports a malformed rule line.
type SyntaxError struct {
	Path    string
	Line    int
	Source  string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Unwrap returns the underlying parse error, if any.
func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// LoadConfig reads and compiles the configuration at path. The format is
// chosen by extension: ".cue" files are CUE documents, everything else is
// the line format.
func LoadConfig(path string) (*Config, error) {
	if filepath.Ext(path) == ".cue" {
		return LoadCUE(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config file %q: %w", path, err)
	}
	defer f.Close()

	rules, err := ParseRules(f)
	if err != nil {
		var se *SyntaxError
		if errors.As(err, &se) {
			se.Path = path
		}
		return nil, err
	}
	return &Config{Path: path, Rules: rules}, nil
}

// ParseRules compiles line-format rules. The first malformed line stops
// compilation with a *SyntaxError.
func ParseRules(r io.Reader) ([]ir.RuleDef, error) {
	var rules []ir.RuleDef

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		def, ok, err := parseLine(lineNo, line)
		if err != nil {
			return nil, err
		}
		if ok {
			rules = append(rules, def)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return rules, nil
}

// ParseRulesString is ParseRules over a string.
func ParseRulesString(text string) ([]ir.RuleDef, error) {
	return ParseRules(strings.NewReader(text))
}

// parseLine compiles one line. ok is false for lines that carry no rule.
func parseLine(lineNo int, line string) (def ir.RuleDef, ok bool, err error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return def, false, nil
	}

	switch n := strings.Count(trimmed, Separator); {
	case n == 0:
		return def, false, nil
	case n > 1:
		return def, false, &SyntaxError{
			Line:    lineNo,
			Source:  line,
			Message: fmt.Sprintf("expected one %q, found %d", Separator, n),
		}
	}

	cond, action, _ := strings.Cut(trimmed, Separator)
	cond = strings.TrimSpace(cond)
	action = strings.TrimSpace(action)

	if cond == "" {
		return def, false, &SyntaxError{Line: lineNo, Source: line, Message: "missing condition before " + Separator}
	}
	if action == "" {
		return def, false, &SyntaxError{Line: lineNo, Source: line, Message: "missing command after " + Separator}
	}

	if _, err := expr.Parse(cond); err != nil {
		return def, false, &SyntaxError{
			Line:    lineNo,
			Source:  line,
			Message: fmt.Sprintf("condition: %v", err),
			Err:     err,
		}
	}

	return ir.RuleDef{
		Line:      lineNo,
		Source:    trimmed,
		Condition: cond,
		Action:    action,
	}, true, nil
}
