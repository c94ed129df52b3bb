package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/j-millet/scriptrunner/internal/compiler"
)

// LoadError represents an error that occurred while loading the
// configuration file.
type LoadError struct {
	Code    string
	Message string
	Line    int
	Err     error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.Code, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeSyntax      = "E008" // Malformed rule line
	ErrCodeJournal     = "E009" // Journal cannot be opened or read
)

// LoadConfig loads and compiles the configuration file at path, mapping
// failures to a *LoadError.
func LoadConfig(path string) (*compiler.Config, error) {
	cfg, err := compiler.LoadConfig(path)
	if err == nil {
		return cfg, nil
	}

	var syntaxErr *compiler.SyntaxError
	var compileErr *compiler.CompileError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, &LoadError{
			Code:    ErrCodeNotFound,
			Message: fmt.Sprintf("Config file '%s' does not exist", path),
			Err:     err,
		}
	case errors.As(err, &syntaxErr):
		return nil, &LoadError{
			Code:    ErrCodeSyntax,
			Message: syntaxErr.Message,
			Line:    syntaxErr.Line,
			Err:     err,
		}
	case errors.As(err, &compileErr):
		line := 0
		if compileErr.Pos.IsValid() {
			line = compileErr.Pos.Line()
		}
		return nil, &LoadError{
			Code:    ErrCodeBuildFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Line:    line,
			Err:     err,
		}
	default:
		return nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error(), Err: err}
	}
}

// loadConfigOrExit is LoadConfig for commands: every load failure is a
// command error.
func loadConfigOrExit(path string) (*compiler.Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	return cfg, nil
}
