package cli

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_LineFormat(t *testing.T) {
	path := writeConfig(t, "config", "# rules\nlid_open == false => echo closed\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Rules, 1)
	assert.Equal(t, "echo closed", cfg.Rules[0].Action)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   func(t *testing.T) string
		code   string
		line   int
		errMsg string
	}{
		{
			name:   "missing file",
			path:   func(t *testing.T) string { return filepath.Join(t.TempDir(), "config") },
			code:   ErrCodeNotFound,
			errMsg: "does not exist",
		},
		{
			name: "syntax error",
			path: func(t *testing.T) string {
				return writeConfig(t, "config", "lid_open == true => echo a\na => b => c\n")
			},
			code: ErrCodeSyntax,
			line: 2,
		},
		{
			name: "cue build error",
			path: func(t *testing.T) string {
				return writeConfig(t, "rules.cue", "rules: [{run: \"echo\"}]\n")
			},
			code: ErrCodeBuildFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.path(t))
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr), "got %T: %v", err, err)
			assert.Equal(t, tt.code, loadErr.Code)
			if tt.line > 0 {
				assert.Equal(t, tt.line, loadErr.Line)
			}
			if tt.errMsg != "" {
				assert.Contains(t, loadErr.Message, tt.errMsg)
			}
		})
	}
}

func TestLoadError_Error(t *testing.T) {
	assert.Equal(t, "E008: line 3: bad", (&LoadError{Code: ErrCodeSyntax, Message: "bad", Line: 3}).Error())
	assert.Equal(t, "E005: gone", (&LoadError{Code: ErrCodeNotFound, Message: "gone"}).Error())
}
