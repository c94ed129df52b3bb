package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-millet/scriptrunner/internal/compiler"
)

func TestValidate_Success(t *testing.T) {
	path := writeConfig(t, "config", "lid_open == false => echo closed $:lid_open\n")

	out, _, err := execute(t, &RootOptions{}, nil, "validate", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 1 rule(s) valid")
}

func TestValidate_UnknownKey(t *testing.T) {
	path := writeConfig(t, "config", "lid_open == false => echo closed\nbattery_level < 10 => echo low\n")

	out, _, err := execute(t, &RootOptions{}, nil, "validate", "-c", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "validation error(s)")
	assert.Contains(t, out, compiler.ErrUnknownKey)
	assert.Contains(t, out, "battery_level")
}

func TestValidate_JSON(t *testing.T) {
	path := writeConfig(t, "config", "lid_open == true => echo $:nope\n")

	out, _, err := execute(t, &RootOptions{}, nil, "validate", "-c", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, compiler.ErrUnknownPlaceholder, resp.Data.Errors[0].Code)
	assert.Equal(t, compiler.ErrUnknownPlaceholder, resp.Error.Code)
}

func TestValidate_MissingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")

	out, _, err := execute(t, &RootOptions{}, nil, "validate", "-c", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]: Config file '"+path+"' does not exist")
}

func TestValidate_SyntaxError(t *testing.T) {
	path := writeConfig(t, "config", "lid_open == => echo\n")

	out, _, err := execute(t, &RootOptions{}, nil, "validate", "-c", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E008]: line 1:")
}
