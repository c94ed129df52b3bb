package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-millet/scriptrunner/internal/provider"
)

func TestWriteKeys_Golden(t *testing.T) {
	descs := []provider.Description{
		{Provider: "lid", Keys: []provider.KeyInfo{{Key: "lid_open", Kind: "Boolean"}}},
		{Provider: "net", Keys: []provider.KeyInfo{
			{Key: "last_updated_interface", Kind: "String"},
			{Key: "num_up_interfaces", Kind: "Integer"},
		}},
		{Provider: "battery", Error: "no battery"},
		{Provider: "sensors", Keys: []provider.KeyInfo{{Key: "cpu_temp", Kind: "Float"}}},
	}

	buf := &bytes.Buffer{}
	writeKeys(buf, descs)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "keys", buf.Bytes())
}

func TestKeysCommand_Text(t *testing.T) {
	out, _, err := execute(t, &RootOptions{}, nil, "keys")
	require.NoError(t, err)

	assert.Contains(t, out, "Usable Keys\n")
	assert.Contains(t, out, "lid\n---\n  -Boolean : lid_open\n")
	assert.Contains(t, out, "battery\n-------\nModule does not work: no battery\n")
}

func TestRootDisplayKeys(t *testing.T) {
	out, _, err := execute(t, &RootOptions{}, nil, "--display-keys", "-c", "does-not-matter")
	require.NoError(t, err)
	assert.Contains(t, out, "  -Boolean : lid_open\n")
}

func TestKeysCommand_JSON(t *testing.T) {
	out, _, err := execute(t, &RootOptions{}, nil, "keys", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string                 `json:"status"`
		Data   []provider.Description `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "lid", resp.Data[0].Provider)
	assert.Equal(t, []provider.KeyInfo{{Key: "lid_open", Kind: "Boolean"}}, resp.Data[0].Keys)
	assert.Equal(t, "no battery", resp.Data[1].Error)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, &RootOptions{}, nil, "keys", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}
