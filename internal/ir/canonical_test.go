package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"plain string", "x", `"x"`},
		{"int", Int(42), "42"},
		{"negative int", Int(-100), "-100"},
		{"go int", 3, "3"},
		{"tick", uint64(18446744073709551615), "18446744073709551615"},
		{"bool", Bool(true), "true"},
		{"float", Float(0.25), "0.25"},
		{"whole float", 2.0, "2"},
		{"empty array", []any{}, "[]"},
		{"string slice", []string{"a", "b"}, `["a","b"]`},
		{"empty object", map[string]any{}, "{}"},
		{"no html escape", "<&>", `"<&>"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": Int(1),
		"alpha": map[string]any{"b": 1, "a": 2},
		"beta":  []any{Bool(false), String("x")},
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":{"a":2,"b":1},"beta":[false,"x"],"zebra":1}`, string(result))
}

func TestMarshalCanonicalSnapshot(t *testing.T) {
	s := Snapshot{"lid_open": Bool(true), "num_up_interfaces": Int(2)}

	result, err := MarshalCanonical(s)
	require.NoError(t, err)
	assert.Equal(t, `{"lid_open":true,"num_up_interfaces":2}`, string(result))
}

func TestMarshalCanonicalRejects(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err)

	_, err = MarshalCanonical(Float(math.NaN()))
	assert.Error(t, err)

	_, err = MarshalCanonical(map[string]any{"k": nil})
	assert.Error(t, err)

	_, err = MarshalCanonical(struct{}{})
	assert.Error(t, err)
}

func TestCompareKeysRFC8785(t *testing.T) {
	assert.Equal(t, -1, compareKeysRFC8785("a", "b"))
	assert.Equal(t, 1, compareKeysRFC8785("aa", "a"))
	assert.Equal(t, 0, compareKeysRFC8785("", ""))
	assert.Equal(t, -1, compareKeysRFC8785("A", "a"))
}
