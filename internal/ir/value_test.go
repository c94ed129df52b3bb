package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemValueSealed(t *testing.T) {
	var _ SystemValue = String("x")
	var _ SystemValue = Bool(true)
	var _ SystemValue = Int(1)
	var _ SystemValue = Float(1.5)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "String", KindString.String())
	assert.Equal(t, "Boolean", KindBool.String())
	assert.Equal(t, "Integer", KindInt.String())
	assert.Equal(t, "Float", KindFloat.String())
	assert.Equal(t, "Unknown", Kind(99).String())
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		name   string
		value  SystemValue
		lit    string
		quoted string
	}{
		{"string", String("eth0"), "eth0", `"eth0"`},
		{"string with quote", String(`a"b`), `a"b`, `"a\"b"`},
		{"bool true", Bool(true), "true", "true"},
		{"bool false", Bool(false), "false", "false"},
		{"int", Int(-42), "-42", "-42"},
		{"whole float", Float(1.0), "1", "1"},
		{"fraction", Float(0.5), "0.5", "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.lit, tt.value.Literal())
			assert.Equal(t, tt.quoted, tt.value.Quoted())
		})
	}
}

func TestNewStringNormalizesNFC(t *testing.T) {
	// "é" as e + combining acute accent vs precomposed U+00E9
	decomposed := NewString("e\u0301")
	precomposed := NewString("\u00e9")

	assert.True(t, Equal(decomposed, precomposed))
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b SystemValue
		want bool
	}{
		{"same string", String("a"), String("a"), true},
		{"different string", String("a"), String("b"), false},
		{"same bool", Bool(true), Bool(true), true},
		{"same int", Int(7), Int(7), true},
		{"same float", Float(0.5), Float(0.5), true},
		{"int vs float", Int(1), Float(1), false},
		{"string vs bool", String("true"), Bool(true), false},
		{"nil", nil, Int(1), false},
		{"both nil", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name    string
		a, b    SystemValue
		want    int
		ordered bool
	}{
		{"int less", Int(3), Int(5), -1, true},
		{"int greater", Int(7), Int(5), 1, true},
		{"int equal", Int(5), Int(5), 0, true},
		{"float less", Float(0.1), Float(0.2), -1, true},
		{"string order", String("a"), String("b"), -1, true},
		{"false before true", Bool(false), Bool(true), -1, true},
		{"cross variant", Int(1), Float(2), 0, false},
		{"nan", Float(math.NaN()), Float(1), 0, false},
		{"nil", nil, Int(1), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Compare(tt.a, tt.b)
			assert.Equal(t, tt.ordered, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSnapshotSortedKeysAndClone(t *testing.T) {
	s := Snapshot{"b": Int(1), "a": Bool(true), "c": String("x")}

	assert.Equal(t, []string{"a", "b", "c"}, s.SortedKeys())

	c := s.Clone()
	c["a"] = Bool(false)
	assert.Equal(t, Bool(true), s["a"])
}
