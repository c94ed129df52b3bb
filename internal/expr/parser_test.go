package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-millet/scriptrunner/internal/ir"
)

func TestParse_Comparison(t *testing.T) {
	e, err := Parse(`a > 5`)
	require.NoError(t, err)

	assert.Equal(t, Comparison{
		Var: VariableRef{Name: "a"},
		Op:  OpGreaterThan,
		Lit: Literal{Value: ir.Int(5)},
	}, e.Root)
	assert.Equal(t, []string{"a"}, e.Variables())
}

func TestParse_LiteralKinds(t *testing.T) {
	tests := []struct {
		src  string
		want ir.SystemValue
	}{
		{`x == 42`, ir.Int(42)},
		{`x == -3`, ir.Int(-3)},
		{`x == 0.5`, ir.Float(0.5)},
		{`x == 1e3`, ir.Float(1000)},
		{`x == true`, ir.Bool(true)},
		{`x == false`, ir.Bool(false)},
		{`x == "quoted value"`, ir.String("quoted value")},
		{`x == "42"`, ir.String("42")},
		{`x == HDMI-1`, ir.String("HDMI-1")},
		{`x == DP-1.2`, ir.String("DP-1.2")},
		{`ssid == café`, ir.String("café")},
		{`x == inf`, ir.String("inf")},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := Parse(tt.src)
			require.NoError(t, err)
			cmp, ok := e.Root.(Comparison)
			require.True(t, ok)
			assert.Equal(t, tt.want, cmp.Lit.Value)
		})
	}
}

func TestParse_LiteralFirstIsMirrored(t *testing.T) {
	tests := []struct {
		src  string
		want Operator
	}{
		{`5 < a`, OpGreaterThan},
		{`5 <= a`, OpGreaterEqual},
		{`5 > a`, OpLessThan},
		{`5 >= a`, OpLessEqual},
		{`5 == a`, OpEqual},
		{`"x" != a`, OpNotEqual},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := Parse(tt.src)
			require.NoError(t, err)
			cmp := e.Root.(Comparison)
			assert.Equal(t, "a", cmp.Var.Name)
			assert.Equal(t, tt.want, cmp.Op)
		})
	}
}

func TestParse_Precedence(t *testing.T) {
	e, err := Parse(`a == 1 || b == 2 && !c == 3`)
	require.NoError(t, err)

	or, ok := e.Root.(Or)
	require.True(t, ok, "|| binds loosest")
	and, ok := or.Right.(And)
	require.True(t, ok, "&& binds tighter than ||")
	_, ok = and.Right.(Not)
	assert.True(t, ok, "! binds tightest")
}

func TestParse_Parentheses(t *testing.T) {
	e, err := Parse(`(a == 1 || b == 2) && c == 3`)
	require.NoError(t, err)

	and, ok := e.Root.(And)
	require.True(t, ok)
	_, ok = and.Left.(Or)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, e.Variables())
}

func TestParse_ChangeMarker(t *testing.T) {
	e, err := Parse(`$:lid_open && lid_open == false`)
	require.NoError(t, err)

	and := e.Root.(And)
	assert.Equal(t, ChangeMarker{Name: "lid_open"}, and.Left)
	assert.Equal(t, []string{"lid_open"}, e.Variables())
}

func TestParse_NamesWithDashes(t *testing.T) {
	e, err := Parse(`HDMI-1_connected == true && $:eDP-1_connected`)
	require.NoError(t, err)
	assert.Equal(t, []string{"HDMI-1_connected", "eDP-1_connected"}, e.Variables())
}

func TestParse_DottedNames(t *testing.T) {
	e, err := Parse(`DP-1.2_connected == true && $:DP-1.1_connected`)
	require.NoError(t, err)
	assert.Equal(t, []string{"DP-1.1_connected", "DP-1.2_connected"}, e.Variables())

	and := e.Root.(And)
	assert.Equal(t, VariableRef{Name: "DP-1.2_connected"}, and.Left.(Comparison).Var)
}

func TestParse_BareVariable(t *testing.T) {
	e, err := Parse(`!lid_open && (on_ac || battery_level < 10)`)
	require.NoError(t, err)

	and := e.Root.(And)
	assert.Equal(t, Not{Operand: VariableRef{Name: "lid_open"}}, and.Left)
	assert.Equal(t, []string{"battery_level", "lid_open", "on_ac"}, e.Variables())
	assert.Equal(t, "!lid_open && (on_ac || battery_level < 10)", e.String())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		column int
	}{
		{"empty", "", 1},
		{"blank", "   ", 1},
		{"single equals", "a = 1", 3},
		{"single ampersand", "a == 1 & b == 2", 8},
		{"missing operator", "5", 2},
		{"bare string", `"x"`, 4},
		{"non-ascii name", "café == 1", 1},
		{"missing value", "a ==", 5},
		{"two literals", `"x" == 5`, 1},
		{"unbalanced paren", "(a == 1", 8},
		{"trailing token", "a == 1 b", 8},
		{"empty marker", "$: && a == 1", 1},
		{"unterminated string", `a == "x`, 6},
		{"bad character", "a == 1 ; b", 8},
		{"dangling and", "a == 1 &&", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			require.Error(t, err)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.column, pe.Column)
			assert.Equal(t, tt.src, pe.Source)
		})
	}
}

func TestExpression_String(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`a>5&&b=="x"`, `a > 5 && b == "x"`},
		{`(a==1||b==2)&&c==3`, `(a == 1 || b == 2) && c == 3`},
		{`!(a==1&&b==2)`, `!(a == 1 && b == 2)`},
		{`5<a`, `a > 5`},
		{`$:x||x==bare`, `$:x || x == "bare"`},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParse(tt.src).String())
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("a ==") })
}

func TestParseLiteral(t *testing.T) {
	assert.Equal(t, ir.Int(7), ParseLiteral("7"))
	assert.Equal(t, ir.Float(7.5), ParseLiteral("7.5"))
	assert.Equal(t, ir.Bool(true), ParseLiteral("true"))
	assert.Equal(t, ir.String("True"), ParseLiteral("True"))
	assert.Equal(t, ir.String("NaN"), ParseLiteral("NaN"))
}
