package expr

import (
	"fmt"
	"slices"

	"github.com/j-millet/scriptrunner/internal/ir"
)

// Operator is a comparison operator.
type Operator string

const (
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpLessThan     Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreaterThan  Operator = ">"
	OpGreaterEqual Operator = ">="
)

// mirror returns the operator that keeps the comparison true when its
// operands are swapped: 5 < a is a > 5.
func (op Operator) mirror() Operator {
	switch op {
	case OpLessThan:
		return OpGreaterThan
	case OpLessEqual:
		return OpGreaterEqual
	case OpGreaterThan:
		return OpLessThan
	case OpGreaterEqual:
		return OpLessEqual
	default:
		return op
	}
}

// Node is a node of the condition AST.
type Node interface {
	// String renders the node back to condition syntax.
	String() string
	node()
}

// Literal is a constant value.
type Literal struct {
	Value ir.SystemValue
}

// VariableRef names a state variable whose current value is substituted at
// evaluation time.
type VariableRef struct {
	Name string
}

// Comparison compares a variable against a literal. Literal-first source
// text (5 < a) is normalised to variable-first form (a > 5) by the parser.
type Comparison struct {
	Var VariableRef
	Op  Operator
	Lit Literal
}

// And is logical conjunction with short-circuit evaluation.
type And struct {
	Left, Right Node
}

// Or is logical disjunction with short-circuit evaluation.
type Or struct {
	Left, Right Node
}

// Not is logical negation.
type Not struct {
	Operand Node
}

// ChangeMarker ($:name) is true whenever name is one of the keys that made
// the rule dirty in the current tick, whatever its value.
type ChangeMarker struct {
	Name string
}

func (VariableRef) node()  {}
func (Comparison) node()   {}
func (And) node()          {}
func (Or) node()           {}
func (Not) node()          {}
func (ChangeMarker) node() {}

func (l Literal) String() string      { return l.Value.Quoted() }
func (v VariableRef) String() string  { return v.Name }
func (m ChangeMarker) String() string { return markerPrefix + m.Name }

func (c Comparison) String() string {
	return fmt.Sprintf("%s %s %s", c.Var, c.Op, c.Lit)
}

func (a And) String() string {
	return wrap(a.Left, precAnd) + " && " + wrap(a.Right, precAnd)
}

func (o Or) String() string {
	return wrap(o.Left, precOr) + " || " + wrap(o.Right, precOr)
}

func (n Not) String() string {
	return "!" + wrap(n.Operand, precUnary)
}

const (
	precOr = iota
	precAnd
	precUnary
)

func precedence(n Node) int {
	switch n.(type) {
	case Or:
		return precOr
	case And:
		return precAnd
	default:
		return precUnary
	}
}

// wrap parenthesises n when it binds looser than its parent.
func wrap(n Node, parent int) string {
	if precedence(n) < parent {
		return "(" + n.String() + ")"
	}
	return n.String()
}

// Expression is a parsed condition.
type Expression struct {
	// Source is the condition text as written.
	Source string

	// Root is the top of the AST.
	Root Node

	variables []string
}

// String renders the normalised condition.
func (e *Expression) String() string {
	return e.Root.String()
}

// Variables returns the sorted, de-duplicated names referenced by the
// condition through comparisons or change markers.
func (e *Expression) Variables() []string {
	return slices.Clone(e.variables)
}

// collectVariables walks the tree once after parsing.
func collectVariables(root Node) []string {
	seen := make(map[string]struct{})
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case Comparison:
			seen[v.Var.Name] = struct{}{}
		case VariableRef:
			seen[v.Name] = struct{}{}
		case ChangeMarker:
			seen[v.Name] = struct{}{}
		case And:
			walk(v.Left)
			walk(v.Right)
		case Or:
			walk(v.Left)
			walk(v.Right)
		case Not:
			walk(v.Operand)
		}
	}
	walk(root)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// isNameChar reports whether c may appear in a variable name.
func isNameChar(c byte) bool {
	return c == '_' || c == '-' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// isName reports whether s is a valid variable name: a letter or underscore
// followed by letters, digits, '_', '-' or '.'.
func isName(s string) bool {
	if s == "" {
		return false
	}
	first := s[0]
	if !(first == '_' || (first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z')) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isNameChar(s[i]) {
			return false
		}
	}
	return s != "true" && s != "false"
}
