package expr

import (
	"fmt"

	"github.com/j-millet/scriptrunner/internal/ir"
)

// Env supplies state to an evaluation.
type Env interface {
	// Lookup returns the current value of a state variable.
	Lookup(name string) (ir.SystemValue, bool)

	// Changed reports whether name is one of the keys that made the rule
	// dirty in the current tick.
	Changed(name string) bool
}

// MapEnv is an Env backed by plain maps.
type MapEnv struct {
	State   ir.Snapshot
	Changes map[string]struct{}
}

// Lookup implements Env.
func (e MapEnv) Lookup(name string) (ir.SystemValue, bool) {
	v, ok := e.State[name]
	return v, ok
}

// Changed implements Env.
func (e MapEnv) Changed(name string) bool {
	_, ok := e.Changes[name]
	return ok
}

// Eval evaluates the expression against env.
func (e *Expression) Eval(env Env) (bool, error) {
	return evalNode(e.Root, env)
}

func evalNode(n Node, env Env) (bool, error) {
	switch v := n.(type) {
	case Comparison:
		return evalComparison(v, env)
	case ChangeMarker:
		return env.Changed(v.Name), nil
	case And:
		left, err := evalNode(v.Left, env)
		if err != nil || !left {
			return false, err
		}
		return evalNode(v.Right, env)
	case Or:
		left, err := evalNode(v.Left, env)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return evalNode(v.Right, env)
	case Not:
		operand, err := evalNode(v.Operand, env)
		if err != nil {
			return false, err
		}
		return !operand, nil
	case VariableRef:
		val, ok := env.Lookup(v.Name)
		if !ok {
			return false, &EvalError{Name: v.Name, Message: "unknown variable"}
		}
		b, ok := val.(ir.Bool)
		if !ok {
			return false, &EvalError{Name: v.Name, Message: fmt.Sprintf("%s value used as a condition", val.Kind())}
		}
		return bool(b), nil
	default:
		return false, &EvalError{Name: fmt.Sprintf("%T", n), Message: "unsupported node"}
	}
}

// evalComparison applies the operator with same-variant semantics. A
// comparison between different variants is false for every operator.
func evalComparison(c Comparison, env Env) (bool, error) {
	val, ok := env.Lookup(c.Var.Name)
	if !ok {
		return false, &EvalError{Name: c.Var.Name, Message: "unknown variable"}
	}
	lit := c.Lit.Value

	if val.Kind() != lit.Kind() {
		return false, nil
	}

	switch c.Op {
	case OpEqual:
		return ir.Equal(val, lit), nil
	case OpNotEqual:
		return !ir.Equal(val, lit), nil
	}

	order, ok := ir.Compare(val, lit)
	if !ok {
		return false, nil
	}
	switch c.Op {
	case OpLessThan:
		return order < 0, nil
	case OpLessEqual:
		return order <= 0, nil
	case OpGreaterThan:
		return order > 0, nil
	case OpGreaterEqual:
		return order >= 0, nil
	default:
		return false, &EvalError{Name: c.Var.Name, Message: fmt.Sprintf("unsupported operator %q", c.Op)}
	}
}
