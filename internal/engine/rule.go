package engine

import (
	"fmt"

	"github.com/j-millet/scriptrunner/internal/expr"
	"github.com/j-millet/scriptrunner/internal/ir"
)

// Rule is a compiled condition/action pair held in the engine's arena.
type Rule struct {
	// ID is the rule's index in the arena.
	ID int

	// Def is the definition the rule was compiled from.
	Def ir.RuleDef

	Condition *expr.Expression
	Action    *expr.Template

	dependentKeys []string

	lastTick Tick
	notified bool
}

// NewRule compiles def. The dependent keys are the variables and change
// markers referenced by the condition.
func NewRule(id int, def ir.RuleDef) (*Rule, error) {
	cond, err := expr.Parse(def.Condition)
	if err != nil {
		return nil, fmt.Errorf("%s: condition %q: %w", def.Label(), def.Condition, err)
	}
	return &Rule{
		ID:            id,
		Def:           def,
		Condition:     cond,
		Action:        expr.ParseTemplate(def.Action),
		dependentKeys: cond.Variables(),
	}, nil
}

// Label identifies the rule in logs.
func (r *Rule) Label() string {
	return r.Def.Label()
}

// DependentKeys returns the sorted keys the rule's condition depends on.
func (r *Rule) DependentKeys() []string {
	return r.dependentKeys
}

// LastNotified returns the tick of the last evaluation attempt. ok is false
// if the rule has never been evaluated.
func (r *Rule) LastNotified() (tick Tick, ok bool) {
	return r.lastTick, r.notified
}

// notifiedAt reports whether the rule was already evaluated at tick.
func (r *Rule) notifiedAt(tick Tick) bool {
	return r.notified && r.lastTick == tick
}

func (r *Rule) markNotified(tick Tick) {
	r.lastTick = tick
	r.notified = true
}
