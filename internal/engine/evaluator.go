package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/j-millet/scriptrunner/internal/dispatch"
	"github.com/j-millet/scriptrunner/internal/expr"
	"github.com/j-millet/scriptrunner/internal/ir"
	"github.com/j-millet/scriptrunner/internal/metrics"
)

// Journal records dispatch attempts. Implemented by *store.Store.
type Journal interface {
	WriteDispatch(ctx context.Context, rec ir.DispatchRecord) error
}

// Evaluation is the outcome of evaluating one dirty rule.
type Evaluation struct {
	Rule int

	// Result is one of metrics.ResultTrue, ResultFalse, ResultError or
	// ResultSkipped.
	Result string

	// Command is the rendered action, set when the condition held.
	Command string

	// Outcome is set when a dispatch was attempted.
	Outcome ir.DispatchOutcome

	// Err is the *RuntimeError behind an error result or failed dispatch.
	Err error
}

// Evaluator evaluates dirty rules against the state store and dispatches
// their actions.
type Evaluator struct {
	store      *StateStore
	dispatcher dispatch.Dispatcher
	journal    Journal
	ids        IDGenerator
	logger     *slog.Logger
	metrics    *metrics.Collector
}

// ruleEnv resolves variables from the store and change markers from the
// keys that dirtied the rule.
type ruleEnv struct {
	store   *StateStore
	changed map[string]struct{}
}

func (e ruleEnv) Lookup(name string) (ir.SystemValue, bool) {
	return e.store.Get(name)
}

func (e ruleEnv) Changed(name string) bool {
	_, ok := e.changed[name]
	return ok
}

// Evaluate runs every dirty rule in arena order.
func (ev *Evaluator) Evaluate(ctx context.Context, tick Tick, rules []*Rule, dirty DirtySet) []Evaluation {
	out := make([]Evaluation, 0, len(dirty))
	for _, id := range dirty.Rules() {
		out = append(out, ev.EvaluateRule(ctx, tick, rules[id], dirty.Keys(id)))
	}
	return out
}

// EvaluateRule evaluates r at tick, given the keys that made it dirty. A
// rule already evaluated at tick is skipped. Whatever the result, r is
// marked as notified at tick.
func (ev *Evaluator) EvaluateRule(ctx context.Context, tick Tick, r *Rule, changed map[string]struct{}) Evaluation {
	res := Evaluation{Rule: r.ID}
	if r.notifiedAt(tick) {
		res.Result = metrics.ResultSkipped
		ev.metrics.RecordEvaluation(res.Result)
		return res
	}
	defer r.markNotified(tick)

	env := ruleEnv{store: ev.store, changed: changed}
	ok, err := r.Condition.Eval(env)
	if err != nil {
		res.Result = metrics.ResultError
		res.Err = NewEvaluationError(r.Label(), err)
		ev.metrics.RecordEvaluation(res.Result)
		ev.logger.Warn("rule evaluation failed",
			"rule", r.Label(),
			"tick", uint64(tick),
			"error", err,
		)
		return res
	}
	if !ok {
		res.Result = metrics.ResultFalse
		ev.metrics.RecordEvaluation(res.Result)
		return res
	}
	res.Result = metrics.ResultTrue
	ev.metrics.RecordEvaluation(res.Result)

	rec := ir.DispatchRecord{
		ID:     ev.ids.Generate(),
		Tick:   uint64(tick),
		RuleID: r.ID,
		Rule:   r.Def.Source,
		Inputs: ev.inputs(r),
	}

	command, err := r.Action.Render(env)
	if err != nil {
		var missing *expr.MissingVariableError
		key := ""
		if errors.As(err, &missing) {
			key = missing.Name
		}
		res.Outcome = ir.OutcomeMissingVariable
		res.Err = NewMissingVariableError(r.Label(), key, err)
		ev.logger.Warn("action not dispatched",
			"rule", r.Label(),
			"tick", uint64(tick),
			"key", key,
		)

		rec.Command = r.Action.Source
		rec.Outcome = res.Outcome
		rec.ExitCode = -1
		rec.Error = err.Error()
		ev.record(ctx, rec, dispatch.Result{})
		return res
	}
	res.Command = command
	rec.Command = command

	result, err := ev.dispatcher.Dispatch(ctx, dispatch.Command{ID: rec.ID, Tick: uint64(tick), Text: command})
	rec.ExitCode = result.ExitCode
	rec.DurationMS = result.Duration.Milliseconds()
	if err != nil {
		res.Outcome = ir.OutcomeFailed
		res.Err = NewDispatchError(r.Label(), err)
		rec.Error = err.Error()
		ev.logger.Warn("dispatch failed",
			"rule", r.Label(),
			"tick", uint64(tick),
			"command", command,
			"error", err,
		)
	} else {
		res.Outcome = ir.OutcomeOK
		ev.logger.Info("dispatched",
			"rule", r.Label(),
			"tick", uint64(tick),
			"command", command,
		)
	}
	rec.Outcome = res.Outcome
	ev.record(ctx, rec, result)
	return res
}

// inputs captures the stored values of every key r references, in its
// condition or its action, as canonical JSON.
func (ev *Evaluator) inputs(r *Rule) []byte {
	snap := make(ir.Snapshot)
	for _, keys := range [][]string{r.DependentKeys(), r.Action.Placeholders()} {
		for _, k := range keys {
			if v, ok := ev.store.Get(k); ok {
				snap[k] = v
			}
		}
	}
	data, err := ir.MarshalCanonical(snap)
	if err != nil {
		ev.logger.Debug("inputs not recorded", "rule", r.Label(), "error", err)
		return nil
	}
	return data
}

func (ev *Evaluator) record(ctx context.Context, rec ir.DispatchRecord, result dispatch.Result) {
	ev.metrics.RecordDispatch(string(rec.Outcome), result.Duration)
	if ev.journal == nil {
		return
	}
	// A dispatch interrupted by shutdown is still recorded.
	if err := ev.journal.WriteDispatch(context.WithoutCancel(ctx), rec); err != nil {
		ev.logger.Error("journal write failed",
			"dispatch_id", rec.ID,
			"error", err,
		)
	}
}
