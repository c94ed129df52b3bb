package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/j-millet/scriptrunner/internal/compiler"
	"github.com/j-millet/scriptrunner/internal/engine"
	"github.com/j-millet/scriptrunner/internal/ir"
	"github.com/j-millet/scriptrunner/internal/provider"
	"github.com/j-millet/scriptrunner/internal/store"
	"github.com/j-millet/scriptrunner/internal/testutil"
)

// Harness runs one scenario against the real engine.
type Harness struct {
	store      *store.Store
	engine     *engine.Engine
	dispatcher *testutil.RecordingDispatcher
	logger     *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory journal for isolation. Providers
// are scripted, commands are recorded instead of run, and dispatch ids come
// from a sequence, so two runs of one scenario produce identical traces.
//
// Execution flow:
// 1. Parse the rule set
// 2. Register scripted providers, then rules (the startup observation)
// 3. Step the engine for the scenario's tick count
// 4. Evaluate assertions against the trace, journal and final state
func Run(scenario *Scenario) (*Result, error) {
	defs, err := loadRules(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	providers, err := buildProviders(scenario.Providers)
	if err != nil {
		return nil, fmt.Errorf("failed to build providers: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	result := NewResult()
	rec := testutil.NewRecordingDispatcher()
	for _, cmd := range scenario.FailCommands {
		rec.FailOn(cmd, errors.New("scripted failure"))
	}

	logger := testutil.DiscardLogger()
	eng := engine.New(
		engine.WithDispatcher(rec),
		engine.WithJournal(st),
		engine.WithIDGenerator(engine.NewSequenceGenerator("dispatch")),
		engine.WithLogger(logger),
		engine.WithStepHook(func(report engine.StepReport) {
			result.Trace = append(result.Trace, traceTick(report))
		}),
	)

	h := &Harness{
		store:      st,
		engine:     eng,
		dispatcher: rec,
		logger:     logger,
	}

	ctx := context.Background()
	h.setup(ctx, providers, defs, result)

	for i, n := 0, tickCount(scenario); i < n; i++ {
		eng.Step(ctx)
	}
	result.State = eng.State()

	actx := &AssertionContext{
		Store: st,
		Ctx:   ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}
	return result, nil
}

func (h *Harness) setup(ctx context.Context, providers []provider.Provider, defs []ir.RuleDef, result *Result) {
	for _, err := range h.engine.RegisterProviders(ctx, providers) {
		result.Setup = append(result.Setup, setupError(err))
	}
	for _, err := range h.engine.AddRules(defs) {
		result.Setup = append(result.Setup, setupError(err))
	}
	h.logger.Debug("scenario ready",
		"providers", len(h.engine.Providers()),
		"rules", len(h.engine.Rules()),
	)
}

// setupError summarizes a rejected provider or rule without the
// underlying error text.
func setupError(err error) string {
	var re *engine.RuntimeError
	if !errors.As(err, &re) {
		return err.Error()
	}
	switch {
	case re.Provider != "":
		return fmt.Sprintf("%s provider=%s", re.Code, re.Provider)
	case re.Key != "":
		return fmt.Sprintf("%s rule=%s key=%s", re.Code, re.Rule, re.Key)
	default:
		return fmt.Sprintf("%s rule=%s", re.Code, re.Rule)
	}
}

func loadRules(s *Scenario) ([]ir.RuleDef, error) {
	if s.ConfigFile != "" {
		cfg, err := compiler.LoadConfig(s.ConfigFile)
		if err != nil {
			return nil, err
		}
		return cfg.Rules, nil
	}
	return compiler.ParseRulesString(s.Config)
}

func buildProviders(scripts []ProviderScript) ([]provider.Provider, error) {
	providers := make([]provider.Provider, 0, len(scripts))
	for _, script := range scripts {
		steps := make([]testutil.Step, len(script.Steps))
		for i, step := range script.Steps {
			if step.Error != "" {
				steps[i] = testutil.Step{Err: errors.New(step.Error)}
				continue
			}
			snap, err := step.Snapshot()
			if err != nil {
				return nil, fmt.Errorf("provider %s step %d: %w", script.Name, i, err)
			}
			steps[i] = testutil.Step{Snapshot: snap}
		}
		providers = append(providers, testutil.NewScriptedProviderSteps(script.Name, steps...))
	}
	return providers, nil
}

// tickCount is the explicit tick count, or enough ticks to replay the
// longest provider script.
func tickCount(s *Scenario) int {
	if s.Ticks > 0 {
		return s.Ticks
	}
	n := 0
	for _, p := range s.Providers {
		n = max(n, len(p.Steps)-1)
	}
	return n
}

func traceTick(report engine.StepReport) TickTrace {
	tt := TickTrace{
		Tick:  uint64(report.Tick),
		Dirty: report.Dirty,
	}
	for _, c := range report.Changes {
		tt.Changes = append(tt.Changes, TraceChange{
			Provider: c.Provider,
			Key:      c.Key,
			Old:      c.Old,
			New:      c.New,
		})
	}
	for _, ev := range report.Evaluations {
		if ev.Outcome != "" {
			tt.Dispatched = append(tt.Dispatched, TraceDispatch{
				Rule:    ev.Rule,
				Command: ev.Command,
				Outcome: string(ev.Outcome),
			})
		}
		var re *engine.RuntimeError
		if errors.As(ev.Err, &re) {
			tt.Errors = append(tt.Errors, fmt.Sprintf("rule %d: %s", ev.Rule, re.Code))
		}
	}
	return tt
}
