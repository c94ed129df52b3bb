package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/j-millet/scriptrunner/internal/dispatch"
	"github.com/j-millet/scriptrunner/internal/ir"
	"github.com/j-millet/scriptrunner/internal/metrics"
	"github.com/j-millet/scriptrunner/internal/provider"
)

// DefaultInterval is the pause between loop iterations.
const DefaultInterval = 500 * time.Millisecond

// Engine is the driver loop. It owns the tick clock, the provider set, the
// state store, the subscription index and the rule arena.
//
// Setup (AddProvider, AddRule) and the loop (Step, Run) must happen on one
// goroutine. Nothing inside the engine is shared with other goroutines
// except the clock, which may be read concurrently.
//
// INVARIANTS:
//   - the key universe is fixed by provider registration; later snapshot keys
//     outside it are ignored
//   - rules never move in the arena, the index stores their positions
//   - a rule is evaluated at most once per tick
type Engine struct {
	clock    *Clock
	interval time.Duration

	providers []provider.Provider
	store     *StateStore
	index     *SubscriptionIndex
	rules     []*Rule

	dispatcher dispatch.Dispatcher
	journal    Journal
	ids        IDGenerator
	metrics    *metrics.Collector
	textfile   string
	logger     *slog.Logger
	onStep     func(StepReport)

	detector  *ChangeDetector
	evaluator *Evaluator
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithInterval sets the pause between ticks. Default: DefaultInterval.
func WithInterval(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.interval = d
	}
}

// WithDispatcher replaces the default bash dispatcher.
func WithDispatcher(d dispatch.Dispatcher) EngineOption {
	return func(e *Engine) {
		e.dispatcher = d
	}
}

// WithJournal records every dispatch attempt to j.
func WithJournal(j Journal) EngineOption {
	return func(e *Engine) {
		e.journal = j
	}
}

// WithMetrics records engine activity on c.
func WithMetrics(c *metrics.Collector) EngineOption {
	return func(e *Engine) {
		e.metrics = c
	}
}

// WithMetricsTextfile rewrites the metrics textfile at path after every
// tick. It has no effect without WithMetrics.
func WithMetricsTextfile(path string) EngineOption {
	return func(e *Engine) {
		e.textfile = path
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithIDGenerator sets the dispatch id generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) EngineOption {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithClock positions the loop on a pre-configured clock. The clock's
// current tick is the startup tick.
func WithClock(c *Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithStepHook calls fn with the report of every completed Step.
func WithStepHook(fn func(StepReport)) EngineOption {
	return func(e *Engine) {
		e.onStep = fn
	}
}

// New creates an engine with no providers and no rules.
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		clock:    NewClockAt(StartTick),
		interval: DefaultInterval,
		store:    NewStateStore(),
		index:    NewSubscriptionIndex(),
		ids:      UUIDv7Generator{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.dispatcher == nil {
		e.dispatcher = dispatch.NewShell(dispatch.WithLogger(e.logger))
	}

	e.detector = NewChangeDetector(e.store, e.index, e.logger, e.metrics)
	e.evaluator = &Evaluator{
		store:      e.store,
		dispatcher: e.dispatcher,
		journal:    e.journal,
		ids:        e.ids,
		logger:     e.logger,
		metrics:    e.metrics,
	}
	return e
}

// AddProvider takes p's first snapshot. Its keys join the key universe and
// its values seed the state store without making any rule dirty, so the
// startup observation never triggers actions. If the snapshot fails, p is
// not added and a PROVIDER_UNAVAILABLE error is returned.
//
// Keys already owned by an earlier provider stay with that provider.
func (e *Engine) AddProvider(ctx context.Context, p provider.Provider) error {
	snap, err := p.Snapshot(ctx)
	if err != nil {
		return NewProviderUnavailableError(p.Name(), err)
	}

	for _, key := range e.index.Claim(p.Name(), snap.SortedKeys()) {
		owner, _ := e.index.Owner(key)
		e.logger.Warn("key supplied by more than one provider",
			"key", key,
			"provider", p.Name(),
			"owner", owner,
		)
	}
	e.detector.Apply(p.Name(), snap, nil)
	e.providers = append(e.providers, p)
	e.metrics.SetStateKeys(e.store.Len())

	e.logger.Debug("provider registered",
		"provider", p.Name(),
		"keys", len(snap),
	)
	return nil
}

// RegisterProviders adds every provider, logging and skipping the ones
// that are unavailable. The returned errors describe the skipped ones.
func (e *Engine) RegisterProviders(ctx context.Context, providers []provider.Provider) []error {
	var errs []error
	for _, p := range providers {
		if err := e.AddProvider(ctx, p); err != nil {
			e.logger.Warn("provider unavailable",
				"provider", p.Name(),
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errs
}

// AddRule compiles def into the arena and subscribes it to its dependent
// keys. A condition that does not parse is returned as is; a dependent key
// outside the key universe rejects the rule with UNKNOWN_VARIABLE and the
// rule is never indexed. Providers must be registered first.
func (e *Engine) AddRule(def ir.RuleDef) (*Rule, error) {
	r, err := NewRule(len(e.rules), def)
	if err != nil {
		return nil, err
	}
	if key, ok := e.index.Subscribe(r.ID, r.DependentKeys()); !ok {
		return nil, NewUnknownVariableError(r.Label(), key)
	}
	e.rules = append(e.rules, r)

	e.logger.Debug("rule registered",
		"rule", r.Label(),
		"keys", r.DependentKeys(),
	)
	return r, nil
}

// AddRules adds every definition, logging and skipping rejected rules. The
// returned errors describe the rejected ones.
func (e *Engine) AddRules(defs []ir.RuleDef) []error {
	var errs []error
	for _, def := range defs {
		if _, err := e.AddRule(def); err != nil {
			e.logger.Warn("rule rejected",
				"rule", def.Label(),
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errs
}

// Tick returns the current tick.
func (e *Engine) Tick() Tick {
	return e.clock.Current()
}

// Keys returns the key universe in sorted order.
func (e *Engine) Keys() []string {
	return e.index.Keys()
}

// State returns a copy of the state store.
func (e *Engine) State() ir.Snapshot {
	return e.store.Snapshot()
}

// Rules returns the rule arena in declaration order.
func (e *Engine) Rules() []*Rule {
	return e.rules
}

// Providers returns the registered providers.
func (e *Engine) Providers() []provider.Provider {
	return e.providers
}

// StepReport describes one tick.
type StepReport struct {
	Tick        Tick
	Changes     []Change
	Dirty       []int
	Evaluations []Evaluation
}

// Step advances the clock and runs one tick: detect changes, then evaluate
// every dirty rule.
func (e *Engine) Step(ctx context.Context) StepReport {
	tick := e.clock.Advance()

	changes, dirty := e.detector.Detect(ctx, tick, e.providers)
	report := StepReport{
		Tick:        tick,
		Changes:     changes,
		Dirty:       dirty.Rules(),
		Evaluations: e.evaluator.Evaluate(ctx, tick, e.rules, dirty),
	}

	e.metrics.RecordTick()
	if e.textfile != "" {
		if err := e.metrics.WriteTextfile(e.textfile); err != nil {
			e.logger.Warn("metrics export failed", "error", err)
		}
	}

	if len(changes) > 0 {
		e.logger.Debug("tick",
			"tick", uint64(tick),
			"changes", len(changes),
			"dirty", len(report.Dirty),
		)
	}
	if e.onStep != nil {
		e.onStep(report)
	}
	return report
}

// Run loops until ctx is cancelled: pause for the interval, then Step.
// The startup observation made during provider registration stands in for
// the first iteration.
//
// Every runtime error is logged and isolated to its rule or provider, so
// Run only returns when ctx is done. Cancellation is not an error.
func (e *Engine) Run(ctx context.Context) error {
	if e.interval <= 0 {
		return fmt.Errorf("invalid interval %s", e.interval)
	}

	e.logger.Info("engine starting",
		"providers", len(e.providers),
		"rules", len(e.rules),
		"keys", e.store.Len(),
		"interval", e.interval,
	)

	timer := time.NewTimer(e.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping", "tick", uint64(e.clock.Current()))
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-timer.C:
		}

		e.Step(ctx)
		timer.Reset(e.interval)
	}
}
