// Package engine implements the scriptrunner change-detection and
// notification loop.
//
// ARCHITECTURE:
//
// Startup:
//  1. Each provider takes a first snapshot. Its keys join the key universe
//     (first registering provider owns a key) and its values seed the
//     StateStore. No rule is dirty after this observation.
//  2. Each rule is compiled into the rule arena and indexed under its
//     dependent keys in the SubscriptionIndex. A rule depending on a key
//     outside the universe is rejected.
//
// Each tick (Engine.Step):
//  1. The clock advances (wrapping at the maximum uint64).
//  2. ChangeDetector snapshots every provider in registration order,
//     updates the StateStore and collects dirty rules together with the
//     keys that dirtied them. A failing provider contributes nothing.
//  3. Evaluator evaluates each dirty rule in arena order against the whole
//     StateStore. True conditions render their action template and hand it
//     to the Dispatcher. Every rule evaluated is marked with the tick, so a
//     second evaluation in the same tick is skipped.
//
// Engine.Run repeats Step after a fixed pause until its context is done.
//
// ERROR HANDLING:
// Only configuration errors before the loop starts are fatal, and those are
// the caller's decision. Inside the loop everything is logged and isolated:
// a provider failure skips that provider, an evaluation failure skips that
// rule, a failed command is recorded and forgotten.
//
// CONCURRENCY:
// Single goroutine. The StateStore, SubscriptionIndex and rule arena are
// only touched from the loop's call chain and carry no locks.
package engine
