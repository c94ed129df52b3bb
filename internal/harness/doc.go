// Package harness runs rule sets against scripted providers for
// deterministic end-to-end tests.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: lid_close
//	description: "Closing the lid runs the lock command once"
//	config: |
//	  lid_open == false => loginctl lock-session
//	providers:
//	  - name: lid
//	    steps:
//	      - lid_open: true       # startup observation
//	      - lid_open: false      # first tick
//	      - error: "no such file" # second tick, snapshot fails
//	assertions:
//	  - type: dispatched
//	    command: loginctl lock-session
//	    tick: 2
//	  - type: final_state
//	    key: lid_open
//	    value: false
//
// # Assertion Types
//
//   - dispatched: a command was dispatched, optionally on a given tick
//   - not_dispatched: a command was never dispatched
//   - dispatch_count: the number of dispatch attempts, optionally of one command
//   - journal_count: the number of journal rows with an outcome
//   - final_state: the value of a key after the last tick
//
// # Deterministic Testing
//
// The harness drives the real engine one Step at a time with:
//   - scripted providers (testutil.ScriptedProvider)
//   - a recording dispatcher that never runs a shell
//   - sequential dispatch ids ("dispatch-1", "dispatch-2", ...)
//   - an in-memory SQLite journal, isolated per run
//
// The resulting trace is serialized as canonical JSON and compared with
// testdata/golden/<name>.golden.
package harness
