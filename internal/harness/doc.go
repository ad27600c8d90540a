// Package harness runs conformance scenarios against the verifier.
//
// # Scenario Format
//
// Scenarios are YAML files naming a program, the events to strip from it,
// and the expected outcome:
//
//	name: simple_branches_without_event_0
//	description: "Removing event 0 leaves branch 0 unsynchronized"
//	program: ../programs/simple_branches.yaml
//	remove_events: [0]
//	expect:
//	  result: execution_order
//	  hazards:
//	    - {producer: x_3, consumer: x_13}
//	assertions:
//	  - type: hazard_count
//	    count: 1
//
// Program paths are resolved relative to the scenario file. Expected hazards
// are matched by binding name, in report order, and must match exactly.
//
// # Assertion Types
//
//   - hazard_count: exactly N hazards
//   - stream_instructions: exactly N instructions issued on a stream ("0:2", "default")
//   - warning: a warning with the given code (and event id, if set)
//   - no_warnings: the run produced no warnings
//   - depends_on: consumer transitively reads producer
//   - edge_covered: consumer reads producer directly and the read is synchronized
//
// # Determinism
//
// A scenario always produces the same Result, so snapshots can be compared
// against golden files byte for byte. Run ids for recorded history come from
// the configured generator (testutil.FixedRunIDGenerator in tests).
package harness
