// Package schedule verifies that a stream-scheduled program has no
// execution-order hazards.
//
// A program arrives already linearized: every instruction has been assigned
// to a stream by a set_stream that precedes it, and cross-stream ordering is
// expressed only through add_event / wait_event pairs. Verification is one
// forward pass over the instructions:
//
//  1. Extract resolves operand names to program-order positions and attaches
//     the active stream to every instruction.
//  2. The simulator replays the instructions, binding events on add_event and
//     merging the producer's knowledge into the waiting stream's frontier on
//     wait_event.
//  3. Before an instruction is simulated, every operand edge that crosses
//     streams is checked against the frontier as it stands at that point.
//     Waits issued later never cover an earlier read.
//
// # Frontier
//
// The frontier is a per-stream vector clock: frontier[S][T] = p means every
// instruction on stream T at position <= p has completed before anything S
// issues next. An event binding captures the producer stream's own frontier
// at the add_event, so waiting on it orders the waiter after everything the
// producer had already waited on (transitive closure).
//
// # Errors
//
// Verification ends in exactly one of: success, *MalformedProgramError,
// *UnknownEventError or *ExecutionOrderError. The last carries every hazard
// found, in program order, not only the first.
//
// Runs share no state. Output depends only on the instruction list.
package schedule
