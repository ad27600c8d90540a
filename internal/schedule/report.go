package schedule

import (
	"fmt"
	"slices"

	"github.com/roach88/schedcheck/internal/ir"
)

// WarningCode categorizes non-fatal findings.
type WarningCode string

const (
	// WarnEventRebound indicates an add_event replaced a binding of the same
	// id that no wait_event had consumed. Later waits see only the new one.
	WarnEventRebound WarningCode = "EVENT_REBOUND"

	// WarnUnusedEvent indicates an event binding that no wait_event consumed.
	WarnUnusedEvent WarningCode = "UNUSED_EVENT"
)

// Warning is a finding that never changes the verification outcome.
type Warning struct {
	Code     WarningCode `json:"code"`
	EventID  int64       `json:"event_id"`
	Position int         `json:"position"`
	Message  string      `json:"message"`
}

func rebindMessage(in *ir.Instruction, prev *eventBinding) string {
	return fmt.Sprintf("event %d rebound at position %d on stream %s; binding at position %d on stream %s was never waited on",
		in.EventID, in.Position, in.Stream, prev.position, prev.stream)
}

func unusedMessage(id int64, b *eventBinding) string {
	return fmt.Sprintf("event %d added at position %d on stream %s is never waited on", id, b.position, b.stream)
}

// StreamCount is the number of instructions issued on one stream.
type StreamCount struct {
	Stream       ir.StreamID `json:"stream"`
	Instructions int         `json:"instructions"`
}

// Report is the outcome of simulating one program to completion.
type Report struct {
	Program      string        `json:"program"`
	Instructions int           `json:"instructions"`
	Streams      []StreamCount `json:"streams"` // sorted by stream
	Events       int           `json:"events"`  // add_event count
	Waits        int           `json:"waits"`   // wait_event count
	Hazards      []ir.Hazard   `json:"hazards"`
	Warnings     []Warning     `json:"warnings,omitempty"`
}

// OK reports whether no hazard was found.
func (r *Report) OK() bool {
	return len(r.Hazards) == 0
}

// Err returns nil when the report has no hazards, otherwise an
// *ExecutionOrderError carrying all of them.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return &ExecutionOrderError{Hazards: slices.Clone(r.Hazards)}
}

func (s *simulator) report(program string) *Report {
	streams := make([]StreamCount, 0, len(s.streamCounts))
	for id, n := range s.streamCounts {
		streams = append(streams, StreamCount{Stream: id, Instructions: n})
	}
	slices.SortFunc(streams, func(a, b StreamCount) int {
		return a.Stream.Compare(b.Stream)
	})

	return &Report{
		Program:      program,
		Instructions: len(s.instrs),
		Streams:      streams,
		Events:       s.adds,
		Waits:        s.waits,
		Hazards:      s.hazards,
		Warnings:     s.warnings,
	}
}
