package schedule

import (
	"log/slog"
	"slices"

	"github.com/roach88/schedcheck/internal/ir"
)

// eventBinding is the current binding of an event id. Only the latest
// add_event for an id is kept.
type eventBinding struct {
	stream   ir.StreamID
	position int
	name     string
	snapshot map[ir.StreamID]int // producer's frontier row at the add_event
	waited   bool
}

// simulator replays one instruction list exactly once, in program order.
// Hazard detection runs inside the same pass so each read is judged against
// the frontier as of its own position.
type simulator struct {
	instrs       []ir.Instruction
	frontier     *Frontier
	events       map[int64]*eventBinding
	streamCounts map[ir.StreamID]int
	hazards      []ir.Hazard
	warnings     []Warning
	adds         int
	waits        int
	logger       *slog.Logger
}

func newSimulator(instrs []ir.Instruction, logger *slog.Logger) *simulator {
	return &simulator{
		instrs:       instrs,
		frontier:     NewFrontier(),
		events:       make(map[int64]*eventBinding),
		streamCounts: make(map[ir.StreamID]int),
		hazards:      []ir.Hazard{},
		logger:       logger,
	}
}

func (s *simulator) run() error {
	for i := range s.instrs {
		in := &s.instrs[i]
		s.streamCounts[in.Stream]++

		// Operands first: this instruction's reads see only waits issued
		// before it.
		s.checkOperands(in)

		switch in.Kind {
		case ir.KindAddEvent:
			s.addEvent(in)
		case ir.KindWaitEvent:
			if err := s.waitEvent(in); err != nil {
				return err
			}
		}
	}

	s.reportUnusedEvents()
	return nil
}

// checkOperands records a hazard for every distinct operand whose producer
// the consumer's stream has not provably observed.
func (s *simulator) checkOperands(in *ir.Instruction) {
	seen := make(map[int]bool, len(in.Operands))
	for _, pos := range in.Operands {
		if seen[pos] {
			continue
		}
		seen[pos] = true

		producer := &s.instrs[pos]
		if s.frontier.Covers(in.Stream, producer.Stream, producer.Position) {
			continue
		}

		h := ir.Hazard{
			Producer:       producer.Position,
			Consumer:       in.Position,
			ProducerStream: producer.Stream,
			ConsumerStream: in.Stream,
			ProducerName:   producer.Name,
			ConsumerName:   in.Name,
		}
		s.logger.Debug("hazard",
			"producer", h.Producer, "producer_stream", h.ProducerStream.String(),
			"consumer", h.Consumer, "consumer_stream", h.ConsumerStream.String())
		s.hazards = append(s.hazards, h)
	}
}

func (s *simulator) addEvent(in *ir.Instruction) {
	s.adds++
	if prev, ok := s.events[in.EventID]; ok && !prev.waited {
		s.warnings = append(s.warnings, Warning{
			Code:     WarnEventRebound,
			EventID:  in.EventID,
			Position: in.Position,
			Message:  rebindMessage(in, prev),
		})
		s.logger.Debug("event rebound before any wait", "event", in.EventID, "position", in.Position, "previous", prev.position)
	}

	s.events[in.EventID] = &eventBinding{
		stream:   in.Stream,
		position: in.Position,
		name:     in.Name,
		snapshot: s.frontier.Snapshot(in.Stream),
	}
	s.logger.Debug("event bound", "event", in.EventID, "stream", in.Stream.String(), "position", in.Position)
}

func (s *simulator) waitEvent(in *ir.Instruction) error {
	s.waits++
	b, ok := s.events[in.EventID]
	if !ok {
		return &UnknownEventError{
			EventID:  in.EventID,
			Position: in.Position,
			Name:     in.Name,
			Stream:   in.Stream,
		}
	}
	b.waited = true

	s.frontier.Merge(in.Stream, b.stream, b.position, b.snapshot)
	s.logger.Debug("wait merged", "event", in.EventID, "waiting", in.Stream.String(), "producing", b.stream.String(), "through", b.position)
	return nil
}

// reportUnusedEvents warns about final bindings nobody waited on, in event
// id order.
func (s *simulator) reportUnusedEvents() {
	ids := make([]int64, 0, len(s.events))
	for id, b := range s.events {
		if !b.waited {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	for _, id := range ids {
		b := s.events[id]
		s.warnings = append(s.warnings, Warning{
			Code:     WarnUnusedEvent,
			EventID:  id,
			Position: b.position,
			Message:  unusedMessage(id, b),
		})
	}
}
