package ir

import (
	"fmt"
	"slices"
)

// Op names with synchronization meaning. Every other op is a compute node.
const (
	OpSetStream = "set_stream"
	OpAddEvent  = "add_event"
	OpWaitEvent = "wait_event"
	OpTuple     = "tuple"
)

// Program is the linearized output of the scheduling pass: free parameters
// followed by let-bound statements in program order.
type Program struct {
	Name   string      `json:"name"`
	Params []string    `json:"params,omitempty"`
	Body   []Statement `json:"body"`
}

// Statement binds the result of one op to a name.
type Statement struct {
	Let  string `json:"let"`
	Op   string `json:"op"`
	Args []Arg  `json:"args"`
	Line int    `json:"-"` // source line, 0 when unknown
}

// Arg is either a reference to a parameter or an earlier binding, or an
// integer constant.
type Arg struct {
	Ref     string
	Const   int64
	IsConst bool
}

// RefArg creates a reference argument.
func RefArg(name string) Arg {
	return Arg{Ref: name}
}

// ConstArg creates an integer constant argument.
func ConstArg(v int64) Arg {
	return Arg{Const: v, IsConst: true}
}

func (a Arg) String() string {
	if a.IsConst {
		return fmt.Sprintf("%d", a.Const)
	}
	return a.Ref
}

// WithoutEvents returns a copy of p with every add_event and wait_event
// statement for the given event ids removed.
func (p *Program) WithoutEvents(ids ...int64) *Program {
	out := &Program{
		Name:   p.Name,
		Params: slices.Clone(p.Params),
		Body:   make([]Statement, 0, len(p.Body)),
	}
	for _, st := range p.Body {
		kind := KindOf(st.Op)
		if (kind == KindAddEvent || kind == KindWaitEvent) &&
			len(st.Args) == 1 && st.Args[0].IsConst && slices.Contains(ids, st.Args[0].Const) {
			continue
		}
		out.Body = append(out.Body, st)
	}
	return out
}

// Kind classifies an instruction.
type Kind int

const (
	KindCompute Kind = iota
	KindSetStream
	KindAddEvent
	KindWaitEvent
)

// KindOf maps an op name to its instruction kind.
func KindOf(op string) Kind {
	switch op {
	case OpSetStream:
		return KindSetStream
	case OpAddEvent:
		return KindAddEvent
	case OpWaitEvent:
		return KindWaitEvent
	default:
		return KindCompute
	}
}

// IsControl reports whether k carries synchronization meaning only.
func (k Kind) IsControl() bool {
	return k != KindCompute
}

func (k Kind) String() string {
	switch k {
	case KindCompute:
		return "compute"
	case KindSetStream:
		return OpSetStream
	case KindAddEvent:
		return OpAddEvent
	case KindWaitEvent:
		return OpWaitEvent
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// StreamID identifies a stream on a device.
type StreamID struct {
	Device int64 `json:"device"`
	Stream int64 `json:"stream"`
}

// DefaultStream is the stream of instructions issued before any set_stream.
var DefaultStream = StreamID{Device: -1, Stream: -1}

func (s StreamID) String() string {
	if s == DefaultStream {
		return "default"
	}
	return fmt.Sprintf("%d:%d", s.Device, s.Stream)
}

// Compare orders streams by device, then stream.
func (s StreamID) Compare(o StreamID) int {
	if s.Device != o.Device {
		if s.Device < o.Device {
			return -1
		}
		return 1
	}
	switch {
	case s.Stream < o.Stream:
		return -1
	case s.Stream > o.Stream:
		return 1
	}
	return 0
}

// Instruction is one extracted step of a program. Instructions are built
// once per verification run and never mutated afterwards.
type Instruction struct {
	Position int      `json:"position"`
	Name     string   `json:"name"`
	Op       string   `json:"op"`
	Kind     Kind     `json:"kind"`
	Target   StreamID `json:"target"`             // set_stream only
	EventID  int64    `json:"event_id,omitempty"` // add_event and wait_event only
	Operands []int    `json:"operands"`
	Stream   StreamID `json:"stream"`
}
