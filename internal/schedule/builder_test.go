package schedule

import (
	"fmt"

	"github.com/roach88/schedcheck/internal/ir"
)

// builder assembles programs statement by statement, naming bindings x_0,
// x_1, ... in issue order.
type builder struct {
	prog *ir.Program
	n    int
}

func newBuilder(name string, params ...string) *builder {
	return &builder{prog: &ir.Program{Name: name, Params: params}}
}

func (b *builder) let(op string, args ...ir.Arg) string {
	name := fmt.Sprintf("x_%d", b.n)
	b.n++
	b.prog.Body = append(b.prog.Body, ir.Statement{Let: name, Op: op, Args: args})
	return name
}

func (b *builder) setStream(device, stream int64) string {
	return b.let(ir.OpSetStream, ir.ConstArg(device), ir.ConstArg(stream))
}

func (b *builder) addEvent(id int64) string {
	return b.let(ir.OpAddEvent, ir.ConstArg(id))
}

func (b *builder) waitEvent(id int64) string {
	return b.let(ir.OpWaitEvent, ir.ConstArg(id))
}

func (b *builder) atan(x string) string {
	return b.let("atan", ir.RefArg(x))
}

func (b *builder) tuple(xs ...string) string {
	args := make([]ir.Arg, len(xs))
	for i, x := range xs {
		args[i] = ir.RefArg(x)
	}
	return b.let(ir.OpTuple, args...)
}

func (b *builder) concatenate(x string) string {
	return b.let("concatenate", ir.RefArg(x), ir.ConstArg(0))
}

// simpleBranches is three parallel branches joined on stream 2, each branch
// synchronized by its own event.
func simpleBranches() *ir.Program {
	b := newBuilder("simple_branches", "x")
	b.setStream(0, 0)
	x1 := b.atan("x")
	x2 := b.atan(x1)
	x3 := b.atan(x2)
	b.addEvent(0)
	b.setStream(0, 1)
	x6 := b.atan("x")
	x7 := b.atan(x6)
	b.addEvent(1)
	b.setStream(0, 2)
	x10 := b.atan("x")
	b.waitEvent(1)
	b.waitEvent(0)
	x13 := b.tuple(x10, x7, x3)
	b.concatenate(x13)
	return b.prog
}

// stackedBlocks is two fan-in blocks in sequence. The second block's join on
// stream 0 reaches stream 2 only through events that stream 1 and stream 2
// themselves waited on.
func stackedBlocks() *ir.Program {
	b := newBuilder("stacked_blocks", "x")
	b.setStream(0, 0)
	x1 := b.atan("x")
	x2 := b.atan(x1)
	b.addEvent(0)
	b.setStream(0, 1)
	x5 := b.atan("x")
	b.addEvent(1)
	b.setStream(0, 2)
	x8 := b.atan("x")
	b.waitEvent(1)
	b.waitEvent(0)
	x11 := b.tuple(x8, x5, x2)
	x12 := b.concatenate(x11)
	b.addEvent(2)
	x14 := b.atan(x12)
	x15 := b.atan(x14)
	b.addEvent(3)
	b.setStream(0, 1)
	b.waitEvent(2)
	x19 := b.atan(x12)
	b.addEvent(4)
	b.setStream(0, 0)
	b.waitEvent(2)
	x23 := b.atan(x12)
	b.waitEvent(4)
	b.waitEvent(3)
	x26 := b.tuple(x23, x19, x15)
	b.concatenate(x26)
	return b.prog
}

// edge is a hazard identified by binding names.
type edge struct {
	Producer string
	Consumer string
}

func edgesOf(hazards []ir.Hazard) []edge {
	out := make([]edge, len(hazards))
	for i, h := range hazards {
		out[i] = edge{Producer: h.ProducerName, Consumer: h.ConsumerName}
	}
	return out
}
