package schedule

import (
	"slices"

	"github.com/roach88/schedcheck/internal/graph"
	"github.com/roach88/schedcheck/internal/ir"
)

// Producers returns the positions of every instruction that pos depends on,
// directly or transitively, in ascending order. pos itself is excluded.
func Producers(instrs []ir.Instruction, pos int) []int {
	if pos < 0 || pos >= len(instrs) {
		return nil
	}
	operands := func(p int) []int { return instrs[p].Operands }

	reached := graph.Reachable([]int{pos}, operands)
	out := slices.DeleteFunc(reached, func(p int) bool { return p == pos })
	slices.Sort(out)
	return out
}

// CrossStreamProducers is Producers restricted to instructions on a stream
// other than pos's own.
func CrossStreamProducers(instrs []ir.Instruction, pos int) []int {
	all := Producers(instrs, pos)
	if all == nil {
		return nil
	}
	stream := instrs[pos].Stream
	return slices.DeleteFunc(all, func(p int) bool { return instrs[p].Stream == stream })
}
