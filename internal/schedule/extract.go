package schedule

import (
	"github.com/roach88/schedcheck/internal/ir"
)

// Extract turns a program into its instruction list.
//
// Positions are dense 0-based program-order indices. Operand names are
// resolved to the positions of the statements that bind them; parameters
// are free inputs and produce no operand. The active stream is threaded
// through the scan starting at ir.DefaultStream.
//
// Extraction fails with *MalformedProgramError on the first statement that
// references a name bound later (forward reference) or never bound
// (dangling reference), rebinds a name, or gives a control op anything other
// than non-negative integer constants.
func Extract(p *ir.Program) ([]ir.Instruction, error) {
	params := make(map[string]bool, len(p.Params))
	for _, name := range p.Params {
		params[name] = true
	}

	// Where each name is bound, to tell forward from dangling references.
	boundAt := make(map[string]int, len(p.Body))
	for i, st := range p.Body {
		if st.Let == "" {
			continue
		}
		if params[st.Let] {
			return nil, malformedf(i, st, "", "binding %q shadows a parameter", st.Let)
		}
		if prev, dup := boundAt[st.Let]; dup {
			return nil, malformedf(i, st, "", "name %q already bound by statement %d", st.Let, prev)
		}
		boundAt[st.Let] = i
	}

	instrs := make([]ir.Instruction, 0, len(p.Body))
	current := ir.DefaultStream

	for i, st := range p.Body {
		inst := ir.Instruction{
			Position: i,
			Name:     st.Let,
			Op:       st.Op,
			Kind:     ir.KindOf(st.Op),
			Operands: []int{},
		}

		switch inst.Kind {
		case ir.KindSetStream:
			ids, err := controlArgs(i, st, 2)
			if err != nil {
				return nil, err
			}
			inst.Target = ir.StreamID{Device: ids[0], Stream: ids[1]}
			current = inst.Target

		case ir.KindAddEvent, ir.KindWaitEvent:
			ids, err := controlArgs(i, st, 1)
			if err != nil {
				return nil, err
			}
			inst.EventID = ids[0]

		default:
			for _, arg := range st.Args {
				if arg.IsConst || params[arg.Ref] {
					continue
				}
				at, ok := boundAt[arg.Ref]
				switch {
				case !ok:
					return nil, malformedf(i, st, arg.Ref, "dangling reference to %q", arg.Ref)
				case at >= i:
					return nil, malformedf(i, st, arg.Ref, "forward reference to %q bound by statement %d", arg.Ref, at)
				}
				inst.Operands = append(inst.Operands, at)
			}
		}

		inst.Stream = current
		instrs = append(instrs, inst)
	}

	return instrs, nil
}

// controlArgs checks that a control statement has exactly n non-negative
// integer constant arguments and returns them.
func controlArgs(i int, st ir.Statement, n int) ([]int64, error) {
	if len(st.Args) != n {
		return nil, malformedf(i, st, "", "%s takes %d argument(s), got %d", st.Op, n, len(st.Args))
	}
	ids := make([]int64, n)
	for j, arg := range st.Args {
		if !arg.IsConst {
			return nil, malformedf(i, st, arg.Ref, "%s argument %d must be an integer constant, got reference %q", st.Op, j, arg.Ref)
		}
		if arg.Const < 0 {
			return nil, malformedf(i, st, "", "%s argument %d must be non-negative, got %d", st.Op, j, arg.Const)
		}
		ids[j] = arg.Const
	}
	return ids, nil
}
