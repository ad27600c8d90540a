package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/schedcheck/internal/ir"
)

func TestExtract_PositionsStreamsOperands(t *testing.T) {
	instrs, err := Extract(simpleBranches())
	require.NoError(t, err)
	require.Len(t, instrs, 15)

	for i, in := range instrs {
		assert.Equal(t, i, in.Position)
	}

	s0 := ir.StreamID{Device: 0, Stream: 0}
	s2 := ir.StreamID{Device: 0, Stream: 2}

	assert.Equal(t, ir.KindSetStream, instrs[0].Kind)
	assert.Equal(t, s0, instrs[0].Target)
	assert.Equal(t, s0, instrs[0].Stream)

	// x_1 = atan(x): parameter reads produce no operand
	assert.Empty(t, instrs[1].Operands)
	assert.Equal(t, []int{1}, instrs[2].Operands)

	assert.Equal(t, ir.KindAddEvent, instrs[4].Kind)
	assert.Equal(t, int64(0), instrs[4].EventID)

	// x_13 = tuple(x_10, x_7, x_3)
	assert.Equal(t, []int{10, 7, 3}, instrs[13].Operands)
	assert.Equal(t, s2, instrs[13].Stream)
	assert.Equal(t, "x_13", instrs[13].Name)
	assert.Equal(t, ir.OpTuple, instrs[13].Op)

	// control instructions never have operands
	assert.Empty(t, instrs[11].Operands)
}

func TestExtract_DefaultStream(t *testing.T) {
	b := newBuilder("p", "x")
	b.atan("x")
	b.setStream(2, 3)
	b.atan("x")

	instrs, err := Extract(b.prog)
	require.NoError(t, err)
	assert.Equal(t, ir.DefaultStream, instrs[0].Stream)
	assert.Equal(t, ir.StreamID{Device: 2, Stream: 3}, instrs[2].Stream)
}

func TestExtract_Malformed(t *testing.T) {
	stmt := func(let, op string, args ...ir.Arg) ir.Statement {
		return ir.Statement{Let: let, Op: op, Args: args}
	}

	tests := []struct {
		name    string
		params  []string
		body    []ir.Statement
		stmt    int
		ref     string
		message string
	}{
		{
			name:    "forward reference",
			body:    []ir.Statement{stmt("a", "atan", ir.RefArg("b")), stmt("b", "atan", ir.ConstArg(1))},
			stmt:    0,
			ref:     "b",
			message: "forward reference",
		},
		{
			name:    "self reference",
			body:    []ir.Statement{stmt("a", "atan", ir.RefArg("a"))},
			stmt:    0,
			ref:     "a",
			message: "forward reference",
		},
		{
			name:    "dangling reference",
			body:    []ir.Statement{stmt("a", "atan", ir.RefArg("nowhere"))},
			stmt:    0,
			ref:     "nowhere",
			message: "dangling reference",
		},
		{
			name:    "duplicate name",
			body:    []ir.Statement{stmt("a", "atan", ir.ConstArg(1)), stmt("a", "atan", ir.ConstArg(1))},
			stmt:    1,
			message: "already bound",
		},
		{
			name:    "shadowed parameter",
			params:  []string{"x"},
			body:    []ir.Statement{stmt("x", "atan", ir.ConstArg(1))},
			stmt:    0,
			message: "shadows a parameter",
		},
		{
			name:    "set_stream arity",
			body:    []ir.Statement{stmt("s", ir.OpSetStream, ir.ConstArg(0))},
			stmt:    0,
			message: "takes 2 argument(s), got 1",
		},
		{
			name:    "event id reference",
			params:  []string{"x"},
			body:    []ir.Statement{stmt("e", ir.OpAddEvent, ir.RefArg("x"))},
			stmt:    0,
			ref:     "x",
			message: "must be an integer constant",
		},
		{
			name:    "negative stream",
			body:    []ir.Statement{stmt("s", ir.OpSetStream, ir.ConstArg(0), ir.ConstArg(-1))},
			stmt:    0,
			message: "must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(&ir.Program{Name: "bad", Params: tt.params, Body: tt.body})
			require.Error(t, err)

			var me *MalformedProgramError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, tt.stmt, me.Statement)
			assert.Equal(t, tt.ref, me.Ref)
			assert.Contains(t, me.Message, tt.message)
		})
	}
}

func TestExtract_UnnamedStatementsAllowed(t *testing.T) {
	p := &ir.Program{Name: "anon", Body: []ir.Statement{
		{Op: ir.OpSetStream, Args: []ir.Arg{ir.ConstArg(0), ir.ConstArg(0)}},
		{Op: ir.OpAddEvent, Args: []ir.Arg{ir.ConstArg(0)}},
		{Op: ir.OpWaitEvent, Args: []ir.Arg{ir.ConstArg(0)}},
	}}

	instrs, err := Extract(p)
	require.NoError(t, err)
	assert.Len(t, instrs, 3)
}

func TestMalformedProgramError_Message(t *testing.T) {
	err := &MalformedProgramError{Statement: 2, Name: "x_2", Line: 7, Message: "dangling reference to \"q\""}
	assert.Equal(t, `E201: malformed program: statement 2 (x_2) line 7: dangling reference to "q"`, err.Error())
}
