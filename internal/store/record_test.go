package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/schedcheck/internal/ir"
	"github.com/roach88/schedcheck/internal/schedule"
)

// crossRead reads a value from stream 0 on stream 1, optionally
// synchronized through event 0.
func crossRead(synchronized bool) *ir.Program {
	p := &ir.Program{
		Name:   "cross_read",
		Params: []string{"x"},
		Body: []ir.Statement{
			{Let: "s0", Op: ir.OpSetStream, Args: []ir.Arg{ir.ConstArg(0), ir.ConstArg(0)}},
			{Let: "a", Op: "atan", Args: []ir.Arg{ir.RefArg("x")}},
			{Let: "e", Op: ir.OpAddEvent, Args: []ir.Arg{ir.ConstArg(0)}},
			{Let: "s1", Op: ir.OpSetStream, Args: []ir.Arg{ir.ConstArg(0), ir.ConstArg(1)}},
			{Let: "w", Op: ir.OpWaitEvent, Args: []ir.Arg{ir.ConstArg(0)}},
			{Let: "b", Op: "atan", Args: []ir.Arg{ir.RefArg("a")}},
		},
	}
	if !synchronized {
		return p.WithoutEvents(0)
	}
	return p
}

func TestNewRunRecord_Passed(t *testing.T) {
	p := crossRead(true)
	report, err := schedule.Analyze(p)
	require.NoError(t, err)

	run, err := NewRunRecord("r1", p, report, nil)
	require.NoError(t, err)

	assert.Equal(t, ir.RunRecord{
		ID:               "r1",
		ProgramName:      "cross_read",
		ProgramDigest:    ir.MustProgramDigest(p),
		Status:           ir.RunStatusPassed,
		InstructionCount: 6,
		VerifierVersion:  ir.VerifierVersion,
	}, run)
}

func TestNewRunRecord_Hazards(t *testing.T) {
	p := crossRead(false)
	report, err := schedule.Analyze(p)
	require.NoError(t, err)

	run, err := NewRunRecord("r2", p, report, nil)
	require.NoError(t, err)

	assert.Equal(t, ir.RunStatusHazards, run.Status)
	assert.Equal(t, schedule.CodeExecutionOrder, run.ErrorCode)
	require.Len(t, run.Hazards, 1)
	assert.Equal(t, "a", run.Hazards[0].ProducerName)
	assert.Equal(t, "b", run.Hazards[0].ConsumerName)
	assert.Equal(t, 4, run.InstructionCount)
}

func TestNewRunRecord_Error(t *testing.T) {
	p := &ir.Program{
		Name: "unknown",
		Body: []ir.Statement{{Let: "w", Op: ir.OpWaitEvent, Args: []ir.Arg{ir.ConstArg(3)}}},
	}
	report, verr := schedule.Analyze(p)
	require.Error(t, verr)

	run, err := NewRunRecord("r3", p, report, verr)
	require.NoError(t, err)

	assert.Equal(t, ir.RunStatusError, run.Status)
	assert.Equal(t, schedule.CodeUnknownEvent, run.ErrorCode)
	assert.Equal(t, verr.Error(), run.Message)
	assert.Zero(t, run.InstructionCount)
}

func TestNewRunRecord_NilReport(t *testing.T) {
	_, err := NewRunRecord("r4", crossRead(true), nil, nil)
	assert.Error(t, err)
}

func TestNewRunRecord_WritesAndReadsBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	p := crossRead(false)
	report, err := schedule.Analyze(p)
	require.NoError(t, err)
	run, err := NewRunRecord(UUIDv7Generator{}.Generate(), p, report, nil)
	require.NoError(t, err)

	seq, inserted, err := s.WriteRun(ctx, run)
	require.NoError(t, err)
	require.True(t, inserted)

	got, err := s.ReadRun(ctx, run.ID)
	require.NoError(t, err)
	run.Seq = seq
	assert.Equal(t, run, got)
}
