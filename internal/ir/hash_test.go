package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProgram() *Program {
	return &Program{
		Name:   "sample",
		Params: []string{"x"},
		Body: []Statement{
			{Let: "s0", Op: OpSetStream, Args: []Arg{ConstArg(0), ConstArg(0)}},
			{Let: "a", Op: "atan", Args: []Arg{RefArg("x")}},
			{Let: "e", Op: OpAddEvent, Args: []Arg{ConstArg(0)}},
		},
	}
}

func TestProgramDigestDeterminism(t *testing.T) {
	d1, err := ProgramDigest(sampleProgram())
	require.NoError(t, err)
	d2, err := ProgramDigest(sampleProgram())
	require.NoError(t, err)

	assert.Equal(t, d1, d2, "ProgramDigest must be deterministic")
	assert.Len(t, d1, 64, "SHA-256 hex is 64 characters")
}

func TestProgramDigestIgnoresLines(t *testing.T) {
	p := sampleProgram()
	q := sampleProgram()
	for i := range q.Body {
		q.Body[i].Line = i + 10
	}
	assert.Equal(t, MustProgramDigest(p), MustProgramDigest(q))
}

func TestProgramDigestChangesWithInput(t *testing.T) {
	base := MustProgramDigest(sampleProgram())

	renamed := sampleProgram()
	renamed.Name = "other"

	constVsRef := sampleProgram()
	constVsRef.Body[1].Args = []Arg{ConstArg(0)}

	dropped := sampleProgram().WithoutEvents(0)

	assert.NotEqual(t, base, MustProgramDigest(renamed))
	assert.NotEqual(t, base, MustProgramDigest(constVsRef))
	assert.NotEqual(t, base, MustProgramDigest(dropped))
}

func TestHashWithDomainSeparation(t *testing.T) {
	data := []byte("payload")
	assert.NotEqual(t, hashWithDomain("a", data), hashWithDomain("b", data))
	assert.NotEqual(t, hashWithDomain("ab", []byte("c")), hashWithDomain("a", []byte("bc")))
}

func TestReportDigest(t *testing.T) {
	program := MustProgramDigest(sampleProgram())
	h := Hazard{
		Producer:       1,
		Consumer:       4,
		ProducerStream: StreamID{Device: 0, Stream: 0},
		ConsumerStream: StreamID{Device: 0, Stream: 1},
	}

	clean, err := ReportDigest(program, nil)
	require.NoError(t, err)
	empty, err := ReportDigest(program, []Hazard{})
	require.NoError(t, err)
	one, err := ReportDigest(program, []Hazard{h})
	require.NoError(t, err)
	again, err := ReportDigest(program, []Hazard{h})
	require.NoError(t, err)
	other, err := ReportDigest("other", []Hazard{h})
	require.NoError(t, err)

	assert.Equal(t, clean, empty, "nil and empty hazard lists are the same outcome")
	assert.Equal(t, one, again)
	assert.NotEqual(t, clean, one)
	assert.NotEqual(t, one, other)
	assert.NotEqual(t, program, clean, "report and program digests use different domains")
}
