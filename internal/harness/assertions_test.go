package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/schedcheck/internal/ir"
)

func runFixture(t *testing.T, name string) *Result {
	t.Helper()
	result, err := Run(loadFixture(t, name))
	require.NoError(t, err)
	return result
}

func int64Ptr(v int64) *int64 { return &v }

func TestEvaluateAssertions_Passing(t *testing.T) {
	result := runFixture(t, "rebound_event")

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertHazardCount, Count: 0},
		{Type: AssertStreamInstructions, Stream: "0:0", Count: 6},
		{Type: AssertStreamInstructions, Stream: "0:1", Count: 3},
		{Type: AssertStreamInstructions, Stream: "default", Count: 0},
		{Type: AssertWarning, Code: "EVENT_REBOUND"},
		{Type: AssertWarning, Code: "UNUSED_EVENT", EventID: int64Ptr(5)},
		{Type: AssertDependsOn, Producer: "a", Consumer: "c"},
		{Type: AssertEdgeCovered, Producer: "a", Consumer: "c"},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	result := runFixture(t, "two_streams_unsynchronized")

	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{
			name:      "hazard count",
			assertion: Assertion{Type: AssertHazardCount, Count: 0},
			wantErr:   "Expected: 0 hazards",
		},
		{
			name:      "stream instructions",
			assertion: Assertion{Type: AssertStreamInstructions, Stream: "0:1", Count: 3},
			wantErr:   "Actual: 2 instructions",
		},
		{
			name:      "warning",
			assertion: Assertion{Type: AssertWarning, Code: "UNUSED_EVENT"},
			wantErr:   "Expected: warning UNUSED_EVENT",
		},
		{
			name:      "depends on",
			assertion: Assertion{Type: AssertDependsOn, Producer: "b", Consumer: "a"},
			wantErr:   "no dependency path",
		},
		{
			name:      "edge covered hazard",
			assertion: Assertion{Type: AssertEdgeCovered, Producer: "a", Consumer: "b"},
			wantErr:   "reported as hazard",
		},
		{
			name:      "edge covered not operand",
			assertion: Assertion{Type: AssertEdgeCovered, Producer: "s0", Consumer: "b"},
			wantErr:   "not an operand",
		},
		{
			name:      "unknown instruction",
			assertion: Assertion{Type: AssertDependsOn, Producer: "zz", Consumer: "b"},
			wantErr:   `unknown instruction "zz"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(result, []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], "assertions[0]: ")
			assert.Contains(t, errs[0], tt.wantErr)
		})
	}
}

func TestEvaluateAssertions_NoWarnings(t *testing.T) {
	errs := EvaluateAssertions(runFixture(t, "rebound_event"), []Assertion{{Type: AssertNoWarnings}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "EVENT_REBOUND(0)")
	assert.Contains(t, errs[0], "UNUSED_EVENT(5)")
}

func TestEvaluateAssertions_WithoutReport(t *testing.T) {
	result := runFixture(t, "unknown_event")

	errs := EvaluateAssertions(result, []Assertion{{Type: AssertHazardCount, Count: 0}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "verification stopped")
	assert.Contains(t, errs[0], "E202")
}

func TestAssertionError_ListsHazards(t *testing.T) {
	err := &AssertionError{
		Type:     AssertHazardCount,
		Expected: "0 hazards",
		Actual:   "1 hazards",
		Hazards: []ir.Hazard{{
			Producer:       1,
			Consumer:       3,
			ProducerStream: ir.StreamID{Device: 0, Stream: 0},
			ConsumerStream: ir.StreamID{Device: 0, Stream: 1},
			ProducerName:   "a",
			ConsumerName:   "b",
		}},
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: hazard_count")
	assert.Contains(t, msg, "[1] a@1 (stream 0:0) -> b@3 (stream 0:1)")
}

func TestParseStream(t *testing.T) {
	s, err := parseStream("2:7")
	require.NoError(t, err)
	assert.Equal(t, ir.StreamID{Device: 2, Stream: 7}, s)

	s, err = parseStream("default")
	require.NoError(t, err)
	assert.Equal(t, ir.DefaultStream, s)

	for _, bad := range []string{"", "1", "a:1", "1:b", "-1:0"} {
		_, err := parseStream(bad)
		assert.Error(t, err, bad)
	}
}
