package store

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/roach88/schedcheck/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run record with minimal required fields.
func createTestRun(id, program, status string) ir.RunRecord {
	return ir.RunRecord{
		ID:               id,
		ProgramName:      program,
		ProgramDigest:    "digest-" + program,
		Status:           status,
		InstructionCount: 15,
		VerifierVersion:  ir.VerifierVersion,
	}
}

func testHazard(producer, consumer int) ir.Hazard {
	return ir.Hazard{
		Producer:       producer,
		Consumer:       consumer,
		ProducerStream: ir.StreamID{Device: 0, Stream: 0},
		ConsumerStream: ir.StreamID{Device: 0, Stream: 2},
		ProducerName:   "x_" + strconv.Itoa(producer),
		ConsumerName:   "x_" + strconv.Itoa(consumer),
	}
}
