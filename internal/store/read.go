package store

import (
	"context"
	"fmt"

	"github.com/roach88/schedcheck/internal/ir"
)

const runColumns = `seq, id, program_name, program_digest, status, error_code, message,
	instruction_count, warning_count, verifier_version`

// ReadRun retrieves a single run and its hazards by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err != nil {
		return ir.RunRecord{}, err
	}

	hazards, err := s.readHazards(ctx, id)
	if err != nil {
		return ir.RunRecord{}, err
	}
	run.Hazards = hazards
	return run, nil
}

// ReadRuns returns the most recent runs, oldest first. A limit of zero or
// less returns every run.
//
// Returns an empty slice (not nil) if no runs are recorded.
func (s *Store) ReadRuns(ctx context.Context, limit int) ([]ir.RunRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	return s.queryRuns(ctx, `
		SELECT * FROM (
			SELECT `+runColumns+` FROM runs
			ORDER BY seq DESC
			LIMIT ?
		) ORDER BY seq ASC
	`, limit)
}

// ReadRunsForProgram returns every run of the program with the given
// digest, ordered by seq ASC.
func (s *Store) ReadRunsForProgram(ctx context.Context, digest string) ([]ir.RunRecord, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE program_digest = ?
		ORDER BY seq ASC
	`, digest)
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]ir.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.RunRecord{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	// Close before issuing hazard queries on the single connection.
	rows.Close()

	for i := range runs {
		hazards, err := s.readHazards(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Hazards = hazards
	}
	return runs, nil
}

// readHazards returns the hazards of one run in report order.
// Returns nil if the run has none.
func (s *Store) readHazards(ctx context.Context, runID string) ([]ir.Hazard, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT producer, consumer,
		       producer_device, producer_stream, consumer_device, consumer_stream,
		       producer_name, consumer_name
		FROM run_hazards
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query hazards: %w", err)
	}
	defer rows.Close()

	var hazards []ir.Hazard
	for rows.Next() {
		var h ir.Hazard
		if err := rows.Scan(
			&h.Producer, &h.Consumer,
			&h.ProducerStream.Device, &h.ProducerStream.Stream,
			&h.ConsumerStream.Device, &h.ConsumerStream.Stream,
			&h.ProducerName, &h.ConsumerName,
		); err != nil {
			return nil, fmt.Errorf("scan hazard: %w", err)
		}
		hazards = append(hazards, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hazards: %w", err)
	}
	return hazards, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (ir.RunRecord, error) {
	var run ir.RunRecord
	err := row.Scan(
		&run.Seq, &run.ID, &run.ProgramName, &run.ProgramDigest, &run.Status,
		&run.ErrorCode, &run.Message, &run.InstructionCount, &run.WarningCount,
		&run.VerifierVersion,
	)
	return run, err
}
