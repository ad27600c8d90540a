package store

import (
	"context"
	"fmt"

	"github.com/roach88/schedcheck/internal/ir"
)

// WriteRun records a verification run and its hazards in one transaction.
// Returns the seq assigned to the run and whether a new row was inserted.
//
// Uses ON CONFLICT(id) DO NOTHING for idempotency: writing a run id that
// already exists returns its existing seq, inserted=false, and leaves its
// hazards untouched.
func (s *Store) WriteRun(ctx context.Context, run ir.RunRecord) (seq int64, inserted bool, err error) {
	if run.ID == "" {
		return 0, false, fmt.Errorf("write run: empty run id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, program_name, program_digest, status, error_code, message,
		 instruction_count, warning_count, verifier_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.ProgramName,
		run.ProgramDigest,
		run.Status,
		run.ErrorCode,
		run.Message,
		run.InstructionCount,
		run.WarningCount,
		run.VerifierVersion,
	)
	if err != nil {
		return 0, false, fmt.Errorf("write run: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("write run: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		err = tx.QueryRowContext(ctx, `SELECT seq FROM runs WHERE id = ?`, run.ID).Scan(&seq)
		if err != nil {
			return 0, false, fmt.Errorf("write run: select existing: %w", err)
		}
		return seq, false, tx.Commit()
	}

	seq, err = result.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("write run: last insert id: %w", err)
	}

	for i, h := range run.Hazards {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_hazards
			(run_id, idx, producer, consumer,
			 producer_device, producer_stream, consumer_device, consumer_stream,
			 producer_name, consumer_name)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID, i, h.Producer, h.Consumer,
			h.ProducerStream.Device, h.ProducerStream.Stream,
			h.ConsumerStream.Device, h.ConsumerStream.Stream,
			h.ProducerName, h.ConsumerName,
		)
		if err != nil {
			return 0, false, fmt.Errorf("write run: hazard %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("write run: commit: %w", err)
	}
	return seq, true, nil
}
