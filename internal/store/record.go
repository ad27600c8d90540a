package store

import (
	"fmt"

	"github.com/roach88/schedcheck/internal/ir"
	"github.com/roach88/schedcheck/internal/schedule"
)

// NewRunRecord builds the history record for one verification of p.
// report may be nil when verification stopped with a fatal error; verr is
// the error from schedule.Analyze, if any.
func NewRunRecord(id string, p *ir.Program, report *schedule.Report, verr error) (ir.RunRecord, error) {
	digest, err := ir.ProgramDigest(p)
	if err != nil {
		return ir.RunRecord{}, fmt.Errorf("new run record: %w", err)
	}

	run := ir.RunRecord{
		ID:              id,
		ProgramName:     p.Name,
		ProgramDigest:   digest,
		Status:          ir.RunStatusPassed,
		VerifierVersion: ir.VerifierVersion,
	}

	if verr != nil {
		run.Status = ir.RunStatusError
		run.ErrorCode = schedule.ErrorCode(verr)
		run.Message = verr.Error()
		return run, nil
	}
	if report == nil {
		return ir.RunRecord{}, fmt.Errorf("new run record: nil report without error")
	}

	run.InstructionCount = report.Instructions
	run.WarningCount = len(report.Warnings)
	if err := report.Err(); err != nil {
		run.Status = ir.RunStatusHazards
		run.ErrorCode = schedule.ErrorCode(err)
		run.Message = err.Error()
		run.Hazards = report.Hazards
	}
	return run, nil
}
