package schedule

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/schedcheck/internal/ir"
)

// Option configures a verification run.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger for debug output. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Verify checks p for execution-order hazards. It returns nil on success,
// or one of *MalformedProgramError, *UnknownEventError or
// *ExecutionOrderError.
func Verify(p *ir.Program, opts ...Option) error {
	report, err := Analyze(p, opts...)
	if err != nil {
		return err
	}
	return report.Err()
}

// Analyze extracts and simulates p. Hazards are returned in the report, not
// as an error; the error is non-nil only for malformed programs and unknown
// events.
func Analyze(p *ir.Program, opts ...Option) (*Report, error) {
	instrs, err := Extract(p)
	if err != nil {
		return nil, err
	}
	return Check(p.Name, instrs, opts...)
}

// Check simulates an already extracted instruction list. Positions must be
// dense and every operand must refer to an earlier instruction.
func Check(program string, instrs []ir.Instruction, opts ...Option) (*Report, error) {
	o := buildOptions(opts)

	for i, in := range instrs {
		if in.Position != i {
			return nil, &MalformedProgramError{
				Statement: i,
				Name:      in.Name,
				Message:   fmt.Sprintf("instruction position %d does not match its index", in.Position),
			}
		}
		for _, op := range in.Operands {
			if op < 0 || op >= i {
				return nil, &MalformedProgramError{
					Statement: i,
					Name:      in.Name,
					Message:   fmt.Sprintf("operand %d does not refer to an earlier instruction", op),
				}
			}
		}
	}

	sim := newSimulator(instrs, o.logger.With("program", program))
	if err := sim.run(); err != nil {
		o.logger.Debug("verification aborted", "program", program, "error", err)
		return nil, err
	}

	report := sim.report(program)
	o.logger.Debug("verification finished",
		"program", program,
		"instructions", report.Instructions,
		"hazards", len(report.Hazards),
		"warnings", len(report.Warnings))
	return report, nil
}
