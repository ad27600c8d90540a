package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/schedcheck/internal/compiler"
	"github.com/roach88/schedcheck/internal/ir"
	"github.com/roach88/schedcheck/internal/schedule"
	"github.com/roach88/schedcheck/internal/store"
	"github.com/roach88/schedcheck/internal/testutil"
)

// Harness executes scenarios. It is safe to reuse across scenarios; each
// run builds fresh verifier state.
type Harness struct {
	logger *slog.Logger
	store  *store.Store
	ids    store.RunIDGenerator
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger passed to the verifier.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithStore records every run to st, with ids from ids. A nil generator
// uses deterministic test ids.
func WithStore(st *store.Store, ids store.RunIDGenerator) Option {
	return func(h *Harness) {
		h.store = st
		h.ids = ids
	}
}

// New creates a Harness. By default nothing is logged or recorded.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.store != nil && h.ids == nil {
		h.ids = testutil.NewFixedRunIDGenerator()
	}
	return h
}

// Run executes a scenario with a default Harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(context.Background(), scenario)
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Load the program and strip RemoveEvents
// 2. Extract and simulate it
// 3. Compare the outcome with Expect
// 4. Evaluate assertions
// 5. Record the run, if a store is configured
//
// The returned error is non-nil only when the scenario could not be run at
// all (unreadable program, store failure). Verification errors are outcomes.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	prog, err := compiler.LoadProgram(scenario.Program)
	if err != nil {
		return nil, fmt.Errorf("failed to load program: %w", err)
	}
	if len(scenario.RemoveEvents) > 0 {
		prog = prog.WithoutEvents(scenario.RemoveEvents...)
	}

	result := NewResult(scenario.Name)
	result.Program = prog
	result.ProgramDigest, err = ir.ProgramDigest(prog)
	if err != nil {
		return nil, err
	}

	var report *schedule.Report
	instrs, verr := schedule.Extract(prog)
	if verr == nil {
		result.Instructions = instrs
		report, verr = schedule.Check(prog.Name, instrs, schedule.WithLogger(h.logger))
	}
	if verr == nil {
		verr = report.Err()
	}

	result.Report = report
	result.Err = verr
	result.Outcome = outcomeOf(verr)
	if report != nil {
		result.ReportDigest, err = ir.ReportDigest(result.ProgramDigest, report.Hazards)
		if err != nil {
			return nil, err
		}
	}

	h.logger.Info("scenario verified",
		"scenario", scenario.Name,
		"program", prog.Name,
		"outcome", result.Outcome,
		"hazards", len(result.Hazards()),
	)

	checkExpectation(result, scenario.Expect)
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	if h.store != nil {
		if err := h.record(ctx, result, report); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// record writes the run to the store. Fatal errors are recorded with their
// code; hazards are recorded with the run.
func (h *Harness) record(ctx context.Context, result *Result, report *schedule.Report) error {
	fatal := result.Err
	if report != nil {
		fatal = nil
	}
	run, err := store.NewRunRecord(h.ids.Generate(), result.Program, report, fatal)
	if err != nil {
		return err
	}
	if _, _, err := h.store.WriteRun(ctx, run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	result.RunID = run.ID
	return nil
}

// checkExpectation compares the observed outcome with the expected one.
func checkExpectation(result *Result, expect Expectation) {
	if result.Outcome != expect.Result {
		msg := fmt.Sprintf("expected result %s, got %s", expect.Result, result.Outcome)
		if result.Err != nil {
			msg += ": " + result.Err.Error()
		}
		result.AddError(msg)
		return
	}

	switch expect.Result {
	case OutcomeExecutionOrder:
		if len(expect.Hazards) == 0 {
			return
		}
		got := make([]HazardEdge, len(result.Hazards()))
		for i, h := range result.Hazards() {
			got[i] = HazardEdge{Producer: h.ProducerName, Consumer: h.ConsumerName}
		}
		if !slices.Equal(got, expect.Hazards) {
			result.AddError(fmt.Sprintf("expected hazards %v, got %v", expect.Hazards, got))
		}
	case OutcomeUnknownEvent:
		if expect.EventID == nil {
			return
		}
		var ue *schedule.UnknownEventError
		if errors.As(result.Err, &ue) && ue.EventID != *expect.EventID {
			result.AddError(fmt.Sprintf("expected unknown event %d, got %d", *expect.EventID, ue.EventID))
		}
	}
}
