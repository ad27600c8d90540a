package harness

import (
	"github.com/roach88/schedcheck/internal/ir"
	"github.com/roach88/schedcheck/internal/schedule"
)

// Verification outcomes, as written in scenario files.
const (
	OutcomeOK             = "ok"
	OutcomeExecutionOrder = "execution_order"
	OutcomeUnknownEvent   = "unknown_event"
	OutcomeMalformed      = "malformed"
)

// Outcomes lists every valid outcome.
var Outcomes = []string{OutcomeOK, OutcomeExecutionOrder, OutcomeUnknownEvent, OutcomeMalformed}

// outcomeOf classifies the error returned by a verification run.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case schedule.IsExecutionOrder(err):
		return OutcomeExecutionOrder
	case schedule.IsUnknownEvent(err):
		return OutcomeUnknownEvent
	default:
		return OutcomeMalformed
	}
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if the expectation and every assertion hold.
	Pass bool `json:"pass"`

	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// Program is the verified program, after event removal.
	Program *ir.Program `json:"-"`

	// Instructions is the extracted instruction list. Empty when extraction
	// failed.
	Instructions []ir.Instruction `json:"-"`

	// Outcome is the observed verification outcome.
	Outcome string `json:"outcome"`

	// Err is the verification error, if any.
	Err error `json:"-"`

	// Report is nil when verification stopped with a fatal error.
	Report *schedule.Report `json:"report,omitempty"`

	// ProgramDigest identifies the verified program.
	ProgramDigest string `json:"program_digest"`

	// ReportDigest identifies the hazards found. Empty when Report is nil.
	ReportDigest string `json:"report_digest,omitempty"`

	// RunID is set when the run was recorded to a store.
	RunID string `json:"run_id,omitempty"`

	// Errors contains expectation and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(scenario string) *Result {
	return &Result{
		Pass:     true,
		Scenario: scenario,
		Errors:   []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Hazards returns the hazards found, or nil.
func (r *Result) Hazards() []ir.Hazard {
	if r.Report == nil {
		return nil
	}
	return r.Report.Hazards
}

// instructionByName returns the position of the instruction bound to name,
// or -1.
func (r *Result) instructionByName(name string) int {
	for _, in := range r.Instructions {
		if in.Name == name {
			return in.Position
		}
	}
	return -1
}
