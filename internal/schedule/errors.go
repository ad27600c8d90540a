package schedule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/schedcheck/internal/ir"
)

// Sentinel kinds, matched with errors.Is.
var (
	ErrMalformedProgram = errors.New("malformed program")
	ErrUnknownEvent     = errors.New("unknown event")
	ErrExecutionOrder   = errors.New("execution order hazard")
)

// Error codes (E200-E299).
const (
	CodeMalformedProgram = "E201"
	CodeUnknownEvent     = "E202"
	CodeExecutionOrder   = "E203"
)

// MalformedProgramError reports a program the verifier cannot interpret:
// forward or dangling operand references, duplicate names, or control
// instructions without valid integer arguments. Extraction stops at the
// first one.
type MalformedProgramError struct {
	// Statement is the index of the offending statement in the program body.
	Statement int

	// Name is the binding name of the offending statement, if any.
	Name string

	// Ref is the unresolved reference, if the problem is a reference.
	Ref string

	// Line is the source line when the loader recorded one.
	Line int

	// Message is a human-readable description.
	Message string
}

func (e *MalformedProgramError) Error() string {
	loc := fmt.Sprintf("statement %d", e.Statement)
	if e.Name != "" {
		loc = fmt.Sprintf("statement %d (%s)", e.Statement, e.Name)
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("%s line %d", loc, e.Line)
	}
	return fmt.Sprintf("%s: %s: %s: %s", CodeMalformedProgram, ErrMalformedProgram, loc, e.Message)
}

func (e *MalformedProgramError) Unwrap() error { return ErrMalformedProgram }

// UnknownEventError reports a wait_event whose event id has no add_event
// earlier in program order.
type UnknownEventError struct {
	EventID  int64
	Position int
	Name     string
	Stream   ir.StreamID
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("%s: %s: wait_event %d at position %d (%s, stream %s) has no prior add_event",
		CodeUnknownEvent, ErrUnknownEvent, e.EventID, e.Position, e.Name, e.Stream)
}

func (e *UnknownEventError) Unwrap() error { return ErrUnknownEvent }

// ExecutionOrderError reports every unsynchronized cross-stream dependency
// found in one run, ordered by consumer position then operand order.
type ExecutionOrderError struct {
	Hazards []ir.Hazard
}

func (e *ExecutionOrderError) Error() string {
	parts := make([]string, len(e.Hazards))
	for i, h := range e.Hazards {
		parts[i] = h.String()
	}
	return fmt.Sprintf("%s: %s: %d unsynchronized cross-stream dependencies: %s",
		CodeExecutionOrder, ErrExecutionOrder, len(e.Hazards), strings.Join(parts, "; "))
}

func (e *ExecutionOrderError) Unwrap() error { return ErrExecutionOrder }

// IsMalformedProgram returns true if err is or wraps a MalformedProgramError.
func IsMalformedProgram(err error) bool {
	var me *MalformedProgramError
	return errors.As(err, &me)
}

// IsUnknownEvent returns true if err is or wraps an UnknownEventError.
func IsUnknownEvent(err error) bool {
	var ue *UnknownEventError
	return errors.As(err, &ue)
}

// IsExecutionOrder returns true if err is or wraps an ExecutionOrderError.
func IsExecutionOrder(err error) bool {
	var ee *ExecutionOrderError
	return errors.As(err, &ee)
}

// HazardsOf returns the hazards carried by err, or nil.
func HazardsOf(err error) []ir.Hazard {
	var ee *ExecutionOrderError
	if errors.As(err, &ee) {
		return ee.Hazards
	}
	return nil
}

// ErrorCode returns the E2xx code for a verification error, or "" for nil
// and errors from elsewhere.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case IsMalformedProgram(err):
		return CodeMalformedProgram
	case IsUnknownEvent(err):
		return CodeUnknownEvent
	case IsExecutionOrder(err):
		return CodeExecutionOrder
	default:
		return ""
	}
}

func malformedf(stmt int, st ir.Statement, ref string, format string, args ...any) *MalformedProgramError {
	return &MalformedProgramError{
		Statement: stmt,
		Name:      st.Let,
		Ref:       ref,
		Line:      st.Line,
		Message:   fmt.Sprintf(format, args...),
	}
}
