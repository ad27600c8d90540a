package harness

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/schedcheck/internal/ir"
	"github.com/roach88/schedcheck/internal/schedule"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string      // Assertion type for categorization
	Expected string      // Human-readable expected outcome
	Actual   string      // Human-readable actual outcome
	Hazards  []ir.Hazard // All hazards found, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Hazards) > 0 {
		fmt.Fprintf(&buf, "\nHazards:\n")
		for i, h := range e.Hazards {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, h)
		}
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion against the result and returns
// one message per failure. Assertions about the report fail when
// verification stopped before producing one.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion) error {
	if result.Report == nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: "a verification report",
			Actual:   fmt.Sprintf("verification stopped: %v", result.Err),
		}
	}

	switch a.Type {
	case AssertHazardCount:
		return assertHazardCount(result.Report, a)
	case AssertStreamInstructions:
		return assertStreamInstructions(result.Report, a)
	case AssertWarning:
		return assertWarning(result.Report, a)
	case AssertNoWarnings:
		return assertNoWarnings(result.Report)
	case AssertDependsOn:
		return assertDependsOn(result, a)
	case AssertEdgeCovered:
		return assertEdgeCovered(result, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func assertHazardCount(r *schedule.Report, a Assertion) error {
	if len(r.Hazards) != a.Count {
		return &AssertionError{
			Type:     AssertHazardCount,
			Expected: fmt.Sprintf("%d hazards", a.Count),
			Actual:   fmt.Sprintf("%d hazards", len(r.Hazards)),
			Hazards:  r.Hazards,
		}
	}
	return nil
}

func assertStreamInstructions(r *schedule.Report, a Assertion) error {
	stream, err := parseStream(a.Stream)
	if err != nil {
		return err
	}

	count := 0
	for _, sc := range r.Streams {
		if sc.Stream == stream {
			count = sc.Instructions
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertStreamInstructions,
			Expected: fmt.Sprintf("%d instructions on stream %s", a.Count, stream),
			Actual:   fmt.Sprintf("%d instructions", count),
		}
	}
	return nil
}

func assertWarning(r *schedule.Report, a Assertion) error {
	for _, w := range r.Warnings {
		if string(w.Code) == a.Code && (a.EventID == nil || w.EventID == *a.EventID) {
			return nil
		}
	}

	want := a.Code
	if a.EventID != nil {
		want = fmt.Sprintf("%s for event %d", a.Code, *a.EventID)
	}
	return &AssertionError{
		Type:     AssertWarning,
		Expected: "warning " + want,
		Actual:   fmt.Sprintf("warnings %v", warningCodes(r.Warnings)),
	}
}

func assertNoWarnings(r *schedule.Report) error {
	if len(r.Warnings) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertNoWarnings,
		Expected: "no warnings",
		Actual:   fmt.Sprintf("warnings %v", warningCodes(r.Warnings)),
	}
}

// assertDependsOn checks that the consumer reads the producer, directly or
// through intermediate instructions.
func assertDependsOn(result *Result, a Assertion) error {
	producer, consumer, err := resolveEdge(result, a)
	if err != nil {
		return err
	}

	if !slices.Contains(schedule.Producers(result.Instructions, consumer), producer) {
		return &AssertionError{
			Type:     AssertDependsOn,
			Expected: fmt.Sprintf("%s depends on %s", a.Consumer, a.Producer),
			Actual:   "no dependency path",
		}
	}
	return nil
}

// assertEdgeCovered checks that the consumer reads the producer directly and
// that the read was not reported as a hazard.
func assertEdgeCovered(result *Result, a Assertion) error {
	producer, consumer, err := resolveEdge(result, a)
	if err != nil {
		return err
	}

	if !slices.Contains(result.Instructions[consumer].Operands, producer) {
		return &AssertionError{
			Type:     AssertEdgeCovered,
			Expected: fmt.Sprintf("%s reads %s", a.Consumer, a.Producer),
			Actual:   "not an operand",
		}
	}
	for _, h := range result.Report.Hazards {
		if h.Producer == producer && h.Consumer == consumer {
			return &AssertionError{
				Type:     AssertEdgeCovered,
				Expected: fmt.Sprintf("%s -> %s synchronized", a.Producer, a.Consumer),
				Actual:   "reported as hazard",
				Hazards:  result.Report.Hazards,
			}
		}
	}
	return nil
}

func resolveEdge(result *Result, a Assertion) (producer, consumer int, err error) {
	producer = result.instructionByName(a.Producer)
	if producer < 0 {
		return 0, 0, fmt.Errorf("%s: unknown instruction %q", a.Type, a.Producer)
	}
	consumer = result.instructionByName(a.Consumer)
	if consumer < 0 {
		return 0, 0, fmt.Errorf("%s: unknown instruction %q", a.Type, a.Consumer)
	}
	return producer, consumer, nil
}

func warningCodes(ws []schedule.Warning) []string {
	codes := make([]string, len(ws))
	for i, w := range ws {
		codes[i] = fmt.Sprintf("%s(%d)", w.Code, w.EventID)
	}
	return codes
}

// parseStream parses "device:stream" or "default".
func parseStream(s string) (ir.StreamID, error) {
	if s == "default" {
		return ir.DefaultStream, nil
	}
	dev, stream, ok := strings.Cut(s, ":")
	if !ok {
		return ir.StreamID{}, fmt.Errorf("invalid stream %q: want device:stream or default", s)
	}
	d, err := strconv.ParseInt(dev, 10, 64)
	if err != nil {
		return ir.StreamID{}, fmt.Errorf("invalid stream %q: %w", s, err)
	}
	n, err := strconv.ParseInt(stream, 10, 64)
	if err != nil {
		return ir.StreamID{}, fmt.Errorf("invalid stream %q: %w", s, err)
	}
	if d < 0 || n < 0 {
		return ir.StreamID{}, fmt.Errorf("invalid stream %q: ids must be non-negative", s)
	}
	return ir.StreamID{Device: d, Stream: n}, nil
}
