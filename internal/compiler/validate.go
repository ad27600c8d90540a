package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/schedcheck/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrProgramNameEmpty  = "E101" // program name is required
	ErrDuplicateName     = "E102" // duplicate parameter or binding name
	ErrControlArity      = "E103" // control op with wrong argument count
	ErrControlArgNotInt  = "E104" // control op argument is not an integer constant
	ErrNegativeID        = "E105" // negative device, stream or event id
	ErrOpEmpty           = "E106" // statement without an op
	ErrUnresolvedRef     = "E107" // reference to an undefined or later name
	ErrEmptyParamName    = "E108" // empty parameter name
	ErrEventNeverWaited  = "E109" // add_event with no later wait_event for its id
	ErrWaitWithoutSignal = "E110" // wait_event with no earlier add_event for its id
)

// ValidationError represents a static program error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// controlArity is the required argument count of each control op.
var controlArity = map[string]int{
	ir.OpSetStream: 2,
	ir.OpAddEvent:  1,
	ir.OpWaitEvent: 1,
}

// Validate checks a program without simulating it.
// Returns all errors found (does not fail-fast), in body order.
//
// E109 is reported for completeness but does not make a program unsound;
// callers that only care about verifiability can filter it with IsFatal.
func Validate(p *ir.Program) []ValidationError {
	var errs []ValidationError

	// E101: program name is required
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "program name is required and must be non-empty",
			Code:    ErrProgramNameEmpty,
		})
	}

	defined := make(map[string]bool)
	for i, param := range p.Params {
		field := fmt.Sprintf("params[%d]", i)
		if param == "" {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "parameter name must be non-empty",
				Code:    ErrEmptyParamName,
			})
			continue
		}
		if defined[param] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate parameter name: %q", param),
				Code:    ErrDuplicateName,
			})
		}
		defined[param] = true
	}

	// Names bound anywhere in the body, to tell forward from dangling refs.
	boundLater := make(map[string]bool)
	for _, st := range p.Body {
		if st.Let != "" {
			boundLater[st.Let] = true
		}
	}

	signalled := make(map[int64]bool)
	waited := make(map[int64]bool)
	type signal struct {
		field string
		line  int
	}
	firstSignal := make(map[int64]signal)
	var signalOrder []int64

	for i, st := range p.Body {
		field := fmt.Sprintf("body[%d]", i)

		// E106: op is required
		if strings.TrimSpace(st.Op) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".op",
				Message: "op is required",
				Code:    ErrOpEmpty,
				Line:    st.Line,
			})
		}

		kind := ir.KindOf(st.Op)
		if kind.IsControl() {
			ids, controlErrs := validateControl(field, st)
			errs = append(errs, controlErrs...)

			if len(ids) == 1 {
				id := ids[0]
				switch kind {
				case ir.KindAddEvent:
					if !signalled[id] {
						firstSignal[id] = signal{field: field, line: st.Line}
						signalOrder = append(signalOrder, id)
					}
					signalled[id] = true
				case ir.KindWaitEvent:
					// E110: wait without an earlier signal
					if !signalled[id] {
						errs = append(errs, ValidationError{
							Field:   field + ".args[0]",
							Message: fmt.Sprintf("wait_event %d has no earlier add_event", id),
							Code:    ErrWaitWithoutSignal,
							Line:    st.Line,
						})
					}
					if signalled[id] {
						waited[id] = true
					}
				}
			}
		} else {
			for j, a := range st.Args {
				if a.IsConst || defined[a.Ref] {
					continue
				}
				// E107: unresolved reference
				msg := fmt.Sprintf("undefined name %q", a.Ref)
				if boundLater[a.Ref] {
					msg = fmt.Sprintf("forward reference to %q", a.Ref)
				}
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.args[%d]", field, j),
					Message: msg,
					Code:    ErrUnresolvedRef,
					Line:    st.Line,
				})
			}
		}

		if st.Let == "" {
			continue
		}
		// E102: duplicate binding name
		if defined[st.Let] {
			errs = append(errs, ValidationError{
				Field:   field + ".let",
				Message: fmt.Sprintf("duplicate name: %q", st.Let),
				Code:    ErrDuplicateName,
				Line:    st.Line,
			})
		}
		defined[st.Let] = true
	}

	// E109: signalled but never waited
	for _, id := range signalOrder {
		if waited[id] {
			continue
		}
		s := firstSignal[id]
		errs = append(errs, ValidationError{
			Field:   s.field + ".args[0]",
			Message: fmt.Sprintf("event %d is never waited on", id),
			Code:    ErrEventNeverWaited,
			Line:    s.line,
		})
	}

	return errs
}

// validateControl checks arity and argument kinds of a control statement.
// Returns the statement's integer arguments when all of them are valid.
func validateControl(field string, st ir.Statement) ([]int64, []ValidationError) {
	var errs []ValidationError

	want := controlArity[st.Op]
	// E103: arity
	if len(st.Args) != want {
		return nil, []ValidationError{{
			Field:   field + ".args",
			Message: fmt.Sprintf("%s takes %d argument(s), got %d", st.Op, want, len(st.Args)),
			Code:    ErrControlArity,
			Line:    st.Line,
		}}
	}

	ids := make([]int64, 0, want)
	for j, a := range st.Args {
		argField := fmt.Sprintf("%s.args[%d]", field, j)
		// E104: must be an integer constant
		if !a.IsConst {
			errs = append(errs, ValidationError{
				Field:   argField,
				Message: fmt.Sprintf("%s argument must be an integer constant, got reference %q", st.Op, a.Ref),
				Code:    ErrControlArgNotInt,
				Line:    st.Line,
			})
			continue
		}
		// E105: ids are non-negative
		if a.Const < 0 {
			errs = append(errs, ValidationError{
				Field:   argField,
				Message: fmt.Sprintf("%s argument must be non-negative, got %d", st.Op, a.Const),
				Code:    ErrNegativeID,
				Line:    st.Line,
			})
			continue
		}
		ids = append(ids, a.Const)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return ids, nil
}

// IsFatal reports whether a validation error makes the program impossible
// to verify. Unwaited events are advisory.
func IsFatal(e ValidationError) bool {
	return e.Code != ErrEventNeverWaited
}

// HasFatal reports whether any error in errs is fatal.
func HasFatal(errs []ValidationError) bool {
	for _, e := range errs {
		if IsFatal(e) {
			return true
		}
	}
	return false
}
