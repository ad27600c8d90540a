package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/schedcheck/internal/ir"
)

// LoadCUE compiles a single CUE file holding one program.
func LoadCUE(path string) (*ir.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program file: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	return CompileProgram(v)
}

// CompileProgram parses a CUE value into a Program.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`name: "p", params: ["x"], body: [...]`)
//	prog, err := CompileProgram(v)
func CompileProgram(v cue.Value) (*ir.Program, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	p := &ir.Program{}

	if nameVal := v.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
		name, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		p.Name = name
	}

	if paramsVal := v.LookupPath(cue.ParsePath("params")); paramsVal.Exists() {
		iter, err := paramsVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			param, err := iter.Value().String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			p.Params = append(p.Params, param)
		}
	}

	bodyVal := v.LookupPath(cue.ParsePath("body"))
	if !bodyVal.Exists() {
		return nil, &CompileError{
			Field:   "body",
			Message: "body is required",
			Pos:     v.Pos(),
		}
	}
	iter, err := bodyVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for i := 0; iter.Next(); i++ {
		st, err := compileStatement(i, iter.Value())
		if err != nil {
			return nil, err
		}
		p.Body = append(p.Body, st)
	}

	return p, nil
}

func compileStatement(i int, v cue.Value) (ir.Statement, error) {
	st := ir.Statement{Line: v.Pos().Line()}

	// let is a CUE keyword, so the label is always quoted in source.
	if letVal := v.LookupPath(cue.MakePath(cue.Str("let"))); letVal.Exists() {
		let, err := letVal.String()
		if err != nil {
			return st, formatCUEError(err)
		}
		st.Let = let
	}

	opVal := v.LookupPath(cue.ParsePath("op"))
	if !opVal.Exists() {
		return st, &CompileError{
			Field:   fmt.Sprintf("body[%d].op", i),
			Message: "op is required",
			Pos:     v.Pos(),
		}
	}
	op, err := opVal.String()
	if err != nil {
		return st, formatCUEError(err)
	}
	st.Op = op

	argsVal := v.LookupPath(cue.ParsePath("args"))
	if !argsVal.Exists() {
		return st, nil
	}
	args, err := argsVal.List()
	if err != nil {
		return st, formatCUEError(err)
	}
	for j := 0; args.Next(); j++ {
		arg, err := cueArg(fmt.Sprintf("body[%d].args[%d]", i, j), args.Value())
		if err != nil {
			return st, err
		}
		st.Args = append(st.Args, arg)
	}
	return st, nil
}

// cueArg converts one argument. Floats are forbidden.
func cueArg(field string, v cue.Value) (ir.Arg, error) {
	switch v.IncompleteKind() {
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return ir.Arg{}, formatCUEError(err)
		}
		return ir.ConstArg(n), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return ir.Arg{}, formatCUEError(err)
		}
		return ir.RefArg(s), nil
	case cue.FloatKind, cue.NumberKind:
		return ir.Arg{}, &CompileError{
			Field:   field,
			Message: "float arguments are forbidden, use an integer",
			Pos:     v.Pos(),
		}
	default:
		return ir.Arg{}, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unsupported argument kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
// CUE errors carry Pos; YAML errors carry only Line.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
	Line    int
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
