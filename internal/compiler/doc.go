// Package compiler turns program source files into ir.Program values and
// checks them statically.
//
// Programs are written in YAML (or JSON, which the YAML decoder also reads)
// or in CUE. All formats share one shape:
//
//	name: simple_branches
//	params: [x]
//	body:
//	  - {let: x_0, op: set_stream, args: [0, 0]}
//	  - {let: x_1, op: atan, args: [x]}
//	  - {let: x_2, op: add_event, args: [0]}
//
// In CUE the "let" label must be quoted, since let is a CUE keyword.
//
// Integer arguments are constants; string arguments reference a parameter or
// an earlier binding. Floats are rejected.
package compiler
