package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/schedcheck/internal/ir"
)

// rawProgram mirrors the YAML program layout before argument resolution.
type rawProgram struct {
	Name   string         `yaml:"name"`
	Params []string       `yaml:"params"`
	Body   []rawStatement `yaml:"body"`
}

type rawStatement struct {
	Let  string      `yaml:"let"`
	Op   string      `yaml:"op"`
	Args []yaml.Node `yaml:"args"`
	line int
}

var statementFields = map[string]bool{"let": true, "op": true, "args": true}

// UnmarshalYAML records the statement's line. Node.Decode does not inherit
// the decoder's KnownFields setting, so unknown keys are rejected here.
func (s *rawStatement) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: statement must be a mapping", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i]
		if !statementFields[key.Value] {
			return fmt.Errorf("line %d: field %s not found in statement", key.Line, key.Value)
		}
	}

	type plain rawStatement
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*s = rawStatement(p)
	s.line = value.Line
	return nil
}

// LoadYAML parses a program from YAML or JSON.
// Unknown fields are rejected so typos like "agrs:" fail loudly.
func LoadYAML(r io.Reader) (*ir.Program, error) {
	var raw rawProgram
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &CompileError{Field: "program", Message: "empty program file"}
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	p := &ir.Program{
		Name:   raw.Name,
		Params: raw.Params,
		Body:   make([]ir.Statement, 0, len(raw.Body)),
	}
	for i, rs := range raw.Body {
		st := ir.Statement{Let: rs.Let, Op: rs.Op, Line: rs.line}
		for j := range rs.Args {
			arg, err := yamlArg(&rs.Args[j])
			if err != nil {
				return nil, &CompileError{
					Field:   fmt.Sprintf("body[%d].args[%d]", i, j),
					Message: err.Error(),
					Line:    rs.Args[j].Line,
				}
			}
			st.Args = append(st.Args, arg)
		}
		p.Body = append(p.Body, st)
	}
	return p, nil
}

func yamlArg(n *yaml.Node) (ir.Arg, error) {
	if n.Kind != yaml.ScalarNode {
		return ir.Arg{}, fmt.Errorf("argument must be an integer or a name")
	}
	switch n.ShortTag() {
	case "!!int":
		v, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return ir.Arg{}, fmt.Errorf("integer argument %q out of range", n.Value)
		}
		return ir.ConstArg(v), nil
	case "!!str":
		return ir.RefArg(n.Value), nil
	case "!!float":
		return ir.Arg{}, fmt.Errorf("float argument %s is forbidden, use an integer", n.Value)
	default:
		return ir.Arg{}, fmt.Errorf("unsupported argument %q (%s)", n.Value, n.ShortTag())
	}
}

// LoadProgram reads a program file, choosing the format by extension:
// .yaml, .yml and .json use LoadYAML; .cue uses LoadCUE.
// A program without a name takes the file's base name.
func LoadProgram(path string) (*ir.Program, error) {
	var (
		p   *ir.Program
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".json":
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read program file: %w", err)
		}
		p, err = LoadYAML(bytes.NewReader(data))
	case ".cue":
		p, err = LoadCUE(path)
	default:
		return nil, fmt.Errorf("unsupported program file extension %q (want .yaml, .yml, .json or .cue)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}
