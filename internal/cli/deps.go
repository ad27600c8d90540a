package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/schedcheck/internal/ir"
	"github.com/roach88/schedcheck/internal/schedule"
)

// DepsOptions holds flags for the deps command.
type DepsOptions struct {
	*RootOptions
	CrossStream  bool
	RemoveEvents []int64
}

// DepsResult lists the producers of one instruction.
type DepsResult struct {
	Program     string       `json:"program"`
	Instruction Dependency   `json:"instruction"`
	CrossStream bool         `json:"cross_stream"`
	Producers   []Dependency `json:"producers"`
}

// Dependency describes one instruction in a deps listing.
type Dependency struct {
	Position int         `json:"position"`
	Name     string      `json:"name,omitempty"`
	Op       string      `json:"op"`
	Stream   ir.StreamID `json:"stream"`
}

// NewDepsCommand creates the deps command.
func NewDepsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DepsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "deps <program> <name>",
		Short: "List the instructions a binding depends on",
		Long: `List every instruction the named binding reads, directly or through
intermediate instructions, in program order.

With --cross-stream only producers issued on a different stream are
listed; these are the reads that need event synchronization.

Examples:
  schedcheck deps ./programs/fan_in.yaml x_13
  schedcheck deps ./programs/fan_in.yaml x_13 --cross-stream --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.CrossStream, "cross-stream", false, "only list producers on other streams")
	cmd.Flags().Int64SliceVar(&opts.RemoveEvents, "remove-events", nil, "strip add_event/wait_event statements for these event ids")

	return cmd
}

func runDeps(opts *DepsOptions, path, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	prog, err := LoadProgramFile(path, opts.RemoveEvents)
	if err != nil {
		return commandError(formatter, loadErrorCode(err), "failed to load program", err)
	}

	instrs, err := schedule.Extract(prog)
	if err != nil {
		_ = formatter.Error(schedule.ErrorCode(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "program is malformed", err)
	}

	pos := -1
	for _, in := range instrs {
		if in.Name == name {
			pos = in.Position
			break
		}
	}
	if pos < 0 {
		return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("no instruction named %q in %s", name, prog.Name), nil)
	}

	var producers []int
	if opts.CrossStream {
		producers = schedule.CrossStreamProducers(instrs, pos)
	} else {
		producers = schedule.Producers(instrs, pos)
	}

	result := DepsResult{
		Program:     prog.Name,
		Instruction: dependencyOf(instrs[pos]),
		CrossStream: opts.CrossStream,
		Producers:   make([]Dependency, 0, len(producers)),
	}
	for _, p := range producers {
		result.Producers = append(result.Producers, dependencyOf(instrs[p]))
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s@%d (stream %s) depends on %d instruction(s)\n",
		name, pos, result.Instruction.Stream, len(result.Producers))
	for _, d := range result.Producers {
		label := d.Name
		if label == "" {
			label = fmt.Sprintf("%%%d", d.Position)
		}
		fmt.Fprintf(w, "  %s@%d %s (stream %s)\n", label, d.Position, d.Op, d.Stream)
	}
	return nil
}

func dependencyOf(in ir.Instruction) Dependency {
	return Dependency{
		Position: in.Position,
		Name:     in.Name,
		Op:       in.Op,
		Stream:   in.Stream,
	}
}
