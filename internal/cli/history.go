package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/schedcheck/internal/ir"
	"github.com/roach88/schedcheck/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Program  string // program file or digest - optional
	RunID    string // single run - optional
	Limit    int
}

// HistoryResult holds the runs listed by the history command.
type HistoryResult struct {
	ProgramDigest string         `json:"program_digest,omitempty"`
	Runs          []ir.RunRecord `json:"runs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded verification runs",
		Long: `List runs recorded by "schedcheck verify --db", oldest first.

--program narrows the list to one program, given either as a program
file (its digest is computed) or as a digest. --run shows a single run
with its hazards.

Examples:
  schedcheck history --db ./history.db
  schedcheck history --db ./history.db --limit 10
  schedcheck history --db ./history.db --program ./programs/fan_in.yaml
  schedcheck history --db ./history.db --run 0190a5c2-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Program, "program", "", "program file or digest to filter by")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show a single run by id")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Reading must not create an empty database as a side effect.
	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), nil)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return commandError(formatter, ErrCodeStoreFailed, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if errors.Is(err, sql.ErrNoRows) {
			return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("run not found: %s", opts.RunID), nil)
		}
		if err != nil {
			return commandError(formatter, ErrCodeStoreFailed, "failed to read run", err)
		}
		return outputHistory(formatter, HistoryResult{Runs: []ir.RunRecord{run}}, true)
	}

	result := HistoryResult{}
	if opts.Program != "" {
		result.ProgramDigest, err = resolveProgramDigest(opts.Program)
		if err != nil {
			return commandError(formatter, loadErrorCode(err), "failed to load program", err)
		}
		runs, err := st.ReadRunsForProgram(ctx, result.ProgramDigest)
		if err != nil {
			return commandError(formatter, ErrCodeStoreFailed, "failed to read runs", err)
		}
		if opts.Limit > 0 && len(runs) > opts.Limit {
			runs = runs[len(runs)-opts.Limit:]
		}
		result.Runs = runs
	} else {
		result.Runs, err = st.ReadRuns(ctx, opts.Limit)
		if err != nil {
			return commandError(formatter, ErrCodeStoreFailed, "failed to read runs", err)
		}
	}

	return outputHistory(formatter, result, opts.Verbose)
}

// resolveProgramDigest returns the digest of the program file at arg, or
// arg itself when no such file exists.
func resolveProgramDigest(arg string) (string, error) {
	if _, err := os.Stat(arg); err != nil {
		return arg, nil
	}
	prog, err := LoadProgramFile(arg, nil)
	if err != nil {
		return "", err
	}
	return ir.ProgramDigest(prog)
}

func outputHistory(f *OutputFormatter, result HistoryResult, withHazards bool) error {
	if result.Runs == nil {
		result.Runs = []ir.RunRecord{}
	}
	if f.Format == "json" {
		return f.Success(result)
	}

	w := f.Writer
	if len(result.Runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-5s %-36s %-8s %-6s %-8s %s\n", "SEQ", "RUN", "STATUS", "CODE", "HAZARDS", "PROGRAM")
	for _, run := range result.Runs {
		code := run.ErrorCode
		if code == "" {
			code = "-"
		}
		fmt.Fprintf(w, "%-5d %-36s %-8s %-6s %-8d %s\n",
			run.Seq, run.ID, run.Status, code, len(run.Hazards), run.ProgramName)

		if withHazards {
			for _, h := range run.Hazards {
				fmt.Fprintf(w, "      %s\n", h)
			}
			if run.Status == ir.RunStatusError && run.Message != "" {
				fmt.Fprintf(w, "      %s\n", strings.TrimSpace(run.Message))
			}
		}
	}
	return nil
}
