package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/schedcheck/internal/ir"
	"github.com/roach88/schedcheck/internal/schedule"
	"github.com/roach88/schedcheck/internal/store"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Database     string
	RemoveEvents []int64

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs store.RunIDGenerator
}

// VerifyResult is the payload of a verify run.
type VerifyResult struct {
	Program       string           `json:"program"`
	ProgramDigest string           `json:"program_digest"`
	ReportDigest  string           `json:"report_digest,omitempty"`
	RemovedEvents []int64          `json:"removed_events,omitempty"`
	RunID         string           `json:"run_id,omitempty"`
	Report        *schedule.Report `json:"report,omitempty"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <program>",
		Short: "Check a program for execution-order hazards",
		Long: `Simulate a scheduled program and report every cross-stream data
dependency that no chain of add_event/wait_event pairs orders.

Program files may be YAML, JSON or CUE. With --db, the run is recorded
in a SQLite history database.

Exit codes:
  0 - No hazards
  1 - Hazards, unknown event or malformed program
  2 - Command error (unreadable file, database error)

Examples:
  schedcheck verify ./programs/fan_in.yaml
  schedcheck verify ./programs/fan_in.yaml --remove-events 0,1
  schedcheck verify ./programs/fan_in.cue --db ./history.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().Int64SliceVar(&opts.RemoveEvents, "remove-events", nil, "strip add_event/wait_event statements for these event ids")

	return cmd
}

func runVerify(opts *VerifyOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	prog, err := LoadProgramFile(path, opts.RemoveEvents)
	if err != nil {
		return commandError(formatter, loadErrorCode(err), "failed to load program", err)
	}

	result := VerifyResult{
		Program:       prog.Name,
		RemovedEvents: opts.RemoveEvents,
	}
	result.ProgramDigest, err = ir.ProgramDigest(prog)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, "failed to digest program", err)
	}

	logger.Info("verifying program",
		"program", prog.Name,
		"statements", len(prog.Body),
		"removed_events", len(opts.RemoveEvents))

	report, verr := schedule.Analyze(prog, schedule.WithLogger(logger))
	fatal := verr
	if verr == nil {
		verr = report.Err()
	}
	result.Report = report
	if report != nil {
		result.ReportDigest, err = ir.ReportDigest(result.ProgramDigest, report.Hazards)
		if err != nil {
			return commandError(formatter, ErrCodeGeneric, "failed to digest report", err)
		}
	}

	if opts.Database != "" {
		result.RunID, err = recordRun(cmd.Context(), opts, prog, report, fatal, logger)
		if err != nil {
			return commandError(formatter, ErrCodeStoreFailed, "failed to record run", err)
		}
	}

	logger.Info("verification finished",
		"program", prog.Name,
		"code", schedule.ErrorCode(verr),
		"hazards", len(schedule.HazardsOf(verr)))

	return outputVerify(formatter, result, verr)
}

// recordRun writes the run to the history database and returns its id.
func recordRun(ctx context.Context, opts *VerifyOptions, prog *ir.Program, report *schedule.Report, fatal error, logger *slog.Logger) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	ids := opts.RunIDs
	if ids == nil {
		ids = store.UUIDv7Generator{}
	}
	run, err := store.NewRunRecord(ids.Generate(), prog, report, fatal)
	if err != nil {
		return "", err
	}
	seq, inserted, err := st.WriteRun(ctx, run)
	if err != nil {
		return "", err
	}
	logger.Debug("run recorded", "run_id", run.ID, "seq", seq, "inserted", inserted)
	return run.ID, nil
}

func outputVerify(f *OutputFormatter, result VerifyResult, verr error) error {
	f.VerboseLog("program digest: %s", result.ProgramDigest)
	if result.ReportDigest != "" {
		f.VerboseLog("report digest: %s", result.ReportDigest)
	}

	if f.Format == "json" {
		response := CLIResponse{Status: "ok", Data: result}
		if verr != nil {
			response.Status = "error"
			response.Error = &CLIError{
				Code:    schedule.ErrorCode(verr),
				Message: verr.Error(),
			}
			if hazards := schedule.HazardsOf(verr); len(hazards) > 0 {
				response.Error.Details = hazards
			}
		}
		if err := f.JSON(response); err != nil {
			return err
		}
		return verifyExit(verr)
	}

	w := f.Writer
	r := result.Report
	switch {
	case verr == nil:
		fmt.Fprintf(w, "✓ %s: %d instructions on %d stream(s), %d event(s), %d wait(s), no hazards\n",
			result.Program, r.Instructions, len(r.Streams), r.Events, r.Waits)
	case r != nil:
		fmt.Fprintf(w, "✗ %s: %d execution-order hazard(s) [%s]\n",
			result.Program, len(r.Hazards), schedule.ErrorCode(verr))
		for _, h := range r.Hazards {
			fmt.Fprintf(w, "  %s\n", h)
		}
	default:
		fmt.Fprintf(w, "✗ %s: %v\n", result.Program, verr)
	}

	if r != nil {
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "  warning [%s]: %s\n", warning.Code, warning.Message)
		}
		if f.Verbose {
			for _, sc := range r.Streams {
				fmt.Fprintf(f.GetErrWriter(), "stream %s: %d instruction(s)\n", sc.Stream, sc.Instructions)
			}
		}
	}
	if result.RunID != "" {
		fmt.Fprintf(w, "Recorded run %s\n", result.RunID)
	}

	return verifyExit(verr)
}

// verifyExit maps a verification error to ExitFailure.
func verifyExit(verr error) error {
	if verr == nil {
		return nil
	}
	return WrapExitError(ExitFailure, "verification failed", verr)
}
