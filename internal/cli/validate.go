package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/schedcheck/internal/compiler"
)

// ValidationResult holds validation results for every file checked.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// FileValidation holds the validation result of one program file.
type FileValidation struct {
	Path    string                     `json:"path"`
	Program string                     `json:"program,omitempty"`
	Valid   bool                       `json:"valid"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <program-or-dir>...",
		Short: "Statically check programs without simulating them",
		Long: `Check program files for problems that make them impossible to verify:
missing names, duplicate bindings, forward or undefined references, and
malformed set_stream/add_event/wait_event arguments.

Events that are never waited on are reported as advisory and do not fail
validation. Directories are searched recursively for .yaml, .yml, .json
and .cue files.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	files, err := expandProgramPaths(paths)
	if err != nil {
		return commandError(formatter, loadErrorCode(err), "failed to find programs", err)
	}
	formatter.VerboseLog("Found %d program file(s)", len(files))

	result := ValidationResult{
		Valid: true,
		Files: make([]FileValidation, 0, len(files)),
	}
	for _, path := range files {
		fv := validateFile(path)
		formatter.VerboseLog("Validated %s: %d finding(s)", path, len(fv.Errors))
		if !fv.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if formatter.Format == "json" {
		return outputValidateJSON(formatter, result)
	}
	return outputValidateText(formatter, result)
}

// expandProgramPaths replaces directories with the program files they
// contain. Explicit file arguments are kept whatever their extension.
func expandProgramPaths(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "path not found", Err: err}
		}
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: fmt.Sprintf("error accessing path: %v", err), Err: err}
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		found, err := FindProgramFiles(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Path: path, Message: fmt.Sprintf("error scanning directory: %v", err), Err: err}
		}
		if len(found) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Path: path, Message: "no program files found"}
		}
		files = append(files, found...)
	}
	return files, nil
}

// validateFile loads and validates one program. Load failures are reported
// as validation errors so every file is checked.
func validateFile(path string) FileValidation {
	fv := FileValidation{Path: path}

	prog, err := LoadProgramFile(path, nil)
	if err != nil {
		ve := compiler.ValidationError{
			Field:   "load",
			Message: err.Error(),
			Code:    loadErrorCode(err),
		}
		var le *LoadError
		if errors.As(err, &le) {
			ve.Message = le.Message
			ve.Line = le.Line
		}
		fv.Errors = []compiler.ValidationError{ve}
		return fv
	}

	fv.Program = prog.Name
	fv.Errors = compiler.Validate(prog)
	fv.Valid = !compiler.HasFatal(fv.Errors)
	return fv
}

func outputValidateJSON(formatter *OutputFormatter, result ValidationResult) error {
	if result.Valid {
		return formatter.Success(result)
	}

	first := firstFatal(result)
	response := CLIResponse{
		Status: "error",
		Data:   result,
		Error: &CLIError{
			Code:    first.Code,
			Message: first.Message,
		},
	}
	if err := formatter.JSON(response); err != nil {
		return err
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", countFatal(result)))
}

func outputValidateText(formatter *OutputFormatter, result ValidationResult) error {
	w := formatter.Writer

	for _, fv := range result.Files {
		mark := "✓"
		if !fv.Valid {
			mark = "✗"
		}
		if fv.Program != "" {
			fmt.Fprintf(w, "%s %s (%s)\n", mark, fv.Path, fv.Program)
		} else {
			fmt.Fprintf(w, "%s %s\n", mark, fv.Path)
		}

		for _, e := range fv.Errors {
			prefix := ""
			if !compiler.IsFatal(e) {
				prefix = "warning "
			}
			if e.Line > 0 {
				fmt.Fprintf(w, "  %sline %d: %s: %s: %s\n", prefix, e.Line, e.Code, e.Field, e.Message)
			} else {
				fmt.Fprintf(w, "  %s%s: %s: %s\n", prefix, e.Code, e.Field, e.Message)
			}
		}
	}

	fmt.Fprintln(w)
	if !result.Valid {
		fmt.Fprintf(w, "✗ Validation failed with %d error(s)\n", countFatal(result))
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", countFatal(result)))
	}

	fmt.Fprintln(w, "✓ All programs valid")
	return nil
}

func firstFatal(result ValidationResult) compiler.ValidationError {
	for _, fv := range result.Files {
		for _, e := range fv.Errors {
			if compiler.IsFatal(e) {
				return e
			}
		}
	}
	return compiler.ValidationError{Code: ErrCodeGeneric, Message: "validation failed"}
}

func countFatal(result ValidationResult) int {
	n := 0
	for _, fv := range result.Files {
		for _, e := range fv.Errors {
			if compiler.IsFatal(e) {
				n++
			}
		}
	}
	return n
}
