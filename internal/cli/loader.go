package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/roach88/schedcheck/internal/compiler"
	"github.com/roach88/schedcheck/internal/ir"
)

// CLI error codes (E001-E099). Verification codes come from the schedule
// package, validation codes from the compiler package.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No program files found
	ErrCodeLoadFailed  = "E004" // Program file could not be parsed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeStoreFailed = "E006" // Run history database error
)

// programExtensions are the file extensions compiler.LoadProgram accepts.
var programExtensions = []string{".yaml", ".yml", ".json", ".cue"}

// LoadError represents an error that occurred while loading a program file.
type LoadError struct {
	Code    string
	Message string
	Path    string
	Line    int // source line if the parser reported one
	Err     error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", e.Path, e.Line, e.Code, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadProgramFile loads a single program file and strips the add_event and
// wait_event statements of removeEvents.
func LoadProgramFile(path string, removeEvents []int64) (*ir.Program, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "program file not found", Err: err}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: fmt.Sprintf("error accessing program file: %v", err), Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "is a directory, want a program file"}
	}

	p, err := compiler.LoadProgram(path)
	if err != nil {
		return nil, convertLoadError(path, err)
	}
	for _, id := range removeEvents {
		if id < 0 {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("event id must be non-negative, got %d", id)}
		}
	}
	if len(removeEvents) > 0 {
		p = p.WithoutEvents(removeEvents...)
	}
	return p, nil
}

// convertLoadError keeps the source line of compiler errors.
func convertLoadError(path string, err error) *LoadError {
	le := &LoadError{Code: ErrCodeLoadFailed, Path: path, Message: err.Error(), Err: err}

	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		le.Message = compileErr.Message
		if compileErr.Field != "" {
			le.Message = compileErr.Field + ": " + compileErr.Message
		}
		le.Line = compileErr.Line
		if compileErr.Pos.IsValid() {
			le.Line = compileErr.Pos.Line()
		}
		return le
	}

	// compiler.LoadProgram prefixes the path; drop it since LoadError prints it.
	le.Message = strings.TrimPrefix(le.Message, path+": ")
	return le
}

// FindProgramFiles returns the program files under dir, sorted by path.
// Directories named "golden" are skipped.
func FindProgramFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && info.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}
		if slices.Contains(programExtensions, strings.ToLower(filepath.Ext(path))) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)
	return files, nil
}

// loadErrorCode returns the CLI code carried by err, or ErrCodeGeneric.
func loadErrorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ErrCodeGeneric
}
