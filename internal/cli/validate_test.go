package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand_ValidFile(t *testing.T) {
	path := filepath.Join(programsDir, "two_streams.json")

	out, _, err := executeCommand(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+path+" (two_streams)")
	assert.Contains(t, out, "✓ All programs valid")
}

func TestValidateCommand_AdvisoryOnly(t *testing.T) {
	out, _, err := executeCommand(t, "validate", filepath.Join(programsDir, "rebound_event.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "warning line 11: E109: body[5].args[0]: event 5 is never waited on")
	assert.Contains(t, out, "✓ All programs valid")
}

func TestValidateCommand_Invalid(t *testing.T) {
	out, _, err := executeCommand(t, "validate", filepath.Join(programsDir, "forward_ref.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ ")
	assert.Contains(t, out, `line 5: E107: body[1].args[0]: forward reference to "b"`)
	assert.Contains(t, out, "Validation failed with 1 error(s)")
}

func TestValidateCommand_DirectoryJSON(t *testing.T) {
	out, _, err := executeCommand(t, "--format", "json", "validate", programsDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E107", resp.Error.Code)

	assert.False(t, result.Valid)
	require.Len(t, result.Files, 6)

	byName := make(map[string]FileValidation)
	for _, fv := range result.Files {
		byName[filepath.Base(fv.Path)] = fv
	}
	assert.False(t, byName["forward_ref.yaml"].Valid)
	assert.False(t, byName["unknown_event.yaml"].Valid)
	require.Len(t, byName["unknown_event.yaml"].Errors, 1)
	assert.Equal(t, "E110", byName["unknown_event.yaml"].Errors[0].Code)
	assert.True(t, byName["rebound_event.yaml"].Valid)
	assert.True(t, byName["simple_branches.yaml"].Valid)
	assert.True(t, byName["stacked_blocks.cue"].Valid)
	assert.Equal(t, "stacked_blocks", byName["stacked_blocks.cue"].Program)
	assert.True(t, byName["two_streams.json"].Valid)
}

func TestValidateCommand_LoadErrorKeepsLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "float.yaml")
	content := "name: float\nbody:\n  - {let: a, op: atan, args: [1.5]}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	out, _, err := executeCommand(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "line 3: E004: load: body[0].args[0]: float argument 1.5 is forbidden")
}

func TestValidateCommand_CommandErrors(t *testing.T) {
	out, _, err := executeCommand(t, "validate", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")

	out, _, err = executeCommand(t, "validate", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E003]")

	_, _, err = executeCommand(t, "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}
