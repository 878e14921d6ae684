package errors

import (
	"errors"
	"fmt"
)

// ToolNotFoundError reports a tool binary that could not be located.
// It is the only tool failure surfaced to callers; everything else a
// tool does wrong degrades to an empty diagnostic set.
type ToolNotFoundError struct {
	Tool string
	Hint string
}

// Error implements the error interface for ToolNotFoundError.
func (e *ToolNotFoundError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("tool %q not found: %s", e.Tool, e.Hint)
	}
	return fmt.Sprintf("tool %q not found in PATH", e.Tool)
}

// NewToolNotFoundError creates a new ToolNotFoundError instance.
func NewToolNotFoundError(tool, hint string) *ToolNotFoundError {
	return &ToolNotFoundError{
		Tool: tool,
		Hint: hint,
	}
}

// ToolExecutionError reports a tool run that exited abnormally without
// producing parsable diagnostics on its expected output stream.
type ToolExecutionError struct {
	Tool     string
	ExitCode int
	Stderr   string
}

// Error implements the error interface for ToolExecutionError.
func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %q failed with exit code %d: %s", e.Tool, e.ExitCode, e.Stderr)
}

// NewToolExecutionError creates a new ToolExecutionError instance.
func NewToolExecutionError(tool string, exitCode int, stderr string) *ToolExecutionError {
	return &ToolExecutionError{
		Tool:     tool,
		ExitCode: exitCode,
		Stderr:   stderr,
	}
}

// InvalidVersionError reports toolchain version output that matched no
// recognized shape.
type InvalidVersionError struct {
	Output string
}

// Error implements the error interface for InvalidVersionError.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("unrecognized go version output: %q", e.Output)
}

// NewInvalidVersionError creates a new InvalidVersionError instance.
func NewInvalidVersionError(output string) *InvalidVersionError {
	return &InvalidVersionError{Output: output}
}

// CommandError represents a command failure carrying the process exit code.
type CommandError struct {
	ExitCode    int
	CommonError string
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

// NewCommandError creates a new CommandError instance, encapsulating the error message and exit code.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
	}
}

// ExitCode maps an error returned by a command to the process exit
// code: 0 for nil, the carried code for a CommandError, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return 1
}
