package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/tryeach/internal/config"
	"github.com/roach88/tryeach/internal/executor"
	"github.com/roach88/tryeach/internal/selector"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // A scenario that is not allowed to fail failed, or the run was interrupted
	ExitCommandError = 2 // Command error (usage, configuration, dependency install, etc.)
)

// Error codes reported in JSON error responses.
const (
	CodeUsage           = "E001"
	CodeConfigNotFound  = "E002"
	CodeInvalidConfig   = "E003"
	CodeUnknownScenario = "E004"
	CodeDependency      = "E005"
	CodeScenarioFailed  = "E006"
	CodeInternal        = "E999"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message; empty means use Err's message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// ErrorCode classifies err for JSON error responses.
func ErrorCode(err error) string {
	var unknown *selector.UnknownScenarioError
	switch {
	case config.IsNotFound(err):
		return CodeConfigNotFound
	case config.IsInvalid(err):
		return CodeInvalidConfig
	case errors.As(err, &unknown):
		return CodeUnknownScenario
	case executor.IsDependencyApplyError(err):
		return CodeDependency
	case executor.IsTaskFailed(err):
		return CodeScenarioFailed
	case GetExitCode(err) == ExitCommandError:
		return CodeUsage
	default:
		return CodeInternal
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Verbose bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "E002", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// ReportError writes err with its classified code. Unknown scenario errors
// carry the requested and available names as details.
func (f *OutputFormatter) ReportError(err error) error {
	code := ErrorCode(err)
	var details interface{}
	var unknown *selector.UnknownScenarioError
	if errors.As(err, &unknown) {
		details = map[string][]string{"unknown": unknown.Names, "available": unknown.Available}
	}
	return f.Error(code, err.Error(), details)
}
