package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/sparqlconn/internal/config"
	"github.com/roach88/sparqlconn/internal/connerr"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Connector failure (endpoint down, bad response, bad query, etc.)
	ExitCommandError = 2 // Command error (bad flags, invalid config, database not found, etc.)
)

// CLI-level error codes. Connector failures report their connerr.Code instead.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeInvalidConfig = "E002" // Config file unreadable or invalid
	ErrCodeInvalidFlag   = "E003" // Flag values inconsistent
	ErrCodeStore         = "E004" // Run log database failure
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
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

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // connerr code or "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
// In text mode strings are printed as-is and anything else as indented JSON.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	if s, ok := data.(string); ok {
		fmt.Fprintln(f.Writer, s)
		return nil
	}
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
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

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err in the configured format and returns the ExitError the
// command should return. Connector errors exit with ExitFailure, config
// errors with ExitCommandError.
func (f *OutputFormatter) Fail(err error) error {
	code, message, details, exit := classify(err)
	_ = f.Error(code, message, details)
	return WrapExitError(exit, code, err)
}

// FailCode reports a CLI-level failure with an explicit code and exit code.
func (f *OutputFormatter) FailCode(code string, exit int, message string, err error) error {
	if err == nil {
		_ = f.Error(code, message, nil)
		return NewExitError(exit, message)
	}
	_ = f.Error(code, message, err.Error())
	return WrapExitError(exit, message, err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func classify(err error) (code, message string, details any, exit int) {
	var (
		ce *connerr.Error
		ve *config.ValidationError
		xe *ExitError
	)
	switch {
	case errors.As(err, &ce):
		message = ce.Message
		if !ce.UserSafe && ce.Cause != nil {
			details = ce.Cause.Error()
		}
		return string(ce.Code), message, details, ExitFailure
	case errors.As(err, &ve):
		return ErrCodeInvalidConfig, ve.Error(), ve.Issues, ExitCommandError
	case errors.As(err, &xe):
		return ErrCodeGeneric, xe.Error(), nil, xe.Code
	default:
		return ErrCodeGeneric, err.Error(), nil, ExitFailure
	}
}
