package errors

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kattn/djgenetics/pkg/evolve"
	"github.com/kattn/djgenetics/pkg/midifile"
	"github.com/kattn/djgenetics/pkg/pianoroll"
)

// ErrorType categorizes different error types
type ErrorType string

const (
	// Network errors
	ErrorTypeNetwork ErrorType = "network"
	ErrorTypeTimeout ErrorType = "timeout"

	// Authentication errors
	ErrorTypeAuth      ErrorType = "auth"
	ErrorTypeForbidden ErrorType = "forbidden"

	// Input errors
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeFileNotFound  ErrorType = "file_not_found"
	ErrorTypeInvalidFormat ErrorType = "invalid_format"
	ErrorTypeInvalidRoll   ErrorType = "invalid_roll"
	ErrorTypeSampleRate    ErrorType = "invalid_sample_rate"
	ErrorTypeInstrument    ErrorType = "instrument_not_found"

	// Server errors
	ErrorTypeServer   ErrorType = "server"
	ErrorTypeNotFound ErrorType = "not_found"

	ErrorTypeUnknown ErrorType = "unknown"
)

// CLIError represents a structured error with context
type CLIError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// WithSuggestion adds a helpful suggestion to the error
func (e *CLIError) WithSuggestion(suggestion string) *CLIError {
	e.Suggestion = suggestion
	return e
}

// HasSuggestion returns true if the error has a suggestion
func (e *CLIError) HasSuggestion() bool {
	return e.Suggestion != ""
}

// Unwrap returns the underlying error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// NewCLIError creates a new CLI error
func NewCLIError(errorType ErrorType, message string, cause error) *CLIError {
	return &CLIError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NetworkError creates a network error
func NetworkError(message string) *CLIError {
	err := NewCLIError(ErrorTypeNetwork, message, nil)
	err.Suggestion = "Check that api.base_url points at a running server."
	return err
}

// TimeoutError creates a timeout error
func TimeoutError() *CLIError {
	err := NewCLIError(ErrorTypeTimeout, "Request timed out", nil)
	err.Suggestion = "Raise api.timeout or try again in a moment."
	return err
}

// AuthError creates an authentication error
func AuthError(message string) *CLIError {
	err := NewCLIError(ErrorTypeAuth, message, nil)
	err.Suggestion = "Set api.token in the config file or DJGENETICS_API_TOKEN."
	return err
}

// ForbiddenError creates a forbidden error
func ForbiddenError() *CLIError {
	err := NewCLIError(ErrorTypeForbidden, "Access denied", nil)
	err.Suggestion = "Make sure the token belongs to an account allowed to publish."
	return err
}

// ValidationError creates a validation error
func ValidationError(field, reason string) *CLIError {
	message := fmt.Sprintf("Validation error: %s - %s", field, reason)
	return NewCLIError(ErrorTypeValidation, message, nil)
}

// FileNotFoundError creates a file not found error
func FileNotFoundError(path string) *CLIError {
	err := NewCLIError(ErrorTypeFileNotFound, fmt.Sprintf("File not found: %s", path), nil)
	err.Suggestion = "Check the file path and try again."
	return err
}

// ServerError creates a server error
func ServerError() *CLIError {
	err := NewCLIError(ErrorTypeServer, "Server error", nil)
	err.Suggestion = "The server encountered an error. Try again in a few moments."
	return err
}

// NotFoundError creates a not found error
func NotFoundError(resourceType, identifier string) *CLIError {
	return NewCLIError(ErrorTypeNotFound,
		fmt.Sprintf("%s not found: %s", resourceType, identifier),
		nil)
}

// categorizeDomain maps conversion errors to CLI errors
func categorizeDomain(err error) *CLIError {
	switch {
	case errors.Is(err, os.ErrNotExist):
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return FileNotFoundError(pathErr.Path)
		}
		return NewCLIError(ErrorTypeFileNotFound, err.Error(), err).
			WithSuggestion("Check the file path and try again.")
	case errors.Is(err, midifile.ErrInstrumentIndex):
		return NewCLIError(ErrorTypeInstrument, err.Error(), err).
			WithSuggestion("Run 'djgenetics inspect <file.mid>' to list the instruments.")
	case errors.Is(err, midifile.ErrFileFormat):
		return NewCLIError(ErrorTypeInvalidFormat, err.Error(), err).
			WithSuggestion("The file must be a standard MIDI file with metric timing.")
	case errors.Is(err, midifile.ErrInvalidProgram):
		return NewCLIError(ErrorTypeValidation, err.Error(), err).
			WithSuggestion("Pass --program between 0 and 127.")
	case errors.Is(err, pianoroll.ErrInvalidSampleRate),
		errors.Is(err, midifile.ErrSampleRateTooHigh):
		return NewCLIError(ErrorTypeSampleRate, err.Error(), err).
			WithSuggestion("Pass a positive --fs, for example --fs 5.")
	case errors.Is(err, pianoroll.ErrVelocityRange),
		errors.Is(err, pianoroll.ErrRaggedMatrix),
		errors.Is(err, pianoroll.ErrInvalidShape),
		errors.Is(err, pianoroll.ErrOrientation),
		errors.Is(err, pianoroll.ErrTooManyPitches),
		errors.Is(err, pianoroll.ErrTooLarge),
		errors.Is(err, pianoroll.ErrNilMatrix):
		return NewCLIError(ErrorTypeInvalidRoll, err.Error(), err).
			WithSuggestion("Roll documents hold rows of velocities between 0 and 127, one row per pitch.")
	case errors.Is(err, evolve.ErrObjectiveCount):
		return NewCLIError(ErrorTypeValidation, err.Error(), err)
	}
	return nil
}

// CategorizeError converts a standard error into a CLIError
func CategorizeError(err error) *CLIError {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	if domainErr := categorizeDomain(err); domainErr != nil {
		return domainErr
	}

	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "connection refused"):
		return NetworkError("Could not connect to server. Make sure it's running.")
	case strings.Contains(errMsg, "timeout"):
		return TimeoutError()
	case strings.Contains(errMsg, "context deadline exceeded"):
		return TimeoutError()
	case strings.Contains(errMsg, "401") || strings.Contains(errMsg, "unauthorized"):
		return AuthError("Invalid or missing API token")
	case strings.Contains(errMsg, "403") || strings.Contains(errMsg, "forbidden"):
		return ForbiddenError()
	case strings.Contains(errMsg, "404") || strings.Contains(errMsg, "not found"):
		return NotFoundError("Resource", "unknown")
	case strings.Contains(errMsg, "500") || strings.Contains(errMsg, "server error"):
		return ServerError()
	default:
		return NewCLIError(ErrorTypeUnknown, errMsg, err)
	}
}

// FormatError returns a user-friendly error message
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	cliErr := CategorizeError(err)
	var sb strings.Builder

	sb.WriteString("Error")
	if cliErr.Type != ErrorTypeUnknown {
		sb.WriteString(" (")
		sb.WriteString(string(cliErr.Type))
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(cliErr.Message)
	sb.WriteString("\n")

	if cliErr.HasSuggestion() {
		sb.WriteString("Suggestion: ")
		sb.WriteString(cliErr.Suggestion)
		sb.WriteString("\n")
	}

	return sb.String()
}
