package errors

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/kattn/djgenetics/pkg/midifile"
	"github.com/kattn/djgenetics/pkg/pianoroll"
)

// TestNewCLIError creates and validates a CLI error
func TestNewCLIError(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewCLIError(ErrorTypeValidation, "Test error", cause)

	if err.Type != ErrorTypeValidation {
		t.Errorf("Expected type %s, got %s", ErrorTypeValidation, err.Type)
	}
	if err.Message != "Test error" {
		t.Errorf("Expected message 'Test error', got '%s'", err.Message)
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap did not return the correct underlying error")
	}
}

// TestWithSuggestion adds suggestion to error
func TestWithSuggestion(t *testing.T) {
	err := NewCLIError(ErrorTypeValidation, "Test", nil)
	if err.HasSuggestion() {
		t.Error("New errors should have no suggestion")
	}

	result := err.WithSuggestion("Try something else")
	if !result.HasSuggestion() || result.Suggestion != "Try something else" {
		t.Errorf("Unexpected suggestion '%s'", result.Suggestion)
	}
}

// TestCategorizeDomainErrors maps conversion errors to CLI error types
func TestCategorizeDomainErrors(t *testing.T) {
	_, statErr := os.Open("/definitely/missing/roll.json")

	testCases := []struct {
		input    error
		expected ErrorType
		name     string
	}{
		{&midifile.IndexError{Index: 3, Count: 1}, ErrorTypeInstrument, "instrument index"},
		{fmt.Errorf("%w: bad header", midifile.ErrFileFormat), ErrorTypeInvalidFormat, "file format"},
		{midifile.ErrInvalidProgram, ErrorTypeValidation, "program"},
		{pianoroll.ErrInvalidSampleRate, ErrorTypeSampleRate, "sample rate"},
		{fmt.Errorf("%w: got 300", pianoroll.ErrVelocityRange), ErrorTypeInvalidRoll, "velocity"},
		{pianoroll.ErrRaggedMatrix, ErrorTypeInvalidRoll, "ragged"},
		{fmt.Errorf("%w: 9000000 steps", pianoroll.ErrTooLarge), ErrorTypeInvalidRoll, "too long"},
		{midifile.ErrSampleRateTooHigh, ErrorTypeSampleRate, "sample rate too fine"},
		{statErr, ErrorTypeFileNotFound, "missing file"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := CategorizeError(tc.input)
			if err.Type != tc.expected {
				t.Errorf("Expected type %s, got %s", tc.expected, err.Type)
			}
			if tc.expected != ErrorTypeValidation && !err.HasSuggestion() {
				t.Error("Expected a suggestion")
			}
		})
	}
}

// TestCategorizeError categorizes transport errors
func TestCategorizeError(t *testing.T) {
	testCases := []struct {
		input    error
		expected ErrorType
		name     string
	}{
		{errors.New("connection refused"), ErrorTypeNetwork, "connection refused"},
		{errors.New("timeout"), ErrorTypeTimeout, "timeout"},
		{errors.New("context deadline exceeded"), ErrorTypeTimeout, "context deadline"},
		{errors.New("401 unauthorized"), ErrorTypeAuth, "401 error"},
		{errors.New("403 forbidden"), ErrorTypeForbidden, "403 error"},
		{errors.New("404 not found"), ErrorTypeNotFound, "404 error"},
		{errors.New("500 server error"), ErrorTypeServer, "500 error"},
		{errors.New("something odd"), ErrorTypeUnknown, "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := CategorizeError(tc.input)
			if err.Type != tc.expected {
				t.Errorf("Expected type %s, got %s", tc.expected, err.Type)
			}
		})
	}
}

// TestCategorizeKeepsCLIError returns wrapped CLI errors unchanged
func TestCategorizeKeepsCLIError(t *testing.T) {
	original := ValidationError("fs", "must be positive")
	wrapped := fmt.Errorf("encode: %w", original)

	if CategorizeError(wrapped) != original {
		t.Error("Expected the wrapped CLIError to be returned")
	}
	if CategorizeError(nil) != nil {
		t.Error("Expected nil for nil error")
	}
}

// TestFormatError formats error for display
func TestFormatError(t *testing.T) {
	formatted := FormatError(&midifile.IndexError{Index: 2, Count: 1})

	if !strings.HasPrefix(formatted, "Error (instrument_not_found): ") {
		t.Errorf("Unexpected header in %q", formatted)
	}
	if !strings.Contains(formatted, "Suggestion: ") {
		t.Error("Expected suggestion in formatted message")
	}

	plain := FormatError(NewCLIError(ErrorTypeUnknown, "Some error", nil))
	if plain != "Error: Some error\n" {
		t.Errorf("Unexpected formatting: %q", plain)
	}

	if FormatError(nil) != "" {
		t.Error("Expected empty string for nil error")
	}
}
