package errors

import (
	"fmt"
)

// Process exit codes.
const (
	ExitSuccess = 0
	// ExitUser covers bad input, bad configuration and pages that failed
	// their check.
	ExitUser = 1
	// ExitSystem covers I/O and environment failures, and doctor errors.
	ExitSystem = 2
)

var (
	// ErrNotFound marks a missing file or resource.
	ErrNotFound = New("resource not found")

	// ErrInvalidConfig marks configuration validation failures.
	ErrInvalidConfig = New("invalid configuration")

	// ErrPresetNotFound indicates no preset is registered under the requested name.
	ErrPresetNotFound = New("preset not found")

	// ErrRootNotFound indicates the document has no <html> root element.
	ErrRootNotFound = New("root <html> tag not found")

	// ErrFetch indicates a page could not be downloaded.
	ErrFetch = New("fetching page failed")

	// ErrCheckFailed indicates a page reached the configured failure severity.
	ErrCheckFailed = New("page check failed")
)

// ExitError carries the exit code a command ends with and an optional
// suggestion printed under the error.
type ExitError struct {
	Err        error
	Code       int
	Suggestion string
}

// NewExitError creates an ExitError. A nil err sets only the exit status.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// NewUserError creates an ExitError with ExitUser.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitUser, Suggestion: suggestion}
}

// NewSystemError creates an ExitError with ExitSystem.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitSystem, Suggestion: suggestion}
}

// NewConfigError creates a user error pointing at pagecheck doctor.
func NewConfigError(err error) *ExitError {
	return NewUserError(err, "Run: pagecheck doctor")
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Code returns the exit code for err: ExitSuccess for nil, the code of the
// outermost ExitError, ExitUser otherwise.
func Code(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUser
}

// Silent reports whether err should end the process without a message:
// a bare exit status, or a failed check whose report was already printed.
func Silent(err error) bool {
	var exitErr *ExitError
	if !As(err, &exitErr) {
		return false
	}
	return exitErr.Err == nil || Is(exitErr.Err, ErrCheckFailed)
}
