package htmlcheck

import (
	"fmt"

	"github.com/thoreinstein/pagecheck/internal/errors"
)

// Failure codes recorded by the built-in checks.
const (
	CodeRequired  = "required"
	CodeExpected  = "expected"
	CodeChoices   = "choices"
	CodeNotFound  = "not_found"
	CodeEmptyList = "empty_list"
	CodeCustom    = "custom"
)

// Failure is a single failed check. Hooks return a *Failure as an error to
// record it against the field they validate.
type Failure struct {
	// Message is a human-readable description of the problem.
	Message string `json:"message"`
	// Severity ranks the failure.
	Severity Severity `json:"level"`
	// Code identifies the check that failed (optional).
	Code string `json:"code,omitempty"`
	// Path is the dotted field path the failure is attached to.
	Path string `json:"path"`
}

// Fail returns a custom failure with a formatted message.
func Fail(severity Severity, format string, args ...any) *Failure {
	return &Failure{
		Message:  fmt.Sprintf(format, args...),
		Severity: severity,
		Code:     CodeCustom,
	}
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.Path == "" {
		return fmt.Sprintf("%s: %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("%s: %s: %s", f.Severity, f.Path, f.Message)
}

// asFailure extracts a Failure from a hook error. ok is false for any other
// error, which the caller must propagate.
func asFailure(err error) (Failure, bool) {
	var f *Failure
	if errors.As(err, &f) && f != nil {
		return *f, true
	}
	return Failure{}, false
}

// maxFailureSeverity returns the highest severity in failures.
func maxFailureSeverity(failures []Failure) Severity {
	highest := SeveritySuccess
	for _, f := range failures {
		if f.Severity > highest {
			highest = f.Severity
		}
	}
	return highest
}
