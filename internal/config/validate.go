package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/pagecheck/internal/errors"
	"github.com/thoreinstein/pagecheck/internal/htmlcheck"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates the version field is outside the supported range.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrOutOfRange indicates a numeric or duration field is not positive.
	ErrOutOfRange = errors.New("must be positive")

	// ErrInvalidSeverity indicates fail_on names no severity.
	ErrInvalidSeverity = errors.New("invalid severity")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version < 1 || cfg.Version > CurrentVersion {
		errs = append(errs, &FieldError{Field: "version", Value: cfg.Version, Err: ErrUnsupportedVersion})
	}

	if cfg.PresetsDir != "" {
		if err := validatePath(cfg.PresetsDir); err != nil {
			errs = append(errs, &PathError{Field: "presets_dir", Path: cfg.PresetsDir, Err: err})
		}
	}

	if strings.ContainsAny(cfg.DefaultPreset, " \t\n") {
		errs = append(errs, &FieldError{Field: "default_preset", Value: cfg.DefaultPreset, Err: errors.New("must not contain whitespace")})
	}

	if cfg.Fetch.Timeout <= 0 {
		errs = append(errs, &FieldError{Field: "fetch.timeout", Value: cfg.Fetch.Timeout, Err: ErrOutOfRange})
	}
	if cfg.Fetch.MaxBytes <= 0 {
		errs = append(errs, &FieldError{Field: "fetch.max_bytes", Value: cfg.Fetch.MaxBytes, Err: ErrOutOfRange})
	}
	if cfg.Concurrency < 1 {
		errs = append(errs, &FieldError{Field: "concurrency", Value: cfg.Concurrency, Err: ErrOutOfRange})
	}

	if _, err := htmlcheck.ParseSeverity(cfg.FailOn); err != nil {
		errs = append(errs, &FieldError{Field: "fail_on", Value: cfg.FailOn, Err: ErrInvalidSeverity})
	}

	return errs
}

// FailOnSeverity returns fail_on as a severity.
func (c *Config) FailOnSeverity() (htmlcheck.Severity, error) {
	return htmlcheck.ParseSeverity(c.FailOn)
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}
	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}
	return nil
}

// FieldError represents an invalid value for a config key.
type FieldError struct {
	Field string
	Value any
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Field, e.Err, e.Value)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}
