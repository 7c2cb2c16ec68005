package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// New returns an error with the given message and a stack trace.
func New(msg string) error { return crdb.New(msg) }

// Newf returns an error formatted per the format specifier.
func Newf(format string, args ...any) error { return crdb.Newf(format, args...) }

// Wrap annotates err with a message. Wrap returns nil if err is nil.
func Wrap(err error, msg string) error { return crdb.Wrap(err, msg) }

// Wrapf annotates err with a formatted message. Wrapf returns nil if err is nil.
func Wrapf(err error, format string, args ...any) error { return crdb.Wrapf(err, format, args...) }

// WithHint decorates err with a user-facing hint.
func WithHint(err error, hint string) error { return crdb.WithHint(err, hint) }

// FlattenHints returns the hints attached to err joined by newlines.
func FlattenHints(err error) string { return crdb.FlattenHints(err) }

// GetAllHints returns the hints attached anywhere in the error chain.
func GetAllHints(err error) []string { return crdb.GetAllHints(err) }

// Mark makes err match reference under Is without changing its message.
func Mark(err error, reference error) error { return crdb.Mark(err, reference) }

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return crdb.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return crdb.As(err, target) }

// Unwrap returns the result of calling Unwrap on err, if any.
func Unwrap(err error) error { return crdb.UnwrapOnce(err) }

// Join returns an error that wraps the given errors. Nil errors are discarded.
func Join(errs ...error) error { return crdb.Join(errs...) }
