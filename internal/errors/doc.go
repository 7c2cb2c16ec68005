// Package errors provides error handling conventions for the pagecheck CLI.
//
// It re-exports the constructors and inspection helpers of
// [github.com/cockroachdb/errors] so the rest of the module imports a single
// errors package, defines sentinel errors for common failure conditions,
// an ExitError type for CLI exit code handling, and exit code constants
// following standard Unix conventions.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [Is]:
//
//	if errors.Is(err, errors.ErrPresetNotFound) {
//	    // handle unknown preset
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, failed check, configuration)
//   - ExitSystem (2): System-related error (I/O, network, permissions)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional suggestion.
//
//	err := errors.NewUserError(errors.ErrPresetNotFound, "Run: pagecheck preset list")
//	var exitErr *errors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
