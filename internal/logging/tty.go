package logging

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// NoColorEnv turns colors off for pagecheck alone. NO_COLOR does the same for
// every program that honors it.
const NoColorEnv = "PAGECHECK_NO_COLOR"

// IsTTY reports whether w is a terminal. Writers without a file descriptor,
// such as the buffers commands write to in tests, never are.
func IsTTY(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// SupportsColor reports whether output to w may carry ANSI colors.
func SupportsColor(w io.Writer) bool {
	return !ColorDisabled() && IsTTY(w)
}

// ColorDisabled reports whether the environment rules out colors for any
// writer.
func ColorDisabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(NoColorEnv))) {
	case "", "0", "false", "no":
	default:
		return true
	}
	return os.Getenv("TERM") == "dumb"
}
