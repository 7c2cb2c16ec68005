// Package editor launches the user's preferred text editor on config and
// preset files.
package editor

import (
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/thoreinstein/pagecheck/internal/errors"
)

// IO is where the editor reads and writes. Zero fields use the process's
// standard streams.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Open runs the editor on path and waits for it to exit.
func Open(path string, streams IO) error {
	cmd := Command(path)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if streams.In != nil {
		cmd.Stdin = streams.In
	}
	if streams.Out != nil {
		cmd.Stdout = streams.Out
	}
	if streams.Err != nil {
		cmd.Stderr = streams.Err
	}

	if err := cmd.Run(); err != nil {
		return errors.WithHint(errors.Wrapf(err, "running editor %s", cmd.Path), "set $EDITOR to your editor")
	}
	return nil
}

// Command builds the editor invocation for path. $EDITOR may carry
// arguments, as in "code --wait".
func Command(path string) *exec.Cmd {
	fields := strings.Fields(detectEditor())
	args := append(fields[1:], path)
	return exec.Command(fields[0], args...)
}

// detectEditor returns the editor command to use based on environment variables
// and available binaries. Fallback chain: $EDITOR → $VISUAL → nano → vi
func detectEditor() string {
	if editor := strings.TrimSpace(os.Getenv("EDITOR")); editor != "" {
		return editor
	}
	if visual := strings.TrimSpace(os.Getenv("VISUAL")); visual != "" {
		return visual
	}
	if _, err := exec.LookPath("nano"); err == nil {
		return "nano"
	}
	return "vi"
}
