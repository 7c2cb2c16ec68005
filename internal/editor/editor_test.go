package editor

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetectEditor(t *testing.T) {
	tests := []struct {
		name   string
		editor string
		visual string
		want   string
	}{
		{name: "EDITOR wins", editor: "nvim", visual: "code", want: "nvim"},
		{name: "VISUAL when EDITOR unset", editor: "", visual: "code", want: "code"},
		{name: "blank EDITOR is unset", editor: "  ", visual: "vscode", want: "vscode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EDITOR", tt.editor)
			t.Setenv("VISUAL", tt.visual)
			if got := detectEditor(); got != tt.want {
				t.Errorf("detectEditor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectEditor_Fallback(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")

	want := "vi"
	if _, err := exec.LookPath("nano"); err == nil {
		want = "nano"
	}
	if got := detectEditor(); got != want {
		t.Errorf("detectEditor() = %q, want %q", got, want)
	}
}

func TestCommand_SplitsArguments(t *testing.T) {
	t.Setenv("EDITOR", "code --wait")
	cmd := Command("/tmp/config.yaml")

	want := []string{"code", "--wait", "/tmp/config.yaml"}
	if strings.Join(cmd.Args, " ") != strings.Join(want, " ") {
		t.Errorf("Args = %q, want %q", cmd.Args, want)
	}
}

func TestOpen(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "fake-editor")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho edited \"$1\"\n"), 0o700); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EDITOR", script)

	var out bytes.Buffer
	target := filepath.Join(dir, "config.yaml")
	if err := Open(target, IO{Out: &out}); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "edited "+target {
		t.Errorf("editor output = %q", got)
	}
}

func TestOpen_Failure(t *testing.T) {
	t.Setenv("EDITOR", filepath.Join(t.TempDir(), "no-such-editor"))

	err := Open("/tmp/x.yaml", IO{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}})
	if err == nil {
		t.Fatal("Open() with a missing editor should fail")
	}
	if !strings.Contains(err.Error(), "running editor") {
		t.Errorf("error = %v", err)
	}
}
