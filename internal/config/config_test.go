package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/pagecheck/internal/errors"
	"github.com/thoreinstein/pagecheck/internal/paths"
)

// isolate points the default config directory at an empty temp dir and
// runs from it, so neither ./config.yaml nor the user's file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(paths.ConfigDirEnv, dir)
	t.Chdir(t.TempDir())
	return dir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInit(t *testing.T) {
	isolate(t)
	Init()

	if viper.GetInt("version") != 1 {
		t.Errorf("expected version default 1, got %d", viper.GetInt("version"))
	}
	if got := viper.GetDuration("fetch.timeout"); got != 15*time.Second {
		t.Errorf("fetch.timeout default = %v, want 15s", got)
	}
	if got := viper.GetString("fail_on"); got != "danger" {
		t.Errorf("fail_on default = %q, want danger", got)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	dir := isolate(t)
	Init()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, filepath.Join(dir, "presets"), cfg.PresetsDir)
}

func TestLoad_WithConfigFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, t.TempDir(), `
default_preset: aceaff
fetch:
  timeout: 30s
concurrency: 8
fail_on: warning
`)
	Init()

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "aceaff", cfg.DefaultPreset)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, int64(DefaultMaxBytes), cfg.Fetch.MaxBytes)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, "warning", cfg.FailOn)
	assert.Equal(t, path, FileUsed())
}

func TestLoad_DefaultLocation(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "default_preset: atlas\n")
	Init()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "atlas", cfg.DefaultPreset)
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("PAGECHECK_FETCH_TIMEOUT", "2s")
	t.Setenv("PAGECHECK_DEFAULT_PRESET", "aceaff")
	Init()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "aceaff", cfg.DefaultPreset)
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	isolate(t)
	Init()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestLoad_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr []string
	}{
		{
			name:    "invalid version",
			content: "version: 2\n",
			wantErr: []string{"version: unsupported config version: 2"},
		},
		{
			name:    "invalid severity",
			content: "fail_on: fatal\n",
			wantErr: []string{"fail_on: invalid severity: fatal"},
		},
		{
			name:    "several problems",
			content: "concurrency: 0\nfetch:\n  max_bytes: -1\n",
			wantErr: []string{"concurrency: must be positive: 0", "fetch.max_bytes: must be positive: -1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			path := writeConfig(t, t.TempDir(), tt.content)
			Init()

			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidConfig), "%v", err)
			assert.True(t, strings.HasPrefix(err.Error(), "validating config: "), err.Error())
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestInit_ClearsPreviousState(t *testing.T) {
	dir := isolate(t)
	fileA := writeConfig(t, t.TempDir(), "default_preset: aceaff\n")

	Init()
	_, err := Load(fileA)
	require.NoError(t, err)

	writeConfig(t, dir, "default_preset: atlas\n")

	// Re-initializing must forget fileA and search the default locations.
	Init()
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "atlas", cfg.DefaultPreset)
	assert.NotEqual(t, fileA, FileUsed())
}

func TestValidate(t *testing.T) {
	assert.Empty(t, Validate(Default()))
	assert.Len(t, Validate(nil), 1)

	cfg := Default()
	cfg.PresetsDir = "bad\x00dir"
	cfg.DefaultPreset = "two words"
	cfg.Fetch.Timeout = 0
	errs := Validate(cfg)
	require.Len(t, errs, 3)

	var pathErr *PathError
	require.True(t, errors.As(errs[0], &pathErr))
	assert.Equal(t, "presets_dir", pathErr.Field)
	assert.ErrorIs(t, errs[0], ErrInvalidPath)
	assert.ErrorIs(t, errs[2], ErrOutOfRange)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefault(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(data, &raw))
	assert.Equal(t, 1, raw["version"])
	assert.Equal(t, "15s", raw["fetch"].(map[string]any)["timeout"])

	err = WriteDefault(path, false)
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "--force")
	assert.NoError(t, WriteDefault(path, true))

	// The written file loads back to the defaults.
	isolate(t)
	Init()
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Fetch, cfg.Fetch)
}

func TestSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, Set(path, "default_preset", "aceaff"))
	require.NoError(t, Set(path, "fetch.timeout", "45s"))
	require.NoError(t, Set(path, "concurrency", "2"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(data, &raw))
	assert.Equal(t, "aceaff", raw["default_preset"])
	assert.Equal(t, 2, raw["concurrency"])
	assert.Equal(t, map[string]any{"timeout": "45s"}, raw["fetch"])
	assert.NotContains(t, raw, "fail_on")
}

func TestSet_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "colour", "red"},
		{"not an integer", "concurrency", "many"},
		{"not a duration", "fetch.timeout", "soon"},
		{"out of range", "concurrency", "0"},
		{"bad severity", "fail_on", "fatal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Set(path, tt.key, tt.value))
			_, err := os.Stat(path)
			assert.ErrorIs(t, err, os.ErrNotExist, "file must not be written")
		})
	}
}
