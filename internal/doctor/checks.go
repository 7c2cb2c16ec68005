package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/pagecheck/internal/config"
	"github.com/thoreinstein/pagecheck/internal/errors"
	"github.com/thoreinstein/pagecheck/internal/preset"
	"github.com/thoreinstein/pagecheck/pkg/fileutil"
)

// ConfigCheck validates the syntax and values of the configuration file.
type ConfigCheck struct {
	path string
}

var _ Check = (*ConfigCheck)(nil)

// NewConfigCheck checks the file at path. An empty path means no file was
// found and defaults are in use.
func NewConfigCheck(path string) *ConfigCheck {
	return &ConfigCheck{path: path}
}

// Name returns the unique identifier for this check.
func (c *ConfigCheck) Name() string { return "config-file" }

// Category returns the grouping for this check.
func (c *ConfigCheck) Category() string { return "config" }

// Run executes the check.
func (c *ConfigCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": c.path},
	}

	if c.path == "" {
		result.Status = SeverityInfo
		result.Message = "no config file, using defaults"
		result.FixHint = "Run: pagecheck config init"
		return result
	}

	data, err := fileutil.ReadFileWithLimit(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Status = SeverityInfo
			result.Message = "config file does not exist, using defaults"
			result.FixHint = "Run: pagecheck config init"
			return result
		}
		result.Status = SeverityError
		result.Message = fmt.Sprintf("read error: %v", err)
		return result
	}

	if _, err := config.Parse(data); err != nil {
		result.Status = SeverityError
		if errors.Is(err, errors.ErrInvalidConfig) {
			problems := strings.Split(err.Error(), "\n")
			result.Message = fmt.Sprintf("%d invalid value(s)", len(problems))
			result.Details["problems"] = problems
			result.FixHint = "Run: pagecheck config set <key> <value>"
		} else {
			result.Message = formatYAMLError(err)
			result.FixHint = "fix the YAML syntax in " + c.path
		}
		return result
	}

	result.Status = SeverityPass
	result.Message = "config file is valid"
	return result
}

// DefaultPresetCheck verifies that default_preset names a known preset.
type DefaultPresetCheck struct {
	name     string
	registry *preset.Registry
}

var _ Check = (*DefaultPresetCheck)(nil)

// NewDefaultPresetCheck checks name against the presets in registry.
func NewDefaultPresetCheck(name string, registry *preset.Registry) *DefaultPresetCheck {
	return &DefaultPresetCheck{name: name, registry: registry}
}

// Name returns the unique identifier for this check.
func (c *DefaultPresetCheck) Name() string { return "default-preset" }

// Category returns the grouping for this check.
func (c *DefaultPresetCheck) Category() string { return "config" }

// Run executes the check.
func (c *DefaultPresetCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"available": c.registry.Names()},
	}

	if c.name == "" {
		result.Status = SeverityInfo
		result.Message = "no default preset; pass --preset or pick one interactively"
		result.FixHint = "Run: pagecheck config set default_preset <name>"
		return result
	}

	p, err := c.registry.Get(c.name)
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("default preset %q is not defined", c.name)
		result.FixHint = "available presets: " + strings.Join(c.registry.Names(), ", ")
		return result
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("default preset %q (%s)", p.Name, p.Source)
	return result
}

// PresetFilesCheck parses and compiles every preset file in the presets
// directory, and reports names that clash with built-in or earlier presets.
type PresetFilesCheck struct {
	dir string
}

var _ Check = (*PresetFilesCheck)(nil)

// NewPresetFilesCheck checks the preset files in dir.
func NewPresetFilesCheck(dir string) *PresetFilesCheck {
	return &PresetFilesCheck{dir: dir}
}

// Name returns the unique identifier for this check.
func (c *PresetFilesCheck) Name() string { return "preset-files" }

// Category returns the grouping for this check.
func (c *PresetFilesCheck) Category() string { return "presets" }

// FileResult is the outcome for one preset file.
type FileResult struct {
	Path    string `json:"path"`
	Status  string `json:"status"`
	Preset  string `json:"preset,omitempty"`
	Message string `json:"message,omitempty"`
}

// Run executes the check.
func (c *PresetFilesCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"dir": c.dir},
	}

	files, err := presetFiles(c.dir)
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("reading presets directory: %v", err)
		return result
	}
	if len(files) == 0 {
		result.Status = SeverityInfo
		result.Message = "no preset files found"
		return result
	}

	registry := preset.Default()
	results := make([]FileResult, 0, len(files))
	var errorCount int
	for _, path := range files {
		fr := c.validateFile(path, registry)
		if fr.Status == "error" {
			errorCount++
		}
		results = append(results, fr)
	}

	result.Details["files"] = results
	result.Details["checked"] = len(results)
	result.Details["errors"] = errorCount

	if errorCount > 0 {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("%d of %d preset file(s) are invalid", errorCount, len(results))
		result.FixHint = "review the error details and fix each file"
		return result
	}
	result.Status = SeverityPass
	result.Message = fmt.Sprintf("%d preset file(s) loaded successfully", len(results))
	return result
}

func (c *PresetFilesCheck) validateFile(path string, registry *preset.Registry) FileResult {
	fr := FileResult{Path: path, Status: "error"}

	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		fr.Message = fmt.Sprintf("read error: %v", err)
		return fr
	}

	// Report plain syntax errors with a position before trying to decode.
	if msg := syntaxError(path, data); msg != "" {
		fr.Message = msg
		return fr
	}

	p, err := preset.LoadFile(path)
	if err != nil {
		fr.Message = err.Error()
		return fr
	}
	fr.Preset = p.Name
	if err := registry.Register(p); err != nil {
		fr.Message = err.Error()
		return fr
	}

	fr.Status = "pass"
	return fr
}

// presetFiles lists preset files in dir in name order. A missing directory
// has none.
func presetFiles(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && preset.IsPresetFile(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// syntaxError returns a positioned message for malformed YAML or TOML, or "".
func syntaxError(path string, data []byte) string {
	format, err := preset.FormatFor(path)
	if err != nil {
		return err.Error()
	}
	var v any
	switch format {
	case preset.FormatTOML:
		if err := toml.Unmarshal(data, &v); err != nil {
			return formatTOMLError(err)
		}
	case preset.FormatYAML:
		if err := yaml.Unmarshal(data, &v); err != nil {
			return formatYAMLError(err)
		}
	}
	return ""
}

// formatTOMLError extracts position information from TOML decode errors.
func formatTOMLError(err error) string {
	// go-toml/v2 DecodeError includes line/column via Position() method
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Sprintf("TOML syntax error at line %d, column %d: %s", row, col, decodeErr.Error())
	}
	return fmt.Sprintf("TOML error: %v", err)
}

// formatYAMLError normalizes yaml.v3 messages, which already carry the line.
func formatYAMLError(err error) string {
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return "YAML type error: " + strings.Join(typeErr.Errors, "; ")
	}
	msg := err.Error()
	if i := strings.Index(msg, "yaml: "); i >= 0 {
		msg = msg[i+len("yaml: "):]
	}
	return "YAML syntax error: " + msg
}
