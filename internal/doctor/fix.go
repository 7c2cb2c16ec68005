package doctor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/thoreinstein/pagecheck/internal/errors"
	"github.com/thoreinstein/pagecheck/internal/preset"
)

// Fixer is an optional interface that checks can implement to support auto-remediation.
// Checks that implement Fixer can fix issues they detect when the --fix flag is used.
type Fixer interface {
	// CanFix returns true if this check has fixable issues.
	// Must be called after Run() to check if there are issues that can be fixed.
	CanFix() bool

	// Fix attempts to remediate the issues found by Run().
	Fix() []FixResult
}

// FixResult describes the outcome of an attempted fix operation.
type FixResult struct {
	Path        string `json:"path"`
	Fixed       bool   `json:"fixed"`
	Description string `json:"description"`
	Error       error  `json:"-"`
}

const (
	secureFilePerm os.FileMode = 0o644
	secureDirPerm  os.FileMode = 0o755
)

// pathIssue is a world-writable file or directory.
type pathIssue struct {
	Path    string      `json:"path"`
	Type    string      `json:"type"`
	Mode    os.FileMode `json:"-"`
	Problem string      `json:"problem"`
	Fixable bool        `json:"fixable"`
}

// PermissionFixer holds the permission issues found by a check and chmods
// them on request.
type PermissionFixer struct {
	issues []pathIssue
}

// CanFix returns true if there are any fixable permission issues.
func (f *PermissionFixer) CanFix() bool {
	return f.CountFixable() > 0
}

// CountFixable returns the number of fixable issues.
func (f *PermissionFixer) CountFixable() int {
	count := 0
	for _, issue := range f.issues {
		if issue.Fixable {
			count++
		}
	}
	return count
}

// Fix attempts to fix all fixable permission issues.
func (f *PermissionFixer) Fix() []FixResult {
	results := make([]FixResult, 0, f.CountFixable())
	for _, issue := range f.issues {
		if issue.Fixable {
			results = append(results, fixIssue(issue))
		}
	}
	return results
}

func fixIssue(issue pathIssue) FixResult {
	result := FixResult{Path: issue.Path}

	var target os.FileMode
	switch issue.Type {
	case "file":
		target = secureFilePerm
	case "directory":
		target = secureDirPerm
	default:
		result.Description = "unknown type: " + issue.Type
		result.Error = errors.Newf("cannot fix unknown type: %s", issue.Type)
		return result
	}

	if err := os.Chmod(issue.Path, target); err != nil {
		result.Description = fmt.Sprintf("failed to chmod %04o: %v", target, err)
		result.Error = errors.Wrapf(err, "chmod %04o %s", target, issue.Path)
		return result
	}

	result.Fixed = true
	result.Description = fmt.Sprintf("chmod %04o", target)
	return result
}

// PresetsPermissionCheck flags a presets directory or preset files that
// other users can write to. Anyone who can edit a preset controls what
// pagecheck accepts.
type PresetsPermissionCheck struct {
	PermissionFixer
	dir string
}

var (
	_ Check = (*PresetsPermissionCheck)(nil)
	_ Fixer = (*PresetsPermissionCheck)(nil)
)

// NewPresetsPermissionCheck checks dir and the preset files in it.
func NewPresetsPermissionCheck(dir string) *PresetsPermissionCheck {
	return &PresetsPermissionCheck{dir: dir}
}

// Name returns the unique identifier for this check.
func (c *PresetsPermissionCheck) Name() string { return "presets-permissions" }

// Category returns the grouping for this check.
func (c *PresetsPermissionCheck) Category() string { return "presets" }

// Run executes the check.
func (c *PresetsPermissionCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"dir": c.dir},
	}
	c.issues = nil

	info, err := os.Stat(c.dir)
	if errors.Is(err, os.ErrNotExist) {
		result.Status = SeverityInfo
		result.Message = "presets directory does not exist"
		return result
	}
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot stat presets directory: %v", err)
		return result
	}
	if !info.IsDir() {
		result.Status = SeverityError
		result.Message = "presets path is not a directory"
		result.FixHint = "remove " + c.dir + " or set presets_dir elsewhere"
		return result
	}

	var issues []pathIssue
	if worldWritable(info.Mode()) {
		issues = append(issues, pathIssue{
			Path:    c.dir,
			Type:    "directory",
			Mode:    info.Mode().Perm(),
			Problem: fmt.Sprintf("directory is world-writable (%04o)", info.Mode().Perm()),
			Fixable: true,
		})
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot read presets directory: %v", err)
		return result
	}
	for _, e := range entries {
		if e.IsDir() || !preset.IsPresetFile(e.Name()) {
			continue
		}
		path := filepath.Join(c.dir, e.Name())
		fi, err := os.Stat(path)
		if err != nil {
			continue
		}
		if worldWritable(fi.Mode()) {
			issues = append(issues, pathIssue{
				Path:    path,
				Type:    "file",
				Mode:    fi.Mode().Perm(),
				Problem: fmt.Sprintf("file is world-writable (%04o)", fi.Mode().Perm()),
				Fixable: true,
			})
		}
	}

	c.issues = issues
	if len(issues) == 0 {
		result.Status = SeverityPass
		result.Message = "presets directory permissions are correct"
		return result
	}

	result.Status = SeverityWarning
	result.Message = fmt.Sprintf("%d path(s) are world-writable", len(issues))
	result.Details["issues"] = issues
	result.Fixable = true
	result.FixHint = "Run: pagecheck doctor --fix"
	return result
}

func worldWritable(mode os.FileMode) bool {
	return mode.Perm()&0o002 != 0
}
