package doctor

import (
	"time"

	"github.com/sourcegraph/conc/iter"
)

// Check is one diagnostic.
type Check interface {
	Name() string
	Category() string
	Run() *CheckResult
}

// Runner runs checks and collects a Report. Checks are independent and run
// concurrently; results keep registration order.
type Runner struct {
	checks []Check
}

// NewRunner creates a runner with the given checks.
func NewRunner(checks ...Check) *Runner {
	return &Runner{checks: checks}
}

// AddCheck appends c to the checks to run.
func (r *Runner) AddCheck(c Check) {
	r.checks = append(r.checks, c)
}

// Checks returns the registered checks in order.
func (r *Runner) Checks() []Check {
	return append([]Check(nil), r.checks...)
}

// Run executes every check. A result without a name or category gets the
// check's.
func (r *Runner) Run() *Report {
	report := &Report{Timestamp: time.Now().UTC()}

	report.Results = iter.Map(r.checks, func(c *Check) *CheckResult {
		result := (*c).Run()
		if result == nil {
			result = &CheckResult{Status: SeverityError, Message: "check returned no result"}
		}
		if result.Name == "" {
			result.Name = (*c).Name()
		}
		if result.Category == "" {
			result.Category = (*c).Category()
		}
		return result
	})
	if report.Results == nil {
		report.Results = []*CheckResult{}
	}

	for _, result := range report.Results {
		report.Summary.add(result.Status)
	}
	return report
}

// Fix runs Fix on every check that implements Fixer and has fixable
// issues. Call it after Run.
func (r *Runner) Fix() []FixResult {
	var results []FixResult
	for _, check := range r.checks {
		if f, ok := check.(Fixer); ok && f.CanFix() {
			results = append(results, f.Fix()...)
		}
	}
	return results
}

// Report is the outcome of a Runner.Run.
type Report struct {
	Timestamp time.Time      `json:"timestamp"`
	Results   []*CheckResult `json:"results"`
	Summary   Summary        `json:"summary"`
}

// HasErrors reports whether any check failed.
func (r *Report) HasErrors() bool {
	return r.Summary.Errors > 0
}

// HasWarnings reports whether any check warned.
func (r *Report) HasWarnings() bool {
	return r.Summary.Warnings > 0
}

// Worst returns the highest severity in the report.
func (r *Report) Worst() Severity {
	worst := SeverityPass
	for _, result := range r.Results {
		worst = max(worst, result.Status)
	}
	return worst
}
