package report

import (
	"github.com/thoreinstein/pagecheck/internal/htmlcheck"
)

// Verdict is the overall judgement on a page.
type Verdict string

const (
	// VerdictPass means nothing reached warning level.
	VerdictPass Verdict = "pass"
	// VerdictWarn means warnings exist but nothing reached the fail level.
	VerdictWarn Verdict = "warn"
	// VerdictFail means at least one failure reached the fail level.
	VerdictFail Verdict = "fail"
)

// VerdictFor judges a histogram. A failOn of success is treated as info, so
// a page without failures always passes.
func VerdictFor(h htmlcheck.Histogram, failOn htmlcheck.Severity) Verdict {
	if failOn < htmlcheck.SeverityInfo {
		failOn = htmlcheck.SeverityInfo
	}
	worst := h.Worst()
	switch {
	case worst.AtLeast(failOn):
		return VerdictFail
	case worst.AtLeast(htmlcheck.SeverityWarning):
		return VerdictWarn
	default:
		return VerdictPass
	}
}
