// Package report renders check results as colored text or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/thoreinstein/pagecheck/internal/checker"
	"github.com/thoreinstein/pagecheck/internal/errors"
	"github.com/thoreinstein/pagecheck/internal/htmlcheck"
)

// Format specifies the output format for reports.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// Option configures a Reporter.
type Option func(*Reporter)

// FailOn sets the severity at which a page fails. The default is danger.
func FailOn(s htmlcheck.Severity) Option {
	return func(r *Reporter) { r.failOn = s }
}

// WithDetail includes the full node dump of every page.
func WithDetail() Option {
	return func(r *Reporter) { r.detail = true }
}

// Reporter formats and writes check outcomes.
type Reporter struct {
	out    io.Writer
	format Format
	failOn htmlcheck.Severity
	detail bool
}

// NewReporter creates a new Reporter.
func NewReporter(out io.Writer, format Format, opts ...Option) *Reporter {
	r := &Reporter{
		out:    out,
		format: format,
		failOn: htmlcheck.SeverityDanger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Page is the JSON form of one outcome.
type Page struct {
	Source    string               `json:"source"`
	Preset    string               `json:"preset,omitempty"`
	Title     string               `json:"title,omitempty"`
	Verdict   Verdict              `json:"verdict"`
	Histogram *htmlcheck.Histogram `json:"histogram,omitempty"`
	Errors    map[string]any       `json:"errors,omitempty"`
	Detail    *NodeDump            `json:"detail,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// Summary counts verdicts over a batch. A page that could not be checked
// counts as failed.
type Summary struct {
	Pass   int
	Warn   int
	Fail   int
	Broken int
}

// Failed reports whether any page failed or could not be checked.
func (s Summary) Failed() bool { return s.Fail > 0 || s.Broken > 0 }

// Summarize judges every outcome against failOn.
func Summarize(outcomes []checker.Outcome, failOn htmlcheck.Severity) Summary {
	var s Summary
	for _, o := range outcomes {
		if o.Err != nil {
			s.Broken++
			continue
		}
		switch VerdictFor(o.Result.Histogram, failOn) {
		case VerdictFail:
			s.Fail++
		case VerdictWarn:
			s.Warn++
		default:
			s.Pass++
		}
	}
	return s
}

// Report writes the outcomes and returns their summary. JSON output is a
// single object for one outcome and an array otherwise.
func (r *Reporter) Report(outcomes []checker.Outcome) (Summary, error) {
	summary := Summarize(outcomes, r.failOn)
	switch r.format {
	case FormatJSON:
		return summary, r.reportJSON(outcomes)
	default:
		r.reportText(outcomes, summary)
		return summary, nil
	}
}

// Page builds the JSON form of an outcome.
func (r *Reporter) Page(o checker.Outcome) Page {
	if o.Err != nil {
		source := o.Request.Source
		if source == "" {
			source = o.Request.URL
		}
		return Page{Source: source, Verdict: VerdictFail, Error: o.Err.Error()}
	}
	res := o.Result
	hist := res.Histogram
	p := Page{
		Source:    res.Source,
		Preset:    res.Preset,
		Title:     res.Title,
		Verdict:   VerdictFor(hist, r.failOn),
		Histogram: &hist,
		Errors:    res.Errors.Plain(),
	}
	if r.detail {
		p.Detail = Describe(res.Node)
	}
	return p
}

func (r *Reporter) reportJSON(outcomes []checker.Outcome) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	if len(outcomes) == 1 {
		return errors.Wrap(encoder.Encode(r.Page(outcomes[0])), "encoding JSON report")
	}
	pages := make([]Page, 0, len(outcomes))
	for _, o := range outcomes {
		pages = append(pages, r.Page(o))
	}
	return errors.Wrap(encoder.Encode(pages), "encoding JSON report")
}

func (r *Reporter) reportText(outcomes []checker.Outcome, summary Summary) {
	for i, o := range outcomes {
		if i > 0 {
			fmt.Fprintln(r.out)
		}
		if o.Err != nil {
			r.printBroken(o)
			continue
		}
		r.printResult(o.Result)
	}
	if len(outcomes) > 1 {
		fmt.Fprintf(r.out, "\n%d page(s): %s, %s, %s",
			len(outcomes),
			color.GreenString("%d passed", summary.Pass),
			color.YellowString("%d with warnings", summary.Warn),
			color.RedString("%d failed", summary.Fail),
		)
		if summary.Broken > 0 {
			fmt.Fprintf(r.out, ", %s", color.RedString("%d not checked", summary.Broken))
		}
		fmt.Fprintln(r.out)
	}
}

func (r *Reporter) printBroken(o checker.Outcome) {
	source := o.Request.Source
	if source == "" {
		source = o.Request.URL
	}
	fmt.Fprintf(r.out, "%s %s\n", color.RedString("✗"), source)
	fmt.Fprintf(r.out, "  %s\n", o.Err)
	for _, hint := range errors.GetAllHints(o.Err) {
		fmt.Fprintf(r.out, "  %s\n", color.New(color.FgHiBlack).Sprint(hint))
	}
}

func (r *Reporter) printResult(res *checker.Result) {
	verdict := VerdictFor(res.Histogram, r.failOn)
	fmt.Fprintf(r.out, "%s %s %s\n",
		verdictMark(verdict),
		res.Source,
		color.New(color.FgHiBlack).Sprintf("[%s]", res.Preset),
	)
	fmt.Fprintf(r.out, "  %s\n", histogramLine(res.Histogram))

	failures := Failures(res.Node)
	if len(failures) > 0 {
		fmt.Fprintln(r.out)
	}
	for _, group := range groupByPath(failures) {
		fmt.Fprintf(r.out, "  %s\n", color.New(color.Bold).Sprint(group.path))
		for _, f := range group.failures {
			printFailure(r.out, f)
		}
	}

	if r.detail {
		fmt.Fprintln(r.out)
		printTree(r.out, Describe(res.Node), 1)
	}
}

func printFailure(out io.Writer, f htmlcheck.Failure) {
	// Format:    • level message (code)
	var sb strings.Builder
	sb.WriteString("    • ")
	sb.WriteString(severityColor(f.Severity).Sprintf("%-7s", f.Severity))
	sb.WriteString(" ")
	sb.WriteString(f.Message)
	if f.Code != "" && f.Code != htmlcheck.CodeCustom {
		sb.WriteString(" ")
		sb.WriteString(color.New(color.FgHiBlack).Sprintf("(%s)", f.Code))
	}
	fmt.Fprintln(out, sb.String())
}

func printTree(out io.Writer, d *NodeDump, depth int) {
	indent := strings.Repeat("  ", depth)
	mark := color.GreenString("✓")
	if !d.Exists {
		mark = color.RedString("✗")
	}
	name := d.Name
	if d.Number > 0 {
		name = fmt.Sprintf("%s[%d]", name, d.Number)
	}
	fmt.Fprintf(out, "%s%s %s %s\n", indent, mark, name, color.New(color.FgHiBlack).Sprint(d.Display))

	for _, field := range d.order {
		if a, ok := d.Attrs[field]; ok {
			value := "(absent)"
			if a.Value != nil {
				value = fmt.Sprintf("%q", *a.Value)
			}
			attrMark := color.GreenString("·")
			if len(a.Errors) > 0 {
				attrMark = severityColor(maxSeverity(a.Errors)).Sprint("!")
			}
			fmt.Fprintf(out, "%s  %s @%s = %s\n", indent, attrMark, a.Name, value)
			continue
		}
		switch c := d.Children[field].(type) {
		case *NodeDump:
			printTree(out, c, depth+1)
		case []*NodeDump:
			if len(c) == 0 {
				fmt.Fprintf(out, "%s  %s %s %s\n", indent, color.YellowString("∅"), field, color.New(color.FgHiBlack).Sprint("no matches"))
			}
			for _, item := range c {
				printTree(out, item, depth+1)
			}
		}
	}
}

type pathGroup struct {
	path     string
	failures []htmlcheck.Failure
}

// groupByPath groups failures by path, keeping first-seen order.
func groupByPath(failures []htmlcheck.Failure) []pathGroup {
	var groups []pathGroup
	index := make(map[string]int)
	for _, f := range failures {
		path := f.Path
		if path == "" {
			path = "(page)"
		}
		i, ok := index[path]
		if !ok {
			i = len(groups)
			index[path] = i
			groups = append(groups, pathGroup{path: path})
		}
		groups[i].failures = append(groups[i].failures, f)
	}
	return groups
}

func histogramLine(h htmlcheck.Histogram) string {
	parts := make([]string, 0, len(htmlcheck.Severities()))
	for _, s := range htmlcheck.Severities() {
		parts = append(parts, severityColor(s).Sprintf("%s %d", s, h.Count(s)))
	}
	return strings.Join(parts, "  ")
}

func verdictMark(v Verdict) string {
	switch v {
	case VerdictFail:
		return color.RedString("✗ FAIL")
	case VerdictWarn:
		return color.YellowString("! WARN")
	default:
		return color.GreenString("✓ PASS")
	}
}

func severityColor(s htmlcheck.Severity) *color.Color {
	switch s {
	case htmlcheck.SeverityDanger:
		return color.New(color.FgRed)
	case htmlcheck.SeverityWarning:
		return color.New(color.FgYellow)
	case htmlcheck.SeverityInfo:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgGreen)
	}
}

func maxSeverity(failures []htmlcheck.Failure) htmlcheck.Severity {
	highest := htmlcheck.SeveritySuccess
	for _, f := range failures {
		highest = htmlcheck.MaxSeverity(highest, f.Severity)
	}
	return highest
}
