// Package checker runs a preset against a landing page.
//
// A page is given either as markup or as a URL. When both are set the URL
// wins and the markup is ignored.
package checker

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/thoreinstein/pagecheck/internal/document"
	"github.com/thoreinstein/pagecheck/internal/errors"
	"github.com/thoreinstein/pagecheck/internal/fetch"
	"github.com/thoreinstein/pagecheck/internal/htmlcheck"
	"github.com/thoreinstein/pagecheck/internal/logging"
	"github.com/thoreinstein/pagecheck/internal/preset"
)

// DefaultConcurrency bounds CheckAll when Options.Concurrency is unset.
const DefaultConcurrency = 4

// ErrNoInput is returned for a request with neither markup nor URL.
var ErrNoInput = errors.New("no markup or URL to check")

// Request describes one page to check.
type Request struct {
	// Source labels the page in reports. Defaults to the URL, or "-".
	Source string
	// HTML is the raw markup.
	HTML []byte
	// URL is fetched instead of using HTML when set.
	URL string
}

func (r Request) label() string {
	switch {
	case r.Source != "":
		return r.Source
	case r.URL != "":
		return logging.MaskURL(r.URL)
	default:
		return "-"
	}
}

// Result is the outcome of checking one page.
type Result struct {
	Source    string
	Preset    string
	Title     string
	Node      *htmlcheck.Node
	Errors    htmlcheck.ErrorTree
	Histogram htmlcheck.Histogram
	Duration  time.Duration
}

// Outcome pairs a batch request with its result or error.
type Outcome struct {
	Request Request
	Result  *Result
	Err     error
}

// Options configures a Checker.
type Options struct {
	Registry    *preset.Registry
	Fetcher     *fetch.Fetcher
	Concurrency int
}

// Checker resolves pages and validates them. It is safe for concurrent use.
type Checker struct {
	registry    *preset.Registry
	fetcher     *fetch.Fetcher
	concurrency int
}

// New creates a Checker. Nil collaborators fall back to the built-in
// presets and a default fetcher.
func New(opts Options) *Checker {
	if opts.Registry == nil {
		opts.Registry = preset.Default()
	}
	if opts.Fetcher == nil {
		opts.Fetcher = fetch.New(fetch.Options{})
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Checker{
		registry:    opts.Registry,
		fetcher:     opts.Fetcher,
		concurrency: opts.Concurrency,
	}
}

// Check validates one page against the named preset.
func (c *Checker) Check(ctx context.Context, req Request, presetName string) (*Result, error) {
	p, err := c.registry.Get(presetName)
	if err != nil {
		return nil, err
	}
	return c.check(ctx, req, p)
}

// CheckAll validates every page against the named preset, at most
// Options.Concurrency at a time. Outcomes keep the order of reqs. A failing
// page does not stop the others; only an unknown preset fails the batch.
func (c *Checker) CheckAll(ctx context.Context, reqs []Request, presetName string) ([]Outcome, error) {
	p, err := c.registry.Get(presetName)
	if err != nil {
		return nil, err
	}

	out := make([]Outcome, len(reqs))
	workers := pool.New().WithMaxGoroutines(c.concurrency)
	for i, req := range reqs {
		workers.Go(func() {
			res, err := c.check(ctx, req, p)
			out[i] = Outcome{Request: req, Result: res, Err: err}
		})
	}
	workers.Wait()
	return out, nil
}

func (c *Checker) check(ctx context.Context, req Request, p *preset.Preset) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx).With("source", req.label(), "preset", p.Name)
	start := time.Now()

	doc, size, err := c.load(ctx, req)
	if err != nil {
		return nil, err
	}
	root, err := doc.Root()
	if err != nil {
		return nil, errors.Wrapf(err, "%s", req.label())
	}
	logger.Debug("parsed page", "bytes", size)

	node, err := p.Schema.Validate(doc.Adapter(), root)
	if err != nil {
		return nil, errors.Wrapf(err, "validating %s", req.label())
	}
	tree := node.Errors()
	hist, err := htmlcheck.CountLevels(tree)
	if err != nil {
		return nil, errors.Wrapf(err, "counting failures for %s", req.label())
	}

	res := &Result{
		Source:    req.label(),
		Preset:    p.Name,
		Title:     doc.Title(),
		Node:      node,
		Errors:    tree,
		Histogram: hist,
		Duration:  time.Since(start),
	}
	logger.Debug("checked page", "histogram", hist.String(), "duration", res.Duration)
	return res, nil
}

// load parses the page of req and reports its size in bytes. Fetched bodies
// arrive as UTF-8; local markup is decoded from its declared charset.
func (c *Checker) load(ctx context.Context, req Request) (*document.Document, int, error) {
	if req.URL != "" {
		body, err := c.fetcher.Fetch(ctx, req.URL)
		if err != nil {
			return nil, 0, err
		}
		doc, err := document.ParseUTF8(body)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "parsing %s", req.label())
		}
		return doc, len(body), nil
	}
	if len(req.HTML) == 0 {
		return nil, 0, ErrNoInput
	}
	doc, err := document.ParseBytes(req.HTML)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "parsing %s", req.label())
	}
	return doc, len(req.HTML), nil
}
