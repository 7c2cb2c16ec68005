package document

import (
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/thoreinstein/pagecheck/internal/errors"
	"github.com/thoreinstein/pagecheck/internal/htmlcheck"
)

// ErrBadSelector marks a selector cascadia cannot compile.
var ErrBadSelector = errors.New("malformed selector")

// ErrForeignElement is returned for a parent that did not come from this
// package.
var ErrForeignElement = errors.New("element does not belong to a parsed document")

// Adapter answers htmlcheck's selector queries. Compiled selectors are
// cached, and an Adapter may be shared between goroutines.
type Adapter struct {
	mu    sync.Mutex
	cache map[string]cascadia.Selector
}

var _ htmlcheck.Adapter = (*Adapter)(nil)

// NewAdapter creates an adapter with an empty selector cache.
func NewAdapter() *Adapter {
	return &Adapter{cache: make(map[string]cascadia.Selector)}
}

// SelectOne returns the first descendant of parent matching selector, or nil.
func (a *Adapter) SelectOne(parent htmlcheck.Element, selector string) (htmlcheck.Element, error) {
	matches, err := a.find(parent, selector)
	if err != nil {
		return nil, err
	}
	if matches == nil || matches.Length() == 0 {
		return nil, nil
	}
	return newElement(matches.First()), nil
}

// SelectAll returns every descendant of parent matching selector in
// document order.
func (a *Adapter) SelectAll(parent htmlcheck.Element, selector string) ([]htmlcheck.Element, error) {
	matches, err := a.find(parent, selector)
	if err != nil {
		return nil, err
	}
	out := make([]htmlcheck.Element, 0, matches.Length())
	for i := range matches.Length() {
		out = append(out, newElement(matches.Eq(i)))
	}
	return out, nil
}

func (a *Adapter) find(parent htmlcheck.Element, selector string) (*goquery.Selection, error) {
	el, ok := parent.(*Element)
	if !ok || el == nil {
		return nil, errors.Wrapf(ErrForeignElement, "%T", parent)
	}
	sel, err := a.compile(selector)
	if err != nil {
		return nil, err
	}
	return el.sel.FindMatcher(sel), nil
}

func (a *Adapter) compile(selector string) (cascadia.Selector, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if sel, ok := a.cache[selector]; ok {
		return sel, nil
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, errors.Wrapf(errors.Mark(err, ErrBadSelector), "compiling %q", selector)
	}
	a.cache[selector] = sel
	return sel, nil
}
