// Package document adapts parsed HTML to the element model of htmlcheck.
//
// Markup is parsed with golang.org/x/net/html and queried through goquery
// with selectors compiled by cascadia. Unlike goquery's Find, a malformed
// selector is reported as an error instead of silently matching nothing.
// Files and fetched pages may use legacy encodings such as windows-1251;
// ParseBytes decodes them to UTF-8 first.
//
//	doc, err := document.ParseString(markup)
//	if err != nil {
//		return err
//	}
//	root, err := doc.Root()
//	if err != nil {
//		return err // errors.ErrRootNotFound without an <html> tag
//	}
//	node, err := schema.Validate(doc.Adapter(), root)
package document

import (
	"bytes"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/thoreinstein/pagecheck/internal/errors"
	"github.com/thoreinstein/pagecheck/internal/htmlcheck"
)

// Document is a parsed HTML page.
type Document struct {
	doc      *goquery.Document
	explicit bool
	adapter  *Adapter
}

// Parse reads markup from r and parses it as ParseBytes does.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading markup")
	}
	return ParseBytes(data)
}

// ParseString parses markup held in a string, which is already UTF-8.
func ParseString(markup string) (*Document, error) {
	return ParseUTF8([]byte(markup))
}

// ParseBytes parses markup in any encoding Decode recognizes.
func ParseBytes(data []byte) (*Document, error) {
	text, _, err := Decode(data, "")
	if err != nil {
		return nil, err
	}
	return ParseUTF8(text)
}

// ParseUTF8 parses markup that is already UTF-8, ignoring any charset the
// markup declares.
func ParseUTF8(data []byte) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "parsing markup")
	}
	return &Document{
		doc:      doc,
		explicit: hasHTMLTag(data),
		adapter:  NewAdapter(),
	}, nil
}

// hasHTMLTag reports whether the markup opens an <html> element itself. The
// parser always synthesizes one, so the tree cannot tell.
func hasHTMLTag(data []byte) bool {
	z := html.NewTokenizer(bytes.NewReader(data))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Html {
				return true
			}
		}
	}
}

// Root returns the <html> element. A page that never opens one yields
// errors.ErrRootNotFound.
func (d *Document) Root() (htmlcheck.Element, error) {
	if !d.explicit {
		return nil, errors.ErrRootNotFound
	}
	sel := d.doc.Find("html").First()
	if sel.Length() == 0 {
		return nil, errors.ErrRootNotFound
	}
	return newElement(sel), nil
}

// Adapter returns the adapter used to query this document.
func (d *Document) Adapter() *Adapter { return d.adapter }

// Title returns the trimmed text of the first <title>, if any.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}
