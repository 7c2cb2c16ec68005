package document

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"
)

// multiValued lists attributes whose value is a whitespace-separated set.
// Their values are normalized to single spaces.
var multiValued = map[string]bool{
	"class":          true,
	"rel":            true,
	"rev":            true,
	"accept-charset": true,
	"headers":        true,
	"accesskey":      true,
	"dropzone":       true,
}

// maxDisplayAttr caps attribute values in String, in runes.
const maxDisplayAttr = 40

// Element is a single HTML element node.
type Element struct {
	sel  *goquery.Selection
	node *xhtml.Node
}

func newElement(sel *goquery.Selection) *Element {
	return &Element{sel: sel, node: sel.Get(0)}
}

// Tag returns the lower-case tag name.
func (e *Element) Tag() string { return e.node.Data }

// Attr returns the attribute value and whether it is present. Multi-valued
// attributes such as class are joined with single spaces.
func (e *Element) Attr(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range e.node.Attr {
		if a.Namespace != "" || a.Key != name {
			continue
		}
		if multiValued[name] {
			return strings.Join(strings.Fields(a.Val), " "), true
		}
		return a.Val, true
	}
	return "", false
}

// Text returns the concatenated text of the element and its descendants.
func (e *Element) Text() string { return e.sel.Text() }

// String renders the opening tag with its attributes, shortening long values.
func (e *Element) String() string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(e.node.Data)
	for _, a := range e.node.Attr {
		sb.WriteByte(' ')
		sb.WriteString(a.Key)
		v := a.Val
		if multiValued[a.Key] {
			v = strings.Join(strings.Fields(v), " ")
		}
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(shorten(v, maxDisplayAttr)))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	return sb.String()
}

// shorten cuts s to at most n runes, marking the cut with "...".
func shorten(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	end := 0
	for range n {
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}
	return s[:end] + "..."
}

// Selection exposes the underlying goquery selection.
func (e *Element) Selection() *goquery.Selection { return e.sel }
