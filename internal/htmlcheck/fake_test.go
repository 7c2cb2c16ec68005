package htmlcheck

import (
	"errors"
	"fmt"
	"strings"
)

// fakeEl is an in-memory element. Selectors understood by fakeDoc are
// "tag" and "tag[attr=value]", matched against descendants in document order.
type fakeEl struct {
	tag      string
	attrs    map[string]string
	text     string
	children []*fakeEl
}

func el(tag string, attrs map[string]string, children ...*fakeEl) *fakeEl {
	return &fakeEl{tag: tag, attrs: attrs, children: children}
}

func (e *fakeEl) Tag() string { return e.tag }

func (e *fakeEl) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *fakeEl) Text() string {
	var sb strings.Builder
	sb.WriteString(e.text)
	for _, c := range e.children {
		sb.WriteString(c.Text())
	}
	return sb.String()
}

func (e *fakeEl) String() string { return "<" + e.tag + ">" }

var errBadSelector = errors.New("bad selector")

type fakeDoc struct {
	calls int
}

func (d *fakeDoc) SelectOne(parent Element, selector string) (Element, error) {
	all, err := d.SelectAll(parent, selector)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (d *fakeDoc) SelectAll(parent Element, selector string) ([]Element, error) {
	d.calls++
	if strings.HasPrefix(selector, "!") {
		return nil, fmt.Errorf("%w: %s", errBadSelector, selector)
	}
	tag, attr, value := parseFakeSelector(selector)
	var out []Element
	var walk func(e *fakeEl)
	walk = func(e *fakeEl) {
		for _, c := range e.children {
			if c.tag == tag && (attr == "" || c.attrs[attr] == value) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(parent.(*fakeEl))
	return out, nil
}

func parseFakeSelector(s string) (tag, attr, value string) {
	open := strings.IndexByte(s, '[')
	if open < 0 {
		return s, "", ""
	}
	tag = s[:open]
	inner := strings.TrimSuffix(s[open+1:], "]")
	attr, value, _ = strings.Cut(inner, "=")
	return tag, attr, value
}

// phoneFormSchema requires <form id="mForm" method="POST"> containing
// <input name="phone" type="tel">.
func phoneFormSchema(formOpts ...TagOption) *Schema {
	opts := []TagOption{
		WithAttr("id", Attr(Expected("mForm"))),
		WithAttr("method", Attr(Choices("POST"), IgnoreCase())),
		WithTag("phone", Tag("input[name=phone]",
			WithAttr("type", Attr(Expected("tel"))),
		)),
	}
	opts = append(opts, formOpts...)
	return MustCompile(Root(WithTag("form", Tag("form", opts...))))
}

// countFailures counts failures with a walk independent of CountLevels.
func countFailures(v any) int {
	switch v := v.(type) {
	case []Failure:
		return len(v)
	case ErrorTree:
		n := 0
		for _, item := range v {
			n += countFailures(item)
		}
		return n
	case []ErrorTree:
		n := 0
		for _, item := range v {
			n += countFailures(item)
		}
		return n
	}
	return 0
}
