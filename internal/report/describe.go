package report

import (
	"github.com/thoreinstein/pagecheck/internal/htmlcheck"
)

// NodeDump is a serializable view of a validated tag and everything below
// it.
type NodeDump struct {
	Name     string               `json:"name"`
	Path     string               `json:"path"`
	Number   int                  `json:"number,omitempty"`
	Display  string               `json:"display"`
	Exists   bool                 `json:"exists"`
	Errors   []htmlcheck.Failure  `json:"errors"`
	Attrs    map[string]*AttrDump `json:"attrs,omitempty"`
	Children map[string]any       `json:"children,omitempty"`

	// order keeps declaration order for text rendering.
	order []string
}

// AttrDump is a serializable view of a validated attribute.
type AttrDump struct {
	Name     string              `json:"name"`
	Value    *string             `json:"value"`
	Expected *string             `json:"expected,omitempty"`
	Choices  []string            `json:"choices,omitempty"`
	Errors   []htmlcheck.Failure `json:"errors"`
}

// Describe dumps a validated node tree. Children holds a *NodeDump for a
// nested tag and a []*NodeDump for a repeated one.
func Describe(n *htmlcheck.Node) *NodeDump {
	d := &NodeDump{
		Name:    n.FieldName(),
		Path:    n.Path(),
		Number:  n.Number(),
		Display: display(n),
		Exists:  n.Exists(),
		Errors:  nonNil(n.Failures()),
	}
	if d.Name == "" {
		d.Name = "html"
	}

	for _, f := range n.Fields() {
		d.order = append(d.order, f.FieldName())
		switch f := f.(type) {
		case *htmlcheck.Attribute:
			if d.Attrs == nil {
				d.Attrs = make(map[string]*AttrDump)
			}
			d.Attrs[f.FieldName()] = describeAttr(f)
		case *htmlcheck.Node:
			d.child(f.FieldName(), Describe(f))
		case *htmlcheck.Repeated:
			items := make([]*NodeDump, 0, f.Len())
			for _, item := range f.Items() {
				items = append(items, Describe(item))
			}
			d.child(f.FieldName(), items)
		}
	}
	return d
}

func (d *NodeDump) child(name string, v any) {
	if d.Children == nil {
		d.Children = make(map[string]any)
	}
	d.Children[name] = v
}

func describeAttr(a *htmlcheck.Attribute) *AttrDump {
	d := &AttrDump{
		Name:    a.Name(),
		Choices: a.Choices(),
		Errors:  nonNil(a.Failures()),
	}
	if v, ok := a.Value(); ok {
		d.Value = &v
	}
	if v, ok := a.Expected(); ok {
		d.Expected = &v
	}
	return d
}

func display(n *htmlcheck.Node) string {
	if el := n.Element(); el != nil {
		return el.String()
	}
	return n.Selector()
}

// Failures lists every failure below n in traversal order: a tag's own
// failures first, then its fields. Fields of a missing tag are skipped, as
// in its error tree.
func Failures(n *htmlcheck.Node) []htmlcheck.Failure {
	var out []htmlcheck.Failure
	collect(n, &out)
	return out
}

func collect(n *htmlcheck.Node, out *[]htmlcheck.Failure) {
	*out = append(*out, n.Failures()...)
	if !n.Exists() {
		return
	}
	for _, f := range n.Fields() {
		switch f := f.(type) {
		case *htmlcheck.Attribute:
			*out = append(*out, f.Failures()...)
		case *htmlcheck.Node:
			collect(f, out)
		case *htmlcheck.Repeated:
			for _, item := range f.Items() {
				collect(item, out)
			}
		}
	}
}

func nonNil(f []htmlcheck.Failure) []htmlcheck.Failure {
	if f == nil {
		return []htmlcheck.Failure{}
	}
	return f
}
