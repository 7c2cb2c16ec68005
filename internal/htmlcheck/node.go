package htmlcheck

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/thoreinstein/pagecheck/internal/errors"
)

// Field is a bound field of a Node: an *Attribute, *Node or *Repeated.
type Field interface {
	FieldName() string
	Path() string
	errorTree() any
}

// Node is a tag rule bound to one element for one run. A Node owns its
// fields; the parent reference is only used for paths and locators.
type Node struct {
	spec     *TagSpec
	field    string
	parent   *Node
	number   int
	elem     Element
	fields   []Field
	byName   map[string]Field
	failures []Failure
}

// bind builds a fresh instance tree for spec. Repeated fields stay empty
// until fill resolves their matches.
func bind(spec *TagSpec, field string, parent *Node, number int) *Node {
	n := &Node{
		spec:   spec,
		field:  field,
		parent: parent,
		number: number,
		fields: make([]Field, 0, len(spec.fields)),
		byName: make(map[string]Field, len(spec.fields)),
	}
	for _, fs := range spec.fields {
		var f Field
		switch {
		case fs.attr != nil:
			f = bindAttribute(fs.attr, fs.name, n)
		case fs.tag.many:
			f = &Repeated{spec: fs.tag, field: fs.name, parent: n}
		default:
			f = bind(fs.tag, fs.name, n, 0)
		}
		n.fields = append(n.fields, f)
		n.byName[fs.name] = f
	}
	return n
}

// FieldName returns the name the tag was declared under. It is empty for
// the root.
func (n *Node) FieldName() string { return n.field }

// Path returns the dotted path of the tag. Items of a repeated field carry
// their 1-based number, as in "form[2].phone".
func (n *Node) Path() string {
	if n.parent == nil {
		return ""
	}
	name := n.field
	if n.number > 0 {
		name += "[" + strconv.Itoa(n.number) + "]"
	}
	return joinPath(n.parent.Path(), name)
}

// Parent returns the enclosing tag, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Number returns the 1-based position among the matches of a repeated
// field, or 0.
func (n *Node) Number() int { return n.number }

// Element returns the matched element, or nil.
func (n *Node) Element() Element { return n.elem }

// Exists reports whether the element was found.
func (n *Node) Exists() bool { return n.elem != nil }

// Selector returns the selector, or the label of a located tag.
func (n *Node) Selector() string { return n.spec.Display() }

// Required reports whether the tag must be present.
func (n *Node) Required() bool { return n.spec.required }

// Fields returns the bound fields in declaration order.
func (n *Node) Fields() []Field { return slices.Clone(n.fields) }

// Attribute returns the named attribute field, or nil.
func (n *Node) Attribute(field string) *Attribute {
	a, _ := n.byName[field].(*Attribute)
	return a
}

// Child returns the named nested tag field, or nil.
func (n *Node) Child(field string) *Node {
	c, _ := n.byName[field].(*Node)
	return c
}

// List returns the named repeated field, or nil.
func (n *Node) List(field string) *Repeated {
	r, _ := n.byName[field].(*Repeated)
	return r
}

// Failures returns the failures attached to the tag itself.
func (n *Node) Failures() []Failure { return slices.Clone(n.failures) }

// Severity returns the highest severity among the tag's attributes and its
// own failures. Nested tags are not included.
func (n *Node) Severity() Severity {
	highest := maxFailureSeverity(n.failures)
	for _, f := range n.fields {
		if a, ok := f.(*Attribute); ok {
			highest = MaxSeverity(highest, a.Severity())
		}
	}
	return highest
}

// AttrValue returns the value of any attribute on the element, declared or
// not.
func (n *Node) AttrValue(name string) (string, bool) {
	if n.elem == nil {
		return "", false
	}
	return n.elem.Attr(name)
}

// resolve finds the element of a non-root tag below its parent.
func (n *Node) resolve(doc Adapter) (Element, error) {
	if n.spec.locate != nil {
		el, err := n.spec.locate(n, doc)
		return el, errors.Wrapf(err, "locating %s", n.Path())
	}
	el, err := doc.SelectOne(n.parent.elem, n.spec.selector)
	return el, errors.Wrapf(err, "selecting %q for %s", n.spec.selector, n.Path())
}

// fill reads attribute values and resolves nested elements. Nothing below
// a missing element is filled.
func (n *Node) fill(doc Adapter) error {
	if n.elem == nil {
		return nil
	}
	for _, f := range n.fields {
		switch f := f.(type) {
		case *Attribute:
			f.fill(n.elem)
		case *Node:
			el, err := f.resolve(doc)
			if err != nil {
				return err
			}
			f.elem = el
			if err := f.fill(doc); err != nil {
				return err
			}
		case *Repeated:
			if err := f.fill(doc); err != nil {
				return err
			}
		}
	}
	return nil
}

// validate runs the tag's own checks, then, when the element exists, every
// field followed by that field's hook.
func (n *Node) validate() error {
	if n.elem == nil && n.spec.required {
		n.record(Failure{
			Message:  fmt.Sprintf("%s not found", n.spec.Display()),
			Severity: n.spec.severity,
			Code:     CodeNotFound,
		})
	}
	if n.spec.hook != nil {
		if err := n.spec.hook(n); err != nil {
			if err := n.absorb(err); err != nil {
				return err
			}
		}
	}
	if n.elem == nil {
		return nil
	}

	for _, f := range n.fields {
		var err error
		switch f := f.(type) {
		case *Attribute:
			err = f.run()
		case *Node:
			err = f.validate()
		case *Repeated:
			err = f.validate()
		}
		if err != nil {
			return err
		}
		if err := n.runFieldHook(f); err != nil {
			return err
		}
	}
	return nil
}

// runFieldHook attaches a hook failure to the attribute itself, to a nested
// tag's own failures, or to n for a repeated field.
func (n *Node) runFieldHook(f Field) error {
	hook := n.spec.fieldHooks[f.FieldName()]
	if hook == nil {
		return nil
	}
	err := hook(f)
	if err == nil {
		return nil
	}
	switch f := f.(type) {
	case *Attribute:
		return f.absorb(err)
	case *Node:
		return f.absorb(err)
	default:
		return n.absorb(err)
	}
}

// absorb records err when it carries a Failure and returns it otherwise.
func (n *Node) absorb(err error) error {
	f, ok := asFailure(err)
	if !ok {
		return errors.Wrapf(err, "validating %s", n.displayPath())
	}
	n.record(f)
	return nil
}

func (n *Node) record(f Failure) {
	f.Path = n.Path()
	n.failures = append(n.failures, f)
}

func (n *Node) displayPath() string {
	if p := n.Path(); p != "" {
		return p
	}
	return "root"
}

// Errors returns the error tree of the tag. The non-field bucket is always
// present; field entries are present only when the element was found, so a
// skipped subtree is distinguishable from one that passed.
func (n *Node) Errors() ErrorTree {
	tree := ErrorTree{NonFieldErrors: slices.Clone(nonNil(n.failures))}
	if n.elem == nil {
		return tree
	}
	for _, f := range n.fields {
		tree[f.FieldName()] = f.errorTree()
	}
	return tree
}

func (n *Node) errorTree() any { return n.Errors() }

func nonNil(failures []Failure) []Failure {
	if failures == nil {
		return []Failure{}
	}
	return failures
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
