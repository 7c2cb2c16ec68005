package htmlcheck

import (
	"fmt"
)

// Locator finds the element of n without a selector. The locator may search
// anywhere below n.Parent().Element(). It returns nil when nothing matches.
type Locator func(n *Node, doc Adapter) (Element, error)

// NodeHook runs whole-tag assertions. It runs whether or not the element
// was found; use [Node.Exists] to tell.
type NodeHook func(n *Node) error

// FieldHook runs after the named field has been validated. f is an
// *Attribute, *Node or *Repeated.
type FieldHook func(f Field) error

// TagOption configures a TagSpec.
type TagOption func(*TagSpec)

// TagSpec is an immutable tag rule.
type TagSpec struct {
	selector   string
	label      string
	locate     Locator
	root       bool
	required   bool
	many       bool
	severity   Severity
	fields     []fieldSpec
	hook       NodeHook
	fieldHooks map[string]FieldHook
	hookOrder  []string
}

// fieldSpec is one declared field. Exactly one of attr and tag is set.
type fieldSpec struct {
	name string
	attr *AttrSpec
	tag  *TagSpec
}

func newTagSpec(opts []TagOption) *TagSpec {
	t := &TagSpec{
		required:   true,
		severity:   SeverityDanger,
		fieldHooks: map[string]FieldHook{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tag creates a tag rule located by a CSS selector evaluated against the
// parent tag's element.
func Tag(selector string, opts ...TagOption) *TagSpec {
	t := newTagSpec(opts)
	t.selector = selector
	return t
}

// Locate creates a tag rule located by a custom function. label is shown in
// messages in place of a selector.
func Locate(label string, locate Locator, opts ...TagOption) *TagSpec {
	t := newTagSpec(opts)
	t.label = label
	t.locate = locate
	return t
}

// Root creates the rule for the document root. The root element is supplied
// by the caller of [Schema.Validate].
func Root(opts ...TagOption) *TagSpec {
	t := newTagSpec(opts)
	t.root = true
	t.label = "html"
	return t
}

// WithAttr declares an attribute field.
func WithAttr(field string, spec *AttrSpec) TagOption {
	return func(t *TagSpec) {
		t.fields = append(t.fields, fieldSpec{name: field, attr: spec})
	}
}

// WithTag declares a nested tag field.
func WithTag(field string, spec *TagSpec) TagOption {
	return func(t *TagSpec) {
		t.fields = append(t.fields, fieldSpec{name: field, tag: spec})
	}
}

// Many makes the tag match every element its selector finds.
func Many() TagOption {
	return func(t *TagSpec) {
		t.many = true
	}
}

// Optional allows the tag to be absent.
func Optional() TagOption {
	return func(t *TagSpec) {
		t.required = false
	}
}

// WithSeverity sets the severity reported when the tag is missing. Attributes
// without their own severity inherit it.
func WithSeverity(s Severity) TagOption {
	return func(t *TagSpec) {
		t.severity = s
	}
}

// Validate registers a whole-tag hook.
func Validate(hook NodeHook) TagOption {
	return func(t *TagSpec) {
		t.hook = hook
	}
}

// ValidateField registers a hook for the named field.
func ValidateField(field string, hook FieldHook) TagOption {
	return func(t *TagSpec) {
		if _, ok := t.fieldHooks[field]; !ok {
			t.hookOrder = append(t.hookOrder, field)
		}
		t.fieldHooks[field] = hook
	}
}

// Display returns the selector, or the label of a located tag.
func (t *TagSpec) Display() string {
	if t.selector != "" {
		return t.selector
	}
	return t.label
}

// problems returns the definition errors of this rule alone.
func (t *TagSpec) problems() []string {
	var out []string
	switch {
	case t.root && t.many:
		out = append(out, "root tag cannot be repeated")
	case t.root:
	case t.selector == "" && t.locate == nil:
		out = append(out, "tag needs a selector or a locator")
	case t.selector != "" && t.locate != nil:
		out = append(out, "tag cannot have both a selector and a locator")
	case t.many && t.locate != nil:
		out = append(out, "repeated tag needs a selector")
	}
	if !t.severity.Valid() {
		out = append(out, fmt.Sprintf("invalid severity %d", int(t.severity)))
	}

	seen := make(map[string]bool, len(t.fields))
	for _, f := range t.fields {
		switch {
		case f.name == "":
			out = append(out, "field name must not be empty")
		case seen[f.name]:
			out = append(out, fmt.Sprintf("duplicate field %q", f.name))
		case f.attr == nil && f.tag == nil:
			out = append(out, fmt.Sprintf("field %q has no rule", f.name))
		}
		seen[f.name] = true
	}
	for _, name := range t.hookOrder {
		if !seen[name] {
			out = append(out, fmt.Sprintf("field hook for undeclared field %q", name))
		}
	}
	return out
}
