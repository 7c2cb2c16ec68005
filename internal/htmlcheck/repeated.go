package htmlcheck

import (
	"fmt"
	"slices"

	"github.com/thoreinstein/pagecheck/internal/errors"
)

// Repeated is a tag rule declared with [Many], bound to every element its
// selector matched under the parent tag.
type Repeated struct {
	spec   *TagSpec
	field  string
	parent *Node
	items  []*Node
}

// FieldName returns the name the tag was declared under.
func (r *Repeated) FieldName() string { return r.field }

// Path returns the dotted path of the field, without an item number.
func (r *Repeated) Path() string { return joinPath(r.parent.Path(), r.field) }

// Selector returns the selector matched against the parent element.
func (r *Repeated) Selector() string { return r.spec.selector }

// Required reports whether at least one match is needed.
func (r *Repeated) Required() bool { return r.spec.required }

// Items returns the matched instances in document order.
func (r *Repeated) Items() []*Node { return slices.Clone(r.items) }

// Len returns the number of matches.
func (r *Repeated) Len() int { return len(r.items) }

// fill binds one fresh instance per match, numbered from 1.
func (r *Repeated) fill(doc Adapter) error {
	els, err := doc.SelectAll(r.parent.elem, r.spec.selector)
	if err != nil {
		return errors.Wrapf(err, "selecting %q for %s", r.spec.selector, r.Path())
	}
	r.items = make([]*Node, 0, len(els))
	for i, el := range els {
		item := bind(r.spec, r.field, r.parent, i+1)
		item.elem = el
		if err := item.fill(doc); err != nil {
			return err
		}
		r.items = append(r.items, item)
	}
	return nil
}

// validate checks every item independently. A required field without
// matches records a single failure on the parent instead of on the items.
func (r *Repeated) validate() error {
	if len(r.items) == 0 {
		if r.spec.required {
			r.parent.record(Failure{
				Message:  fmt.Sprintf("%s not found: at least one %q is required", r.field, r.spec.selector),
				Severity: r.spec.severity,
				Code:     CodeEmptyList,
			})
		}
		return nil
	}
	for _, item := range r.items {
		if err := item.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repeated) errorTree() any {
	out := make([]ErrorTree, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item.Errors())
	}
	return out
}
