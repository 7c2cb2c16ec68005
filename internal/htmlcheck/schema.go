package htmlcheck

import (
	"fmt"
	"slices"
	"strings"

	"github.com/thoreinstein/pagecheck/internal/errors"
)

// ErrInvalidSchema marks every definition error returned by Compile.
var ErrInvalidSchema = errors.New("invalid schema")

// DefinitionError describes a programming error in a schema definition.
type DefinitionError struct {
	// Path is the dotted path of the offending rule.
	Path string
	// Problems lists what is wrong with the rule.
	Problems []string
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	path := e.Path
	if path == "" {
		path = "root"
	}
	return fmt.Sprintf("schema %s: %s", path, strings.Join(e.Problems, "; "))
}

// Is makes every DefinitionError match ErrInvalidSchema.
func (e *DefinitionError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// Schema is a checked, immutable spec tree. It is safe for concurrent use.
type Schema struct {
	root *TagSpec
}

// Compile checks a spec tree built with [Root] and returns a Schema.
func Compile(root *TagSpec) (*Schema, error) {
	if root == nil {
		return nil, &DefinitionError{Problems: []string{"schema is nil"}}
	}
	if !root.root {
		return nil, &DefinitionError{Problems: []string{"schema must start with Root"}}
	}
	var errs []error
	collectProblems(root, "", &errs)
	switch len(errs) {
	case 0:
	case 1:
		return nil, errs[0]
	default:
		return nil, errors.Join(errs...)
	}
	return &Schema{root: root}, nil
}

// MustCompile is like Compile but panics on a definition error. It is meant
// for schemas declared at package level.
func MustCompile(root *TagSpec) *Schema {
	s, err := Compile(root)
	if err != nil {
		panic(err)
	}
	return s
}

func collectProblems(t *TagSpec, path string, errs *[]error) {
	if p := t.problems(); len(p) > 0 {
		*errs = append(*errs, &DefinitionError{Path: path, Problems: p})
	}
	for _, f := range t.fields {
		fieldPath := joinPath(path, f.name)
		switch {
		case f.attr != nil:
			if p := f.attr.problems(); len(p) > 0 {
				*errs = append(*errs, &DefinitionError{Path: fieldPath, Problems: p})
			}
		case f.tag != nil:
			if f.tag.root {
				*errs = append(*errs, &DefinitionError{Path: fieldPath, Problems: []string{"Root cannot be nested"}})
				continue
			}
			collectProblems(f.tag, fieldPath, errs)
		}
	}
}

// Validate binds a fresh instance tree to root, fills it from doc and runs
// every check. The returned error is reserved for adapter and hook faults;
// validation failures are read from the returned Node.
func (s *Schema) Validate(doc Adapter, root Element) (*Node, error) {
	n := bind(s.root, "", nil, 0)
	n.elem = root
	if err := n.fill(doc); err != nil {
		return nil, err
	}
	if err := n.validate(); err != nil {
		return nil, err
	}
	return n, nil
}

// Rule describes one declared field for display.
type Rule struct {
	Path       string   `json:"path"`
	Kind       string   `json:"kind"`
	Selector   string   `json:"selector,omitempty"`
	Attribute  string   `json:"attribute,omitempty"`
	Required   bool     `json:"required"`
	Severity   Severity `json:"severity"`
	Expected   *string  `json:"expected,omitempty"`
	Choices    []string `json:"choices,omitempty"`
	IgnoreCase bool     `json:"ignore_case,omitempty"`
}

// Rule kinds.
const (
	KindTag  = "tag"
	KindList = "list"
	KindAttr = "attr"
)

// Rules returns every declared field in traversal order.
func (s *Schema) Rules() []Rule {
	var out []Rule
	collectRules(s.root, "", &out)
	return out
}

func collectRules(t *TagSpec, path string, out *[]Rule) {
	for _, f := range t.fields {
		fieldPath := joinPath(path, f.name)
		if f.attr != nil {
			r := Rule{
				Path:       fieldPath,
				Kind:       KindAttr,
				Attribute:  f.attr.name,
				Required:   f.attr.required,
				Severity:   t.severity,
				Choices:    slices.Clone(f.attr.choices),
				IgnoreCase: f.attr.ignoreCase,
			}
			if r.Attribute == "" {
				r.Attribute = f.name
			}
			if f.attr.severitySet {
				r.Severity = f.attr.severity
			}
			if f.attr.hasExpected {
				v := f.attr.expected
				r.Expected = &v
			}
			*out = append(*out, r)
			continue
		}
		kind := KindTag
		if f.tag.many {
			kind = KindList
		}
		*out = append(*out, Rule{
			Path:     fieldPath,
			Kind:     kind,
			Selector: f.tag.Display(),
			Required: f.tag.required,
			Severity: f.tag.severity,
		})
		collectRules(f.tag, fieldPath, out)
	}
}
