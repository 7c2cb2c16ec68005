package htmlcheck

import (
	"fmt"
	"slices"
	"strings"

	"github.com/thoreinstein/pagecheck/internal/errors"
)

// AttrHook runs attribute-specific logic after the built-in checks. Returning
// a *Failure records it on the attribute; any other error aborts the run.
type AttrHook func(a *Attribute) error

// AttrOption configures an AttrSpec.
type AttrOption func(*AttrSpec)

// AttrSpec is an immutable attribute rule.
type AttrSpec struct {
	name        string
	required    bool
	ignoreCase  bool
	expected    string
	hasExpected bool
	choices     []string
	hasChoices  bool
	severity    Severity
	severitySet bool
	hook        AttrHook
}

// Attr creates an attribute rule. Attributes are required unless
// [AttrOptional] is given; setting [Expected] or [Choices] forces required.
func Attr(opts ...AttrOption) *AttrSpec {
	a := &AttrSpec{
		required: true,
		severity: SeverityDanger,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.hasExpected || a.hasChoices {
		a.required = true
	}
	return a
}

// Named reads the attribute under name instead of the field name.
func Named(name string) AttrOption {
	return func(a *AttrSpec) {
		a.name = name
	}
}

// AttrOptional allows the attribute to be absent.
func AttrOptional() AttrOption {
	return func(a *AttrSpec) {
		a.required = false
	}
}

// IgnoreCase compares expected values and choices case-insensitively.
func IgnoreCase() AttrOption {
	return func(a *AttrSpec) {
		a.ignoreCase = true
	}
}

// Expected requires the attribute value to equal value.
func Expected(value string) AttrOption {
	return func(a *AttrSpec) {
		a.expected = value
		a.hasExpected = true
	}
}

// Choices requires the attribute value to be one of values.
func Choices(values ...string) AttrOption {
	return func(a *AttrSpec) {
		a.choices = slices.Clone(values)
		a.hasChoices = true
	}
}

// AttrSeverity sets the severity of the built-in checks. Without it the
// attribute inherits the severity of its tag.
func AttrSeverity(s Severity) AttrOption {
	return func(a *AttrSpec) {
		a.severity = s
		a.severitySet = true
	}
}

// Check registers a hook that runs after the built-in checks.
func Check(hook AttrHook) AttrOption {
	return func(a *AttrSpec) {
		a.hook = hook
	}
}

// problems returns the definition errors of the rule.
func (a *AttrSpec) problems() []string {
	var out []string
	if a.hasExpected && a.hasChoices {
		out = append(out, "expected and choices are mutually exclusive")
	}
	if a.hasChoices && len(a.choices) == 0 {
		out = append(out, "choices must not be empty")
	}
	if a.severitySet && !a.severity.Valid() {
		out = append(out, fmt.Sprintf("invalid severity %d", int(a.severity)))
	}
	return out
}

// Attribute is an attribute rule bound to one element for one run.
type Attribute struct {
	spec     *AttrSpec
	field    string
	name     string
	severity Severity
	owner    *Node
	value    string
	present  bool
	failures []Failure
}

func bindAttribute(spec *AttrSpec, field string, owner *Node) *Attribute {
	name := spec.name
	if name == "" {
		name = field
	}
	severity := spec.severity
	if !spec.severitySet {
		severity = owner.spec.severity
	}
	return &Attribute{
		spec:     spec,
		field:    field,
		name:     name,
		severity: severity,
		owner:    owner,
	}
}

// FieldName returns the name the attribute was declared under.
func (a *Attribute) FieldName() string { return a.field }

// Name returns the markup attribute name.
func (a *Attribute) Name() string { return a.name }

// Path returns the dotted path of the attribute.
func (a *Attribute) Path() string { return joinPath(a.owner.Path(), a.field) }

// Node returns the tag the attribute belongs to.
func (a *Attribute) Node() *Node { return a.owner }

// Value returns the attribute value and whether it was present.
func (a *Attribute) Value() (string, bool) { return a.value, a.present }

// Required reports whether the attribute must be present.
func (a *Attribute) Required() bool { return a.spec.required }

// Expected returns the expected value, if the rule has one.
func (a *Attribute) Expected() (string, bool) { return a.spec.expected, a.spec.hasExpected }

// Choices returns the allowed values, or nil.
func (a *Attribute) Choices() []string { return slices.Clone(a.spec.choices) }

// Failures returns the failures recorded for the attribute.
func (a *Attribute) Failures() []Failure { return slices.Clone(a.failures) }

// Severity returns the highest severity among the attribute's failures.
func (a *Attribute) Severity() Severity { return maxFailureSeverity(a.failures) }

func (a *Attribute) fill(el Element) {
	a.value, a.present = el.Attr(a.name)
}

// run executes the checks in order: required, then expected or choices when
// a value is present, then the hook. Failures never abort sibling checks.
func (a *Attribute) run() error {
	if a.spec.required && !a.present {
		a.record(Failure{
			Message:  fmt.Sprintf("Attr %q is required", a.name),
			Severity: a.severity,
			Code:     CodeRequired,
		})
	}

	if a.present {
		switch {
		case a.spec.hasExpected:
			if a.normalize(a.value) != a.normalize(a.spec.expected) {
				a.record(Failure{
					Message:  fmt.Sprintf("Attr value must be %q, actual %q", a.spec.expected, a.value),
					Severity: a.severity,
					Code:     CodeExpected,
				})
			}
		case a.spec.hasChoices:
			if !a.inChoices(a.value) {
				a.record(Failure{
					Message:  fmt.Sprintf("Attr value must be one of [%s], actual %q", strings.Join(a.spec.choices, ", "), a.value),
					Severity: a.severity,
					Code:     CodeChoices,
				})
			}
		}
	}

	if a.spec.hook != nil {
		if err := a.spec.hook(a); err != nil {
			return a.absorb(err)
		}
	}
	return nil
}

// absorb records err when it carries a Failure and returns it otherwise.
func (a *Attribute) absorb(err error) error {
	f, ok := asFailure(err)
	if !ok {
		return errors.Wrapf(err, "attribute %s", a.Path())
	}
	a.record(f)
	return nil
}

func (a *Attribute) record(f Failure) {
	f.Path = a.Path()
	a.failures = append(a.failures, f)
}

func (a *Attribute) normalize(v string) string {
	if a.spec.ignoreCase {
		return strings.ToLower(v)
	}
	return v
}

func (a *Attribute) inChoices(v string) bool {
	v = a.normalize(v)
	for _, c := range a.spec.choices {
		if a.normalize(c) == v {
			return true
		}
	}
	return false
}

func (a *Attribute) errorTree() any {
	out := make([]Failure, len(a.failures))
	copy(out, a.failures)
	return out
}
