package htmlcheck

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_PhoneFormPasses(t *testing.T) {
	doc := el("html", nil,
		el("body", nil,
			el("form", map[string]string{"id": "mForm", "method": "post"},
				el("input", map[string]string{"name": "phone", "type": "tel"}),
			),
		),
	)

	root, err := phoneFormSchema().Validate(&fakeDoc{}, doc)
	require.NoError(t, err)

	hist, err := CountLevels(root.Errors())
	require.NoError(t, err)
	assert.Equal(t, 0, hist.Total(), "errors: %v", root.Errors())
	assert.True(t, root.Child("form").Exists())
	assert.True(t, root.Child("form").Child("phone").Exists())
}

func TestValidate_PhoneFormFails(t *testing.T) {
	doc := el("html", nil,
		el("form", map[string]string{"id": "wrongId", "method": "GET"}),
	)

	root, err := phoneFormSchema().Validate(&fakeDoc{}, doc)
	require.NoError(t, err)

	form := root.Child("form")
	require.NotNil(t, form)

	id := form.Attribute("id").Failures()
	require.Len(t, id, 1)
	assert.Equal(t, CodeExpected, id[0].Code)
	assert.Contains(t, id[0].Message, `"mForm"`)
	assert.Contains(t, id[0].Message, `"wrongId"`)

	method := form.Attribute("method").Failures()
	require.Len(t, method, 1)
	assert.Equal(t, CodeChoices, method[0].Code)
	assert.Contains(t, method[0].Message, `"GET"`)

	phone := form.Child("phone")
	assert.False(t, phone.Exists())
	require.Len(t, phone.Failures(), 1)
	assert.Equal(t, CodeNotFound, phone.Failures()[0].Code)
	assert.Equal(t, SeverityDanger, phone.Failures()[0].Severity)
	assert.Equal(t, "form.phone", phone.Failures()[0].Path)

	// the missing tag's attributes are skipped, not reported
	assert.Empty(t, phone.Attribute("type").Failures())

	hist, err := CountLevels(root.Errors())
	require.NoError(t, err)
	assert.Equal(t, 3, hist.Count(SeverityDanger))
	assert.Equal(t, 3, hist.Total())
}

func TestValidate_MissingSubtreeReportsOnce(t *testing.T) {
	schema := MustCompile(Root(
		WithTag("form", Tag("form",
			WithAttr("id", Attr(Expected("mForm"))),
			WithTag("phone", Tag("input[name=phone]", WithAttr("type", Attr()))),
			WithTag("email", Tag("input[name=email]", WithAttr("type", Attr()))),
		)),
	))

	root, err := schema.Validate(&fakeDoc{}, el("html", nil))
	require.NoError(t, err)

	tree := root.Errors()
	formTree, ok := tree["form"].(ErrorTree)
	require.True(t, ok)
	assert.Len(t, formTree, 1, "only the non-field bucket is present for a missing tag")
	assert.Len(t, formTree[NonFieldErrors], 1)
	assert.Equal(t, 1, countFailures(tree))
}

func TestValidate_OptionalMissingStillRunsHook(t *testing.T) {
	var seen *Node
	schema := MustCompile(Root(
		WithTag("title", Tag("title",
			Optional(),
			Validate(func(n *Node) error {
				seen = n
				if !n.Exists() {
					return Fail(SeverityWarning, "no title")
				}
				return nil
			}),
		)),
	))

	root, err := schema.Validate(&fakeDoc{}, el("html", nil))
	require.NoError(t, err)
	require.NotNil(t, seen)

	failures := root.Child("title").Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, CodeCustom, failures[0].Code)
	assert.Equal(t, SeverityWarning, failures[0].Severity)
	for _, f := range failures {
		assert.NotEqual(t, CodeNotFound, f.Code)
	}
}

func TestValidate_OptionalMissingWithoutHook(t *testing.T) {
	schema := MustCompile(Root(WithTag("img", Tag("img", Optional(), WithSeverity(SeverityInfo)))))

	root, err := schema.Validate(&fakeDoc{}, el("html", nil))
	require.NoError(t, err)
	assert.Empty(t, root.Child("img").Failures())
}

func TestValidate_NodeHookOnFoundElement(t *testing.T) {
	title := el("title", nil)
	title.text = "Document"
	schema := MustCompile(Root(
		WithTag("title", Tag("title", Validate(func(n *Node) error {
			if n.Exists() && n.Element().Text() == "Document" {
				return Fail(SeverityDanger, "default title text")
			}
			return nil
		}))),
	))

	root, err := schema.Validate(&fakeDoc{}, el("html", nil, el("head", nil, title)))
	require.NoError(t, err)
	require.Len(t, root.Child("title").Failures(), 1)
	assert.Equal(t, "title", root.Child("title").Failures()[0].Path)
}

func TestValidate_FieldHooks(t *testing.T) {
	var order []string
	schema := MustCompile(Root(
		WithTag("form", Tag("form",
			WithAttr("id", Attr(Expected("MyId"))),
			WithTag("phone", Tag("input[name=phone]",
				WithAttr("name", Attr(Expected("phone"))),
				Validate(func(*Node) error {
					order = append(order, "phone.validate")
					return Fail(SeverityWarning, "phone")
				}),
				ValidateField("name", func(f Field) error {
					order = append(order, "phone.name")
					return Fail(SeverityWarning, "phone name")
				}),
			)),
			Validate(func(*Node) error {
				order = append(order, "form.validate")
				return Fail(SeverityDanger, "form validate")
			}),
			ValidateField("id", func(f Field) error {
				order = append(order, "form.id")
				a, ok := f.(*Attribute)
				require.True(t, ok)
				assert.Len(t, a.Failures(), 0, "hook sees the validated field")
				return Fail(SeverityInfo, "form field error")
			}),
			ValidateField("phone", func(f Field) error {
				order = append(order, "form.phone")
				_, ok := f.(*Node)
				require.True(t, ok)
				return Fail(SeverityInfo, "phone tag error")
			}),
		)),
	))

	doc := el("html", nil,
		el("form", map[string]string{"id": "MyId"},
			el("input", map[string]string{"name": "phone"}),
		),
	)
	root, err := schema.Validate(&fakeDoc{}, doc)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"form.validate", "form.id", "phone.validate", "phone.name", "form.phone",
	}, order)

	form := root.Child("form")
	require.Len(t, form.Failures(), 1)
	assert.Equal(t, "form validate", form.Failures()[0].Message)

	id := form.Attribute("id").Failures()
	require.Len(t, id, 1)
	assert.Equal(t, "form field error", id[0].Message)
	assert.Equal(t, "form.id", id[0].Path)

	phone := form.Child("phone")
	require.Len(t, phone.Failures(), 2)
	assert.Equal(t, "phone", phone.Failures()[0].Message)
	assert.Equal(t, "phone tag error", phone.Failures()[1].Message)

	name := phone.Attribute("name").Failures()
	require.Len(t, name, 1)
	assert.Equal(t, "phone name", name[0].Message)
}

func TestValidate_FieldHooksSkippedForMissingElement(t *testing.T) {
	called := false
	schema := MustCompile(Root(
		WithTag("form", Tag("form",
			WithAttr("id", Attr()),
			ValidateField("id", func(Field) error {
				called = true
				return nil
			}),
		)),
	))

	_, err := schema.Validate(&fakeDoc{}, el("html", nil))
	require.NoError(t, err)
	assert.False(t, called)
}

func TestNode_SeverityIgnoresChildren(t *testing.T) {
	schema := MustCompile(Root(
		WithTag("form", Tag("form",
			WithAttr("id", Attr(Expected("mForm"), AttrSeverity(SeverityInfo))),
			WithTag("phone", Tag("input[name=phone]")),
		)),
	))

	root, err := schema.Validate(&fakeDoc{}, el("html", nil, el("form", map[string]string{"id": "x"})))
	require.NoError(t, err)

	form := root.Child("form")
	assert.Equal(t, SeverityInfo, form.Severity())
	assert.Equal(t, SeverityDanger, form.Child("phone").Severity())
	assert.Equal(t, SeveritySuccess, root.Severity())
}

func TestValidate_Locator(t *testing.T) {
	findScript := func(fn string) Locator {
		return func(n *Node, doc Adapter) (Element, error) {
			scripts, err := doc.SelectAll(n.Parent().Element(), "script")
			if err != nil {
				return nil, err
			}
			for _, s := range scripts {
				if strings.Contains(s.Text(), "function "+fn) {
					return s, nil
				}
			}
			return nil, nil
		}
	}
	schema := MustCompile(Root(
		WithTag("inject", Locate("script with injectScript", findScript("injectScript"))),
		WithTag("short", Locate("script with getShortImageSrc", findScript("getShortImageSrc"), WithSeverity(SeverityWarning))),
	))

	script := el("script", nil)
	script.text = "function injectScript(src) {}"
	root, err := schema.Validate(&fakeDoc{}, el("html", nil, el("body", nil, el("div", nil, script))))
	require.NoError(t, err)

	assert.True(t, root.Child("inject").Exists())
	assert.Empty(t, root.Child("inject").Failures())

	short := root.Child("short").Failures()
	require.Len(t, short, 1)
	assert.Equal(t, "script with getShortImageSrc not found", short[0].Message)
	assert.Equal(t, SeverityWarning, short[0].Severity)
}

func TestValidate_AdapterErrorPropagates(t *testing.T) {
	schema := MustCompile(Root(
		WithTag("bad", Tag("!broken")),
		WithTag("after", Tag("form")),
	))

	root, err := schema.Validate(&fakeDoc{}, el("html", nil))
	require.Error(t, err)
	assert.Nil(t, root)
	assert.True(t, errors.Is(err, errBadSelector))
	assert.Contains(t, err.Error(), "bad")
}

func TestValidate_Idempotent(t *testing.T) {
	schema := phoneFormSchema()
	doc := el("html", nil,
		el("form", map[string]string{"id": "wrongId", "method": "GET"}),
		el("form", map[string]string{"id": "mForm", "method": "POST"},
			el("input", map[string]string{"name": "phone", "type": "text"})),
	)

	first, err := schema.Validate(&fakeDoc{}, doc)
	require.NoError(t, err)
	second, err := schema.Validate(&fakeDoc{}, doc)
	require.NoError(t, err)

	assert.Equal(t, first.Errors(), second.Errors())
	assert.NotSame(t, first, second)
	assert.NotSame(t, first.Child("form").Attribute("id"), second.Child("form").Attribute("id"))
}

func TestValidate_NilRoot(t *testing.T) {
	root, err := phoneFormSchema().Validate(&fakeDoc{}, nil)
	require.NoError(t, err)
	require.Len(t, root.Failures(), 1)
	assert.Equal(t, "html not found", root.Failures()[0].Message)
	assert.Len(t, root.Errors(), 1)
}

func TestCompile_DefinitionErrors(t *testing.T) {
	tests := []struct {
		name string
		root *TagSpec
		want string
	}{
		{"nil", nil, "schema is nil"},
		{"not a root", Tag("form"), "must start with Root"},
		{"no selector", Root(WithTag("x", Tag(""))), "needs a selector or a locator"},
		{"selector and locator", Root(WithTag("x", func() *TagSpec {
			spec := Locate("label", func(*Node, Adapter) (Element, error) { return nil, nil })
			spec.selector = "div"
			return spec
		}())), "both a selector and a locator"},
		{"repeated locator", Root(WithTag("x", Locate("label", func(*Node, Adapter) (Element, error) { return nil, nil }, Many()))), "repeated tag needs a selector"},
		{"duplicate field", Root(WithAttr("id", Attr()), WithAttr("id", Attr())), `duplicate field "id"`},
		{"nil rule", Root(WithAttr("id", nil)), "has no rule"},
		{"hook for unknown field", Root(ValidateField("missing", func(Field) error { return nil })), "undeclared field"},
		{"nested root", Root(WithTag("x", Root())), "cannot be nested"},
		{"repeated root", Root(Many()), "cannot be repeated"},
		{"bad tag severity", Root(WithTag("x", Tag("div", WithSeverity(-1)))), "invalid severity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.root)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSchema)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMustCompile_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustCompile(Root(WithAttr("a", Attr(Expected("x"), Choices("y")))))
	})
}

func TestSchema_Rules(t *testing.T) {
	rules := phoneFormSchema(Many(), WithSeverity(SeverityWarning)).Rules()
	require.Len(t, rules, 5)

	assert.Equal(t, "form", rules[0].Path)
	assert.Equal(t, KindList, rules[0].Kind)
	assert.Equal(t, SeverityWarning, rules[0].Severity)

	assert.Equal(t, "form.id", rules[1].Path)
	assert.Equal(t, KindAttr, rules[1].Kind)
	require.NotNil(t, rules[1].Expected)
	assert.Equal(t, "mForm", *rules[1].Expected)
	assert.Equal(t, SeverityWarning, rules[1].Severity)

	assert.Equal(t, []string{"POST"}, rules[2].Choices)
	assert.True(t, rules[2].IgnoreCase)

	assert.Equal(t, "form.phone", rules[3].Path)
	assert.Equal(t, "input[name=phone]", rules[3].Selector)
	assert.Equal(t, "form.phone.type", rules[4].Path)
}
