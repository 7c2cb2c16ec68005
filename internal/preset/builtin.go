package preset

import (
	"strings"

	hc "github.com/thoreinstein/pagecheck/internal/htmlcheck"
)

// Built-in preset names.
const (
	Atlas  = "atlas"
	AceAff = "aceaff"
)

// defaultTitle is the title left by page templates that were never edited.
const defaultTitle = "Document"

// autocompleteInput requires an input named sub_id_<n> with the given
// autocomplete token.
func autocompleteInput(selector, token string, sev hc.Severity) *hc.TagSpec {
	return hc.Tag(selector,
		hc.WithSeverity(sev),
		hc.WithAttr("autocomplete", hc.Attr(hc.Expected(token))),
	)
}

func atlasSchema() *hc.Schema {
	title := hc.Tag("title", hc.Validate(func(n *hc.Node) error {
		if n.Exists() && strings.TrimSpace(n.Element().Text()) == defaultTitle {
			return hc.Fail(hc.SeverityDanger, "title still has the template text %q", defaultTitle)
		}
		return nil
	}))

	form := hc.Tag("form", hc.Many(),
		hc.WithAttr("id", hc.Attr(hc.Expected("mForm"))),
		hc.WithTag("sub_id_24", autocompleteInput("input[name=sub_id_24]", "given-name", hc.SeverityDanger)),
		hc.WithTag("sub_id_25", autocompleteInput("input[name=sub_id_25]", "family-name", hc.SeverityDanger)),
		hc.WithTag("sub_id_26", autocompleteInput("input[name=sub_id_26]", "tel-national", hc.SeverityDanger)),
		hc.WithTag("sub_id_27", autocompleteInput("input[name=sub_id_27]", "email", hc.SeverityDanger)),
		hc.WithTag("sub_id_21", autocompleteInput("input[name=sub_id_21]", "address-level2", hc.SeverityWarning)),
		hc.WithTag("sub_id_22", autocompleteInput("input[name=sub_id_22]", "street-address", hc.SeverityWarning)),
		hc.WithTag("sub_id_23", autocompleteInput("input[name=sub_id_23]", "postal-code", hc.SeverityWarning)),
		hc.WithTag("sub_id_9", autocompleteInput("select[name=sub_id_9]", "address-level1", hc.SeverityInfo)),
	)

	return hc.MustCompile(hc.Root(
		hc.WithTag("title", title),
		hc.WithTag("form", form),
		hc.WithTag("short_img_script", hc.Locate(scriptLabel("getShortImageSrc"), ScriptWithFunction("getShortImageSrc"))),
		hc.WithTag("inject_script", hc.Locate(scriptLabel("injectScript"), ScriptWithFunction("injectScript"))),
		hc.WithTag("product_img", hc.Tag("img.def-product-item-image")),
		hc.WithTag("header_logo_img", hc.Tag("img.header_9__logo")),
	))
}

// namePattern is the pattern attribute expected on name inputs.
const namePattern = `[A-Za-z\s\-]{2,}`

func hiddenInput(name, value string) *hc.TagSpec {
	return hc.Tag("input[name="+name+"]",
		hc.WithAttr("type", hc.Attr(hc.Expected("hidden"))),
		hc.WithAttr("value", hc.Attr(hc.Expected(value))),
	)
}

func nameInput(name string) *hc.TagSpec {
	return hc.Tag("input[name="+name+"]",
		hc.WithAttr("type", hc.Attr(hc.Expected("text"))),
		hc.WithAttr("pattern", hc.Attr(hc.Expected(namePattern))),
		hc.WithAttr("required", hc.Attr()),
	)
}

func aceAffSchema() *hc.Schema {
	phoneCC := hc.Tag("input[name=phonecc]",
		hc.WithAttr("type", hc.Attr(hc.Expected("hidden"))),
		hc.WithAttr("value", hc.Attr(hc.Check(func(a *hc.Attribute) error {
			if v, ok := a.Value(); ok {
				return hc.Fail(hc.SeverityInfo, "phone country code %q", v)
			}
			return nil
		}))),
	)

	form := hc.Tag("form", hc.Many(),
		hc.WithAttr("action", hc.Attr(hc.Choices("send.php", "./send.php"))),
		hc.WithTag("aff_sub", hiddenInput("aff_sub", "{subid}")),
		hc.WithTag("user_agent", hiddenInput("ua", "{_user_agent}")),
		hc.WithTag("ip_address", hiddenInput("ip", "{ip}")),
		hc.WithTag("phone_cc", phoneCC),
		hc.WithTag("first_name", nameInput("first_name")),
		hc.WithTag("last_name", nameInput("last_name")),
		hc.WithTag("email", hc.Tag("input[name=email]",
			hc.WithAttr("type", hc.Attr(hc.Expected("email"))),
			hc.WithAttr("required", hc.Attr()),
		)),
		hc.WithTag("phone", hc.Tag("input[name=phone]",
			hc.WithAttr("type", hc.Attr(hc.Expected("tel"))),
		)),
		hc.WithTag("password", hc.Tag("input[name=password]",
			hc.WithAttr("type", hc.Attr(hc.Expected("text"))),
			hc.WithAttr("required", hc.Attr()),
		)),
	)

	return hc.MustCompile(hc.Root(hc.WithTag("order_form", form)))
}

// builtins returns the presets compiled into the binary.
func builtins() []*Preset {
	return []*Preset{
		{
			Name:        Atlas,
			Description: "Atlas order form: sub_id autocomplete inputs, tracking scripts, title",
			Source:      SourceBuiltin,
			Schema:      atlasSchema(),
		},
		{
			Name:        AceAff,
			Description: "AceAff order form: send.php action, hidden tracking macros, contact inputs",
			Source:      SourceBuiltin,
			Schema:      aceAffSchema(),
		},
	}
}
