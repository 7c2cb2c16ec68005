// Package htmlcheck validates a parsed HTML document against a declarative
// schema of expected tags, attributes and structural constraints.
//
// # Core Concepts
//
//   - [Severity]: ordered failure rank, success < info < warning < danger.
//   - [Failure]: a single failed check, recorded against its owning field.
//   - [AttrSpec] / [Attribute]: an attribute rule and its per-run instance.
//   - [TagSpec] / [Node]: a tag rule and its per-run instance.
//   - [Repeated]: zero or more matches of a tag rule declared with [Many].
//   - [ErrorTree] and [Histogram]: the outputs of a run.
//
// Specs are immutable templates. [Compile] checks a spec tree once and
// returns a [Schema] that may be shared between goroutines; every call to
// [Schema.Validate] binds a fresh instance tree, so no state leaks from one
// document into the next.
//
// # Basic Usage
//
//	schema := htmlcheck.MustCompile(htmlcheck.Root(
//		htmlcheck.WithTag("form", htmlcheck.Tag("form#mForm",
//			htmlcheck.WithAttr("method", htmlcheck.Attr(
//				htmlcheck.Expected("POST"), htmlcheck.IgnoreCase())),
//			htmlcheck.WithTag("phone", htmlcheck.Tag("input[name=phone]",
//				htmlcheck.WithAttr("type", htmlcheck.Attr(htmlcheck.Expected("tel"))))),
//		)),
//	))
//
//	root, err := schema.Validate(adapter, htmlElement)
//	if err != nil {
//		// adapter failure, not a validation failure
//	}
//	hist, _ := htmlcheck.CountLevels(root.Errors())
package htmlcheck
