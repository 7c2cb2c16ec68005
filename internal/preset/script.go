package preset

import (
	"regexp"

	"github.com/thoreinstein/pagecheck/internal/htmlcheck"
)

// functionPatterns return the patterns that recognize a definition of the
// JavaScript function name: a declaration, or a function or arrow function
// assigned to it.
func functionPatterns(name string) []*regexp.Regexp {
	q := regexp.QuoteMeta(name)
	return []*regexp.Regexp{
		regexp.MustCompile(`\bfunction\s*\*?\s*` + q + `\s*\(`),
		regexp.MustCompile(`\b` + q + `\s*[:=]\s*(?:async\s+)?function\b`),
		regexp.MustCompile(`\b` + q + `\s*[:=]\s*(?:async\s+)?(?:\([^)]*\)|[A-Za-z_$][\w$]*)\s*=>`),
	}
}

// DefinesFunction reports whether script source defines the named function.
func DefinesFunction(source, name string) bool {
	for _, re := range functionPatterns(name) {
		if re.MatchString(source) {
			return true
		}
	}
	return false
}

// ScriptWithFunction returns a locator for the first <script> below the
// parent element whose body defines the named JavaScript function.
func ScriptWithFunction(name string) htmlcheck.Locator {
	patterns := functionPatterns(name)
	return func(n *htmlcheck.Node, doc htmlcheck.Adapter) (htmlcheck.Element, error) {
		scripts, err := doc.SelectAll(n.Parent().Element(), "script")
		if err != nil {
			return nil, err
		}
		for _, s := range scripts {
			body := s.Text()
			for _, re := range patterns {
				if re.MatchString(body) {
					return s, nil
				}
			}
		}
		return nil, nil
	}
}

// scriptLabel is shown in place of a selector for a located script.
func scriptLabel(name string) string {
	return "script with " + name
}
