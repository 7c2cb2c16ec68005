package htmlcheck

// Element is a tag in the parsed document.
type Element interface {
	// Tag returns the lowercase tag name.
	Tag() string
	// Attr returns the normalized value of the named attribute. Multi-valued
	// attributes such as class are joined with single spaces.
	Attr(name string) (string, bool)
	// Text returns the text content of the element and its descendants.
	Text() string
	// String returns a short display of the opening tag.
	String() string
}

// Adapter evaluates selectors against a document. Implementations must
// return untyped nil from SelectOne when nothing matches and must return
// SelectAll matches in document order.
type Adapter interface {
	SelectOne(parent Element, selector string) (Element, error)
	SelectAll(parent Element, selector string) ([]Element, error)
}
