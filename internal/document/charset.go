package document

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"

	"github.com/thoreinstein/pagecheck/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts markup to UTF-8 and returns the name of its source
// encoding. The encoding comes from a byte order mark, the charset parameter
// of contentType, or a <meta> declaration, in that order. Undeclared markup
// is UTF-8 when it is valid UTF-8 and windows-1252 otherwise.
func Decode(data []byte, contentType string) ([]byte, string, error) {
	enc, name, certain := charset.DetermineEncoding(data, contentType)
	// DetermineEncoding only sniffs the first 1024 bytes, so an ASCII head
	// hides UTF-8 text further down.
	if !certain && name == "windows-1252" && utf8.Valid(data) {
		name = "utf-8"
	}
	if name == "utf-8" {
		return bytes.TrimPrefix(data, utf8BOM), name, nil
	}

	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, name, errors.Wrapf(err, "decoding %s markup", name)
	}
	return out, name, nil
}
