// Package translate converts preset files between YAML and TOML.
package translate

import (
	"bytes"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/pagecheck/internal/errors"
	"github.com/thoreinstein/pagecheck/internal/preset"
)

// Preset decodes preset data in one format and encodes it in another. The
// data is decoded strictly and compiled first, so an invalid preset is
// never converted.
func Preset(data []byte, from, to preset.Format) ([]byte, error) {
	f, err := preset.Decode(data, from)
	if err != nil {
		return nil, err
	}
	if _, err := f.Compile("convert"); err != nil {
		return nil, errors.Wrap(err, "compiling preset")
	}
	return Encode(f, to)
}

// Encode writes a preset file declaration in the given format.
func Encode(f *preset.File, format preset.Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case preset.FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return nil, errors.Wrap(err, "marshaling yaml")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "marshaling yaml")
		}
	case preset.FormatTOML:
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		if err := enc.Encode(f); err != nil {
			return nil, errors.Wrap(err, "marshaling toml")
		}
	default:
		return nil, errors.Wrapf(preset.ErrUnsupportedFormat, "%q", format)
	}
	return buf.Bytes(), nil
}
