package preset

import (
	"bytes"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/pagecheck/internal/errors"
	hc "github.com/thoreinstein/pagecheck/internal/htmlcheck"
	"github.com/thoreinstein/pagecheck/pkg/fileutil"
)

// Format is a preset file encoding.
type Format string

// Supported preset file formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrUnsupportedFormat is returned for a file extension with no decoder.
var ErrUnsupportedFormat = errors.New("unsupported preset file format")

// File is the on-disk form of a preset.
type File struct {
	Name        string  `yaml:"name" toml:"name"`
	Description string  `yaml:"description,omitempty" toml:"description,omitempty"`
	Root        NodeDef `yaml:"root" toml:"root"`
}

// NodeDef declares a tag. Exactly one of Selector and ScriptFunction is set
// on every node but the root.
type NodeDef struct {
	Selector       string             `yaml:"selector,omitempty" toml:"selector,omitempty"`
	ScriptFunction string             `yaml:"script_function,omitempty" toml:"script_function,omitempty"`
	Required       *bool              `yaml:"required,omitempty" toml:"required,omitempty"`
	Many           bool               `yaml:"many,omitempty" toml:"many,omitempty"`
	Severity       string             `yaml:"severity,omitempty" toml:"severity,omitempty"`
	Attributes     map[string]AttrDef `yaml:"attributes,omitempty" toml:"attributes,omitempty"`
	Children       map[string]NodeDef `yaml:"children,omitempty" toml:"children,omitempty"`
}

// AttrDef declares an attribute. The attribute name defaults to the key it
// is declared under.
type AttrDef struct {
	Name       string   `yaml:"name,omitempty" toml:"name,omitempty"`
	Required   *bool    `yaml:"required,omitempty" toml:"required,omitempty"`
	IgnoreCase bool     `yaml:"ignore_case,omitempty" toml:"ignore_case,omitempty"`
	Expected   *string  `yaml:"expected,omitempty" toml:"expected,omitempty"`
	Choices    []string `yaml:"choices,omitempty" toml:"choices,omitempty"`
	Severity   string   `yaml:"severity,omitempty" toml:"severity,omitempty"`
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedFormat, "%s", filepath.Base(path))
	}
}

// IsPresetFile reports whether path has a preset file extension.
func IsPresetFile(path string) bool {
	_, err := FormatFor(path)
	return err == nil
}

// Decode parses preset file data. Unknown keys are rejected.
func Decode(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, errors.Wrap(err, "decoding YAML preset")
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, errors.Newf("decoding TOML preset: unknown keys: %s", strictKeys(strict))
			}
			return nil, errors.Wrap(err, "decoding TOML preset")
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", format)
	}
	return &f, nil
}

// LoadFile reads, decodes and compiles a preset file. A file without a name
// is named after its base name.
func LoadFile(path string) (*Preset, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading preset %s", path)
	}
	f, err := Decode(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "loading preset %s", path)
	}
	if strings.TrimSpace(f.Name) == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	p, err := f.Compile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading preset %s", path)
	}
	return p, nil
}

// Compile turns the declaration into a Preset. Fields are declared in name
// order, so traversal order does not depend on the file layout.
func (f *File) Compile(source string) (*Preset, error) {
	if f.Root.Selector != "" || f.Root.ScriptFunction != "" || f.Root.Many {
		return nil, errors.New("root: selector, script_function and many do not apply to the root")
	}
	opts, err := f.Root.options("")
	if err != nil {
		return nil, err
	}
	schema, err := hc.Compile(hc.Root(opts...))
	if err != nil {
		return nil, err
	}
	return &Preset{
		Name:        f.Name,
		Description: f.Description,
		Source:      source,
		Schema:      schema,
	}, nil
}

func (n NodeDef) options(path string) ([]hc.TagOption, error) {
	var opts []hc.TagOption
	if n.Required != nil && !*n.Required {
		opts = append(opts, hc.Optional())
	}
	if n.Many {
		opts = append(opts, hc.Many())
	}
	if n.Severity != "" {
		sev, err := hc.ParseSeverity(n.Severity)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", displayPath(path))
		}
		opts = append(opts, hc.WithSeverity(sev))
	}

	for _, name := range sortedKeys(n.Attributes) {
		spec, err := n.Attributes[name].spec(joinPath(path, name))
		if err != nil {
			return nil, err
		}
		opts = append(opts, hc.WithAttr(name, spec))
	}

	for _, name := range sortedKeys(n.Children) {
		child := n.Children[name]
		childPath := joinPath(path, name)
		tag, err := child.tag(childPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, hc.WithTag(name, tag))
	}
	return opts, nil
}

func (n NodeDef) tag(path string) (*hc.TagSpec, error) {
	if n.Selector != "" && n.ScriptFunction != "" {
		return nil, errors.Newf("%s: selector and script_function are mutually exclusive", path)
	}
	opts, err := n.options(path)
	if err != nil {
		return nil, err
	}
	if n.ScriptFunction != "" {
		return hc.Locate(scriptLabel(n.ScriptFunction), ScriptWithFunction(n.ScriptFunction), opts...), nil
	}
	return hc.Tag(n.Selector, opts...), nil
}

func (a AttrDef) spec(path string) (*hc.AttrSpec, error) {
	var opts []hc.AttrOption
	if a.Name != "" {
		opts = append(opts, hc.Named(a.Name))
	}
	if a.Required != nil && !*a.Required {
		opts = append(opts, hc.AttrOptional())
	}
	if a.IgnoreCase {
		opts = append(opts, hc.IgnoreCase())
	}
	if a.Expected != nil {
		opts = append(opts, hc.Expected(*a.Expected))
	}
	if a.Choices != nil {
		opts = append(opts, hc.Choices(a.Choices...))
	}
	if a.Severity != "" {
		sev, err := hc.ParseSeverity(a.Severity)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", path)
		}
		opts = append(opts, hc.AttrSeverity(sev))
	}
	return hc.Attr(opts...), nil
}

func strictKeys(err *toml.StrictMissingError) string {
	keys := make([]string, 0, len(err.Errors))
	for _, de := range err.Errors {
		keys = append(keys, strings.Join(de.Key(), "."))
	}
	return strings.Join(keys, ", ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func displayPath(path string) string {
	if path == "" {
		return "root"
	}
	return path
}
