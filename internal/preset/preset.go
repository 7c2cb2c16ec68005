// Package preset provides the named schemas pagecheck validates pages
// against.
//
// Two presets are built in. More are loaded from YAML or TOML files, either
// from the presets directory or from an explicit path.
package preset

import (
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/thoreinstein/pagecheck/internal/errors"
	"github.com/thoreinstein/pagecheck/internal/htmlcheck"
)

// SourceBuiltin is the Source of presets compiled into the binary.
const SourceBuiltin = "builtin"

// Preset is a named, compiled schema.
type Preset struct {
	// Name is the lower-case lookup key.
	Name string
	// Description is a one-line summary.
	Description string
	// Source is SourceBuiltin or the file the preset was loaded from.
	Source string
	// Schema is the compiled schema.
	Schema *htmlcheck.Schema
}

// Registry holds presets by name. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	presets map[string]*Preset
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{presets: make(map[string]*Preset)}
}

// Default returns a registry holding the built-in presets.
func Default() *Registry {
	r := NewRegistry()
	for _, p := range builtins() {
		if err := r.Register(p); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds p. Names are case-insensitive and must be unique.
func (r *Registry) Register(p *Preset) error {
	if p == nil || p.Schema == nil {
		return errors.New("preset has no schema")
	}
	name := normalizeName(p.Name)
	if name == "" {
		return errors.New("preset name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.presets[name]; ok {
		return errors.Newf("preset %q from %s is already defined by %s", name, p.Source, existing.Source)
	}
	p.Name = name
	r.presets[name] = p
	return nil
}

// Get returns the named preset. An unknown name yields an error matching
// errors.ErrPresetNotFound with the known names as a hint.
func (r *Registry) Get(name string) (*Preset, error) {
	r.mu.RLock()
	p, ok := r.presets[normalizeName(name)]
	r.mu.RUnlock()
	if !ok {
		err := errors.Wrapf(errors.ErrPresetNotFound, "%q", name)
		return nil, errors.WithHint(err, "available presets: "+strings.Join(r.Names(), ", "))
	}
	return p, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.presets))
	for name := range r.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns the registered presets sorted by name.
func (r *Registry) List() []*Preset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Preset, 0, len(r.presets))
	for _, p := range r.presets {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *Preset) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// LoadDir registers every preset file in dir. A missing directory is not
// an error. Files are loaded in name order and the first failure stops the
// scan.
func (r *Registry) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "reading preset directory %s", dir)
	}

	loaded := 0
	for _, e := range entries {
		if e.IsDir() || !IsPresetFile(e.Name()) {
			continue
		}
		p, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return loaded, err
		}
		if err := r.Register(p); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
