package commands

import (
	"context"
	"fmt"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thoreinstein/pagecheck/internal/errors"
	"github.com/thoreinstein/pagecheck/internal/logging"
	"github.com/thoreinstein/pagecheck/internal/paths"
	"github.com/thoreinstein/pagecheck/internal/preset"
)

// loadRegistry returns the built-in presets plus those in the presets
// directory and in files.
func loadRegistry(ctx context.Context, files []string) (*preset.Registry, []*preset.Preset, error) {
	registry := preset.Default()

	dir, err := paths.Clean(cfg.PresetsDir)
	if err != nil {
		return nil, nil, errors.NewUserError(err, "Run: pagecheck config set presets_dir <dir>")
	}
	if dir != "" {
		n, err := registry.LoadDir(dir)
		if err != nil {
			return nil, nil, errors.NewUserError(err, "Run: pagecheck doctor")
		}
		logging.FromContext(ctx).Debug("presets loaded", "dir", dir, "count", n)
	}

	loaded := make([]*preset.Preset, 0, len(files))
	for _, f := range files {
		path, err := paths.Clean(f)
		if err != nil {
			return nil, nil, errors.NewUserError(err, "check the --preset-file path")
		}
		p, err := preset.LoadFile(path)
		if err != nil {
			return nil, nil, errors.NewUserError(err, "Run: pagecheck doctor")
		}
		if err := registry.Register(p); err != nil {
			return nil, nil, errors.NewUserError(err, "give the preset a unique name")
		}
		loaded = append(loaded, p)
	}
	return registry, loaded, nil
}

// interactive reports whether both ends of the command are a terminal.
var interactive = func(cmd *cobra.Command) bool {
	return isTerminal(cmd.InOrStdin()) && isTerminal(cmd.OutOrStdout())
}

func isTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// pickPreset lets the user choose a preset with a fuzzy finder.
var pickPreset = func(registry *preset.Registry) (string, error) {
	presets := registry.List()
	if len(presets) == 0 {
		return "", errors.New("no presets to choose from")
	}

	idx, err := fuzzyfinder.Find(
		presets,
		func(i int) string {
			return presets[i].Name
		},
		fuzzyfinder.WithPromptString("preset> "),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			p := presets[i]
			return fmt.Sprintf("Name: %s\nSource: %s\nFields: %d\n\n%s",
				p.Name, p.Source, len(p.Schema.Rules()), p.Description)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", errors.NewUserError(errors.New("no preset selected"), "pass --preset")
		}
		return "", errors.Wrap(err, "choosing a preset")
	}
	return presets[idx].Name, nil
}
