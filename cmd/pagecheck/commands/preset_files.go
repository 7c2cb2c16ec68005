package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/pagecheck/internal/editor"
	"github.com/thoreinstein/pagecheck/internal/errors"
	"github.com/thoreinstein/pagecheck/internal/paths"
	"github.com/thoreinstein/pagecheck/internal/preset"
	"github.com/thoreinstein/pagecheck/internal/translate"
	"github.com/thoreinstein/pagecheck/pkg/fileutil"
)

var (
	presetInitFormat string
	presetInitForce  bool
	presetConvertTo  string
	presetConvertOut string
)

func init() {
	presetInitCmd.Flags().StringVar(&presetInitFormat, "format", string(preset.FormatYAML),
		"file format: yaml, toml")
	presetInitCmd.Flags().BoolVarP(&presetInitForce, "force", "f", false,
		"overwrite an existing preset file")
	presetConvertCmd.Flags().StringVar(&presetConvertTo, "to", "",
		"target format: yaml, toml (default: the other one)")
	presetConvertCmd.Flags().StringVarP(&presetConvertOut, "output", "o", "",
		"write to this file instead of stdout")
	presetCmd.AddCommand(presetInitCmd)
	presetCmd.AddCommand(presetEditCmd)
	presetCmd.AddCommand(presetConvertCmd)
}

var presetInitCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Create a preset file in the presets directory",
	Long: `Create a starter preset file named <name> in the presets directory.

The starter checks the page language, title and a form; edit it to match
your pages.`,
	Example: `  pagecheck preset init landing
  pagecheck preset init landing --format toml`,
	Args: cobra.ExactArgs(1),
	RunE: runPresetInit,
}

var presetEditCmd = &cobra.Command{
	Use:   "edit <name>",
	Short: "Open a preset file in $EDITOR",
	Long: `Open the file a preset was loaded from in your editor.

Uses $EDITOR, then $VISUAL, then nano or vi. Built-in presets have no file;
copy one with "pagecheck preset init" instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runPresetEdit,
}

var presetConvertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a preset file between YAML and TOML",
	Long: `Convert a preset file between YAML and TOML.

The file is validated first; an invalid preset is not converted.`,
	Example: `  pagecheck preset convert landing.yaml > landing.toml
  pagecheck preset convert landing.toml --to yaml -o landing.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runPresetConvert,
}

// starterPreset is written by preset init.
func starterPreset(name string) *preset.File {
	yes := true
	lang := "en"
	return &preset.File{
		Name:        name,
		Description: "Starter preset, edit to match your pages",
		Root: preset.NodeDef{
			Attributes: map[string]preset.AttrDef{
				"lang": {Expected: &lang, Severity: "warning"},
			},
			Children: map[string]preset.NodeDef{
				"title": {Selector: "title"},
				"form": {
					Selector: "form",
					Required: &yes,
					Attributes: map[string]preset.AttrDef{
						"method": {Choices: []string{"post"}, IgnoreCase: true},
					},
				},
			},
		},
	}
}

func runPresetInit(cmd *cobra.Command, args []string) error {
	name := strings.ToLower(strings.TrimSpace(args[0]))
	if name == "" || strings.ContainsAny(name, `/\ `) {
		return errors.NewUserError(errors.Newf("invalid preset name %q", args[0]), "use letters, digits, - and _")
	}
	format := preset.Format(presetInitFormat)
	ext, ok := map[preset.Format]string{preset.FormatYAML: ".yaml", preset.FormatTOML: ".toml"}[format]
	if !ok {
		return errors.NewUserError(errors.Wrapf(preset.ErrUnsupportedFormat, "%q", presetInitFormat), "use yaml or toml")
	}

	dir, err := paths.Clean(cfg.PresetsDir)
	if err != nil || dir == "" {
		return errors.NewConfigError(errors.Newf("invalid presets_dir %q", cfg.PresetsDir))
	}
	path := filepath.Join(dir, name+ext)
	if _, err := os.Stat(path); err == nil && !presetInitForce {
		return errors.NewUserError(errors.Newf("preset file already exists at %s", path), "Use --force to overwrite it")
	}

	data, err := translate.Encode(starterPreset(name), format)
	if err != nil {
		return err
	}
	if err := paths.EnsureDir(dir, 0o755); err != nil {
		return errors.NewSystemError(errors.Wrap(err, "creating presets directory"), "")
	}
	if err := fileutil.AtomicWriteFile(path, data, 0o644); err != nil {
		return errors.NewSystemError(err, "")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	return nil
}

func runPresetEdit(cmd *cobra.Command, args []string) error {
	registry, _, err := loadRegistry(cmd.Context(), presetFiles)
	if err != nil {
		return err
	}
	p, err := registry.Get(args[0])
	if err != nil {
		return errors.NewUserError(err, "Run: pagecheck preset list")
	}
	if p.Source == preset.SourceBuiltin {
		return errors.NewUserError(errors.Newf("preset %q is built in", p.Name), "Run: pagecheck preset init <name>")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Location: %s\n", p.Source)
	if err := editor.Open(p.Source, editor.IO{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}); err != nil {
		return errors.NewSystemError(err, "")
	}

	if _, err := preset.LoadFile(p.Source); err != nil {
		return errors.NewUserError(errors.Wrap(err, "the edited preset is invalid"), "Run: pagecheck preset edit "+p.Name)
	}
	return nil
}

func runPresetConvert(cmd *cobra.Command, args []string) error {
	src := args[0]
	from, err := preset.FormatFor(src)
	if err != nil {
		return errors.NewUserError(err, "use a .yaml, .yml or .toml file")
	}

	to := preset.Format(presetConvertTo)
	switch to {
	case "":
		to = preset.FormatTOML
		if from == preset.FormatTOML {
			to = preset.FormatYAML
		}
	case preset.FormatYAML, preset.FormatTOML:
	default:
		return errors.NewUserError(errors.Wrapf(preset.ErrUnsupportedFormat, "%q", presetConvertTo), "use yaml or toml")
	}

	data, err := fileutil.ReadFileWithLimit(src)
	if err != nil {
		return errors.NewUserError(errors.Wrapf(err, "reading %s", src), "")
	}
	out, err := translate.Preset(data, from, to)
	if err != nil {
		return errors.NewUserError(errors.Wrapf(err, "converting %s", src), "Run: pagecheck doctor")
	}

	if presetConvertOut == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := fileutil.AtomicWriteFile(presetConvertOut, out, 0o644); err != nil {
		return errors.NewSystemError(err, "")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", presetConvertOut)
	return nil
}
