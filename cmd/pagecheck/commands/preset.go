package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/pagecheck/internal/errors"
	"github.com/thoreinstein/pagecheck/internal/htmlcheck"
)

var (
	presetJSON  bool
	presetFiles []string
)

func init() {
	presetCmd.PersistentFlags().StringSliceVar(&presetFiles, "preset-file", nil,
		"also load presets from these files")
	presetListCmd.Flags().BoolVar(&presetJSON, "json", false,
		"output as JSON")
	presetShowCmd.Flags().BoolVar(&presetJSON, "json", false,
		"output as JSON")
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetShowCmd)
	rootCmd.AddCommand(presetCmd)
}

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage validation presets",
	Long: `Inspect, create and convert the presets pages are validated against.

Presets are built in or loaded from YAML/TOML files in the presets directory
(see: pagecheck config get presets_dir).`,
	Example: `  # List presets
  pagecheck preset list

  # Show every rule of a preset
  pagecheck preset show atlas

  # Start a preset of your own
  pagecheck preset init landing

See Also: pagecheck check, pagecheck doctor`,
	RunE: runPresetList,
}

var presetListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List available presets",
	Args:    cobra.NoArgs,
	RunE:    runPresetList,
}

var presetShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the rules of a preset",
	Long: `Show every field a preset declares in traversal order: its path,
the selector or attribute it checks, whether it is required, the severity of
a failure and the expected value or choices.`,
	Args: cobra.ExactArgs(1),
	RunE: runPresetShow,
}

// presetSummary is the JSON form of a list entry.
type presetSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
	Fields      int    `json:"fields"`
}

func runPresetList(cmd *cobra.Command, _ []string) error {
	registry, _, err := loadRegistry(cmd.Context(), presetFiles)
	if err != nil {
		return err
	}

	presets := registry.List()
	out := cmd.OutOrStdout()

	if presetJSON {
		summaries := make([]presetSummary, 0, len(presets))
		for _, p := range presets {
			summaries = append(summaries, presetSummary{
				Name:        p.Name,
				Description: p.Description,
				Source:      p.Source,
				Fields:      len(p.Schema.Rules()),
			})
		}
		return writeJSON(out, summaries)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFIELDS\tSOURCE\tDESCRIPTION")
	for _, p := range presets {
		marker := ""
		if p.Name == strings.ToLower(cfg.DefaultPreset) {
			marker = " (default)"
		}
		fmt.Fprintf(w, "%s%s\t%d\t%s\t%s\n", p.Name, marker, len(p.Schema.Rules()), p.Source, p.Description)
	}
	return w.Flush()
}

// presetDetail is the JSON form of preset show.
type presetDetail struct {
	presetSummary
	Rules []htmlcheck.Rule `json:"rules"`
}

func runPresetShow(cmd *cobra.Command, args []string) error {
	registry, _, err := loadRegistry(cmd.Context(), presetFiles)
	if err != nil {
		return err
	}
	p, err := registry.Get(args[0])
	if err != nil {
		return errors.NewUserError(err, "Run: pagecheck preset list")
	}

	rules := p.Schema.Rules()
	out := cmd.OutOrStdout()
	if presetJSON {
		return writeJSON(out, presetDetail{
			presetSummary: presetSummary{Name: p.Name, Description: p.Description, Source: p.Source, Fields: len(rules)},
			Rules:         rules,
		})
	}

	fmt.Fprintf(out, "%s (%s)\n", p.Name, p.Source)
	if p.Description != "" {
		fmt.Fprintf(out, "%s\n", p.Description)
	}
	fmt.Fprintln(out)
	printRules(out, rules)
	return nil
}

func printRules(out io.Writer, rules []htmlcheck.Rule) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tKIND\tTARGET\tREQUIRED\tSEVERITY\tRULE")
	for _, r := range rules {
		target := r.Selector
		if r.Kind == htmlcheck.KindAttr {
			target = "@" + r.Attribute
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Path, r.Kind, target, yesNo(r.Required), r.Severity, ruleText(r))
	}
	_ = w.Flush()
}

func ruleText(r htmlcheck.Rule) string {
	var parts []string
	if r.Expected != nil {
		parts = append(parts, fmt.Sprintf("= %q", *r.Expected))
	}
	if len(r.Choices) > 0 {
		parts = append(parts, "one of "+strings.Join(r.Choices, ", "))
	}
	if r.IgnoreCase {
		parts = append(parts, "ignoring case")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "encoding JSON")
	}
	return nil
}
