package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/pagecheck/internal/checker"
	"github.com/thoreinstein/pagecheck/internal/errors"
	"github.com/thoreinstein/pagecheck/internal/fetch"
	"github.com/thoreinstein/pagecheck/internal/htmlcheck"
	"github.com/thoreinstein/pagecheck/internal/logging"
	"github.com/thoreinstein/pagecheck/internal/preset"
	"github.com/thoreinstein/pagecheck/internal/report"
	"github.com/thoreinstein/pagecheck/pkg/fileutil"
)

// stdinTarget reads the page from standard input.
const stdinTarget = "-"

var (
	checkPreset      string
	checkPresetFiles []string
	checkJSON        bool
	checkDetail      bool
	checkFailOn      string
)

func init() {
	checkCmd.Flags().StringVarP(&checkPreset, "preset", "p", "",
		"preset to validate against (default: config default_preset)")
	checkCmd.Flags().StringSliceVar(&checkPresetFiles, "preset-file", nil,
		"load an extra preset from a YAML or TOML file (repeatable)")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false,
		"output results as JSON")
	checkCmd.Flags().BoolVar(&checkDetail, "detail", false,
		"include every matched element and attribute")
	checkCmd.Flags().StringVar(&checkFailOn, "fail-on", "",
		"lowest severity that fails a page: info, warning, danger (default: config fail_on)")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check <file|url|->...",
	Short: "Validate pages against a preset",
	Long: `Validate one or more pages against a preset.

Each target is a file path, an http(s) URL, or "-" for standard input.
Several targets are checked concurrently and reported in argument order.

The preset is taken from --preset, then from default_preset in the config.
On a terminal without either, pagecheck asks for one interactively. A single
--preset-file is used directly when no other preset is named.

Exit codes:
  0 - Every page passed
  1 - A page reached --fail-on, could not be checked, or bad usage
  2 - System error`,
	Example: `  # Check a saved page
  pagecheck check index.html --preset atlas

  # Check stdin with a preset file
  curl -s https://example.com | pagecheck check - --preset-file landing.yaml

  # Fail on warnings, show the element tree
  pagecheck check index.html -p atlas --fail-on warning --detail

See Also: pagecheck preset list, pagecheck preset show`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	registry, loaded, err := loadRegistry(ctx, checkPresetFiles)
	if err != nil {
		return err
	}

	name, err := resolvePreset(cmd, registry, loaded)
	if err != nil {
		return err
	}

	failOn, err := resolveFailOn()
	if err != nil {
		return err
	}

	reqs, err := buildRequests(cmd, args)
	if err != nil {
		return err
	}

	c := checker.New(checker.Options{
		Registry: registry,
		Fetcher: fetch.New(fetch.Options{
			Timeout:   cfg.Fetch.Timeout,
			UserAgent: cfg.Fetch.UserAgent,
			MaxBytes:  cfg.Fetch.MaxBytes,
		}),
		Concurrency: cfg.Concurrency,
	})

	logging.FromContext(ctx).Info("checking pages", "count", len(reqs), "preset", name)
	outcomes, err := c.CheckAll(ctx, reqs, name)
	if err != nil {
		return errors.NewUserError(err, "Run: pagecheck preset list")
	}

	format := report.FormatText
	if checkJSON {
		format = report.FormatJSON
	}
	opts := []report.Option{report.FailOn(failOn)}
	if checkDetail {
		opts = append(opts, report.WithDetail())
	}

	summary, err := report.NewReporter(cmd.OutOrStdout(), format, opts...).Report(outcomes)
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	if summary.Failed() {
		return errors.NewExitError(errors.ErrCheckFailed, errors.ExitUser)
	}
	return nil
}

// resolvePreset picks the preset name: the flag, a lone preset file, the
// configured default, then an interactive choice.
func resolvePreset(cmd *cobra.Command, registry *preset.Registry, loaded []*preset.Preset) (string, error) {
	switch {
	case checkPreset != "":
		return checkPreset, nil
	case len(loaded) == 1:
		return loaded[0].Name, nil
	case cfg.DefaultPreset != "":
		return cfg.DefaultPreset, nil
	case interactive(cmd):
		return pickPreset(registry)
	}
	err := errors.WithHint(errors.New("no preset selected"), "available presets: "+strings.Join(registry.Names(), ", "))
	return "", errors.NewUserError(err, "Pass --preset or run: pagecheck config set default_preset <name>")
}

func resolveFailOn() (htmlcheck.Severity, error) {
	value := checkFailOn
	if value == "" {
		value = cfg.FailOn
	}
	sev, err := htmlcheck.ParseSeverity(value)
	if err != nil {
		return 0, errors.NewUserError(err, "use one of: info, warning, danger")
	}
	return sev, nil
}

// buildRequests reads file and stdin targets. URLs are fetched later by
// the checker.
func buildRequests(cmd *cobra.Command, args []string) ([]checker.Request, error) {
	limit := cfg.Fetch.MaxBytes
	reqs := make([]checker.Request, 0, len(args))
	seenStdin := false

	for _, target := range args {
		switch {
		case fetch.IsURL(target):
			reqs = append(reqs, checker.Request{URL: target})

		case target == stdinTarget:
			if seenStdin {
				return nil, errors.NewUserError(errors.New("stdin (-) given more than once"), "pass - at most once")
			}
			seenStdin = true
			data, err := fileutil.ReadAllMax(cmd.InOrStdin(), limit)
			if err != nil {
				return nil, errors.NewUserError(errors.Wrap(err, "reading stdin"), "")
			}
			reqs = append(reqs, checker.Request{Source: "stdin", HTML: data})

		default:
			data, err := fileutil.ReadFileMax(target, limit)
			if err != nil {
				return nil, errors.NewUserError(errors.Wrapf(err, "reading %s", target), "")
			}
			reqs = append(reqs, checker.Request{Source: target, HTML: data})
		}
	}
	return reqs, nil
}
