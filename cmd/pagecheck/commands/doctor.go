package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/pagecheck/internal/config"
	"github.com/thoreinstein/pagecheck/internal/doctor"
	"github.com/thoreinstein/pagecheck/internal/errors"
	"github.com/thoreinstein/pagecheck/internal/paths"
	"github.com/thoreinstein/pagecheck/internal/preset"
)

var (
	doctorJSON    bool
	doctorVerbose bool
	doctorFix     bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "all", false,
		"show every check, including passed ones")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"fix permission problems that can be fixed automatically")
	doctorCmd.MarkFlagsMutuallyExclusive("json", "all")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration and preset issues",
	Long: `Run diagnostic checks on the pagecheck configuration and presets.

Validates the config file, the default preset, every preset file in the
presets directory and the permissions of that directory.

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func doctorChecks() []doctor.Check {
	dir, err := paths.Clean(cfg.PresetsDir)
	if err != nil {
		dir = cfg.PresetsDir
	}

	// Broken preset files are reported by the preset-files check.
	registry := preset.Default()
	_, _ = registry.LoadDir(dir)

	path := config.FileUsed()
	if path == "" && configPath != "" {
		path = configFile()
	}

	return []doctor.Check{
		doctor.NewConfigCheck(path),
		doctor.NewDefaultPresetCheck(cfg.DefaultPreset, registry),
		doctor.NewPresetsPermissionCheck(dir),
		doctor.NewPresetFilesCheck(dir),
	}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	runner := doctor.NewRunner(doctorChecks()...)
	report := runner.Run()
	out := cmd.OutOrStdout()

	if doctorFix {
		fixes := runner.Fix()
		if !doctorJSON {
			printFixes(out, fixes)
		}
		if len(fixes) > 0 {
			report = runner.Run()
		}
	}

	if doctorJSON {
		if err := writeJSON(out, report); err != nil {
			return err
		}
	} else {
		printDoctorReport(out, report)
	}

	switch report.Worst() {
	case doctor.SeverityError:
		return errors.NewExitError(nil, errors.ExitSystem)
	case doctor.SeverityWarning:
		return errors.NewExitError(nil, errors.ExitUser)
	default:
		return nil
	}
}

func printFixes(out io.Writer, fixes []doctor.FixResult) {
	for _, f := range fixes {
		mark := color.GreenString("✓")
		if !f.Fixed {
			mark = color.RedString("✗")
		}
		fmt.Fprintf(out, "%s fixed %s: %s\n", mark, f.Path, f.Description)
	}
	if len(fixes) > 0 {
		fmt.Fprintln(out)
	}
}

func printDoctorReport(out io.Writer, report *doctor.Report) {
	shown := false
	for _, result := range report.Results {
		if !doctorVerbose && result.Status != doctor.SeverityError && result.Status != doctor.SeverityWarning {
			continue
		}
		shown = true
		fmt.Fprintf(out, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)

		if problems, ok := result.Details["problems"].([]string); ok {
			for _, p := range problems {
				fmt.Fprintf(out, "    %s\n", p)
			}
		}
		if files, ok := result.Details["files"].([]doctor.FileResult); ok {
			for _, f := range files {
				if f.Status == "error" {
					fmt.Fprintf(out, "    %s: %s\n", f.Path, f.Message)
				}
			}
		}
		if result.FixHint != "" && result.Status >= doctor.SeverityWarning {
			fmt.Fprintf(out, "  hint: %s\n", result.FixHint)
		}
	}

	if shown {
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return color.GreenString("✓")
	case doctor.SeverityInfo:
		return color.CyanString("ℹ")
	case doctor.SeverityWarning:
		return color.YellowString("⚠")
	case doctor.SeverityError:
		return color.RedString("✗")
	default:
		return "?"
	}
}
