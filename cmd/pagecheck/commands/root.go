// Package commands implements the CLI commands for pagecheck.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/pagecheck/cmd"
	"github.com/thoreinstein/pagecheck/internal/config"
	"github.com/thoreinstein/pagecheck/internal/errors"
	"github.com/thoreinstein/pagecheck/internal/logging"
	"github.com/thoreinstein/pagecheck/internal/paths"
)

// debugEnv raises the log level when no -v flag is given.
const debugEnv = "PAGECHECK_DEBUG"

var (
	// configPath holds the value of the --config flag.
	configPath string

	// verbosity holds the count of -v flags.
	verbosity int

	// quiet holds the value of the -q/--quiet flag.
	quiet bool

	// logFormat holds the value of the --log-format flag.
	logFormat string

	// logFile holds the path to the log file.
	logFile string
)

var (
	// cfg is the configuration loaded before every command.
	cfg *config.Config

	// configLoadErr holds any error that occurred during config loading.
	configLoadErr error

	// logCloser closes the --log-file handle after the command.
	logCloser io.Closer
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default: ./config.yaml, then "+paths.ConfigFile()+")")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("pagecheck version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

var rootCmd = &cobra.Command{
	Use:   "pagecheck",
	Short: "Validate landing page markup against declarative presets",
	Long: `pagecheck checks HTML landing pages against presets: declarative
schemas of the tags and attributes a page must carry.

Every problem is reported with a severity (success, info, warning, danger)
rather than stopping at the first one, so a single run shows everything that
is wrong with a page. Pages come from files, stdin or http(s) URLs.

Presets are built in or loaded from YAML/TOML files in the presets
directory.`,
	Example: `  # Check a saved page against the atlas preset
  pagecheck check index.html --preset atlas

  # Check several live pages as JSON
  pagecheck check https://a.example https://b.example --preset atlas --json

  # List available presets
  pagecheck preset list

  # Check the environment
  pagecheck doctor

  See Also: pagecheck preset, pagecheck config`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return loadConfig(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		closeLogFile()
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("cannot use --quiet and --verbose together"), "pass one of them")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			switch os.Getenv(debugEnv) {
			case "1", "true":
				v = 2 // Debug
			case "2":
				v = 3 // Trace
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	// fatih/color colors the report and does not read PAGECHECK_NO_COLOR.
	if logging.ColorDisabled() {
		color.NoColor = true
	}

	format := logging.Format(logFormat)
	if format != logging.FormatText && format != logging.FormatJSON {
		return errors.NewUserError(errors.Newf("invalid log format %q", logFormat), "use text or json")
	}

	lc := logging.Config{
		Level:  level,
		Format: format,
		Output: cmd.ErrOrStderr(),
	}

	closeLogFile()
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(errors.Wrap(err, "opening log file"), "check the --log-file path")
		}
		lc.File = f
		logCloser = f
	}

	logger := logging.New(lc)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

func closeLogFile() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

// loadConfig reads the configuration. Commands that repair or report on the
// configuration tolerate a broken file and see the error in configLoadErr.
func loadConfig(cmd *cobra.Command) error {
	config.Init()
	path, err := paths.Clean(configPath)
	if err != nil {
		return errors.NewUserError(err, "check the --config path")
	}
	cfg, configLoadErr = config.Load(path)
	if configLoadErr == nil {
		logging.FromContext(cmd.Context()).Debug("config loaded", "file", config.FileUsed())
		return nil
	}

	cfg = config.Default()
	if toleratesBrokenConfig(cmd) {
		return nil
	}
	return errors.NewConfigError(configLoadErr)
}

func toleratesBrokenConfig(cmd *cobra.Command) bool {
	switch cmd.CommandPath() {
	case "pagecheck doctor", "pagecheck config init", "pagecheck config set", "pagecheck config edit",
		"pagecheck version", "pagecheck help":
		return true
	}
	return false
}

// configFile returns the file config commands write to.
func configFile() string {
	if configPath != "" {
		if p, err := paths.Clean(configPath); err == nil {
			return p
		}
	}
	if used := config.FileUsed(); used != "" {
		return used
	}
	return paths.ConfigFile()
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	closeLogFile()
	return exitCode(os.Stderr, err)
}

// exitCode prints err with its hints and maps it to an exit code. A failed
// check prints nothing: the report already says why.
func exitCode(w io.Writer, err error) int {
	code := errors.Code(err)
	if err == nil || errors.Silent(err) {
		return code
	}

	var suggestion string
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		suggestion = exitErr.Suggestion
		err = exitErr.Err
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "  hint: %s\n", hint)
	}
	if suggestion != "" {
		fmt.Fprintf(w, "  %s\n", suggestion)
	}
	return code
}
