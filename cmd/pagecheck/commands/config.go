package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thoreinstein/pagecheck/internal/config"
	"github.com/thoreinstein/pagecheck/internal/editor"
	"github.com/thoreinstein/pagecheck/internal/errors"
	"github.com/thoreinstein/pagecheck/pkg/fileutil"
)

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false,
		"overwrite an existing config file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage pagecheck configuration",
	Long: `Manage pagecheck configuration stored in ~/.config/pagecheck/config.yaml.

Values resolve in order: PAGECHECK_* environment variables (PAGECHECK_FETCH_TIMEOUT
for fetch.timeout), the config file, then built-in defaults.

Without a subcommand, shows the effective configuration.`,
	Example: `  # Show the effective configuration
  pagecheck config

  # Get a specific value
  pagecheck config get fetch.timeout

  # Set the default preset
  pagecheck config set default_preset atlas

See Also: pagecheck doctor`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"list"},
	Short:   "Show the effective configuration",
	Long:    `Show every configuration value in YAML format, after defaults and environment overrides.`,
	Args:    cobra.NoArgs,
	RunE:    runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long:  `Get a single configuration value by key. Nested keys use dot notation.`,
	Example: `  pagecheck config get fail_on
  pagecheck config get fetch.max_bytes`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the config file.

The value is validated before the file is written. Only keys you set are
stored; everything else keeps its default.`,
	Example: `  pagecheck config set fetch.timeout 30s
  pagecheck config set fail_on warning`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default values",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in $EDITOR",
	Long: `Open the config file in your editor, creating it with default values
first if it does not exist. The file is validated after the editor exits.

Uses $EDITOR, then $VISUAL, then nano or vi.`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}
	data, err := fileutil.MarshalYAML(config.View(cfg))
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	if used := config.FileUsed(); used != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", used)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !config.ValidKey(key) {
		return errors.NewUserError(errors.Newf("unknown config key %q", key), "Run: pagecheck config show")
	}
	fmt.Fprintln(cmd.OutOrStdout(), viper.GetString(key))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	path := configFile()
	if err := config.Set(path, key, value); err != nil {
		if errors.Is(err, errors.ErrInvalidConfig) {
			return errors.NewUserError(err, "Run: pagecheck config show")
		}
		return errors.NewUserError(err, "")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, path)
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := configFile()
	if err := config.WriteDefault(path, configInitForce); err != nil {
		return errors.NewUserError(err, "")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	path := configFile()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.WriteDefault(path, false); err != nil {
			return errors.NewSystemError(err, "")
		}
	}

	err := editor.Open(path, editor.IO{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()})
	if err != nil {
		return errors.NewSystemError(err, "")
	}

	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return errors.NewSystemError(errors.Wrapf(err, "reading %s", path), "")
	}
	if _, err := config.Parse(data); err != nil {
		return errors.NewUserError(errors.Wrapf(err, "%s is invalid", path), "Run: pagecheck config edit")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
	return nil
}
