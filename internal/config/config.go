// Package config provides configuration management for pagecheck using Viper.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/thoreinstein/pagecheck/internal/errors"
	"github.com/thoreinstein/pagecheck/internal/paths"
	"github.com/thoreinstein/pagecheck/pkg/fileutil"
)

// AppName is the application name used for config file naming.
const AppName = paths.AppName

// CurrentVersion is the config schema version this build writes.
const CurrentVersion = 1

// Default values.
const (
	DefaultTimeout     = 15 * time.Second
	DefaultMaxBytes    = 5 << 20
	DefaultUserAgent   = "pagecheck/1 (+landing page audit)"
	DefaultConcurrency = 4
	DefaultFailOn      = "danger"
)

// Config represents the top-level configuration structure.
type Config struct {
	Version       int    `mapstructure:"version" yaml:"version"`
	DefaultPreset string `mapstructure:"default_preset" yaml:"default_preset"`
	PresetsDir    string `mapstructure:"presets_dir" yaml:"presets_dir"`
	Fetch         Fetch  `mapstructure:"fetch" yaml:"fetch"`
	Concurrency   int    `mapstructure:"concurrency" yaml:"concurrency"`
	FailOn        string `mapstructure:"fail_on" yaml:"fail_on"`
}

// Fetch configures page downloads.
type Fetch struct {
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
	MaxBytes  int64         `mapstructure:"max_bytes" yaml:"max_bytes"`
}

// Keys lists every configuration key in dotted form.
func Keys() []string {
	return []string{
		"version",
		"default_preset",
		"presets_dir",
		"fetch.timeout",
		"fetch.user_agent",
		"fetch.max_bytes",
		"concurrency",
		"fail_on",
	}
}

// ValidKey reports whether key is a known configuration key.
func ValidKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// Init resets Viper and installs defaults, search paths and environment
// bindings. Call this once at application startup before accessing config
// values.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	// PAGECHECK_FETCH_TIMEOUT=30s overrides fetch.timeout
	viper.SetEnvPrefix("PAGECHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	for key, value := range defaults() {
		viper.SetDefault(key, value)
	}
}

func defaults() map[string]any {
	return map[string]any{
		"version":          CurrentVersion,
		"default_preset":   "",
		"presets_dir":      paths.PresetsDir(),
		"fetch.timeout":    DefaultTimeout,
		"fetch.user_agent": DefaultUserAgent,
		"fetch.max_bytes":  DefaultMaxBytes,
		"concurrency":      DefaultConcurrency,
		"fail_on":          DefaultFailOn,
	}
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Version:     CurrentVersion,
		PresetsDir:  paths.PresetsDir(),
		Concurrency: DefaultConcurrency,
		FailOn:      DefaultFailOn,
		Fetch: Fetch{
			Timeout:   DefaultTimeout,
			UserAgent: DefaultUserAgent,
			MaxBytes:  DefaultMaxBytes,
		},
	}
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
// Returns the loaded configuration or default values if no file is found (when path is empty).
// The result is validated; every problem is reported.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load without a file falls back to defaults.
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			return nil, errors.Wrapf(errors.ErrNotFound, "config file %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Mark(errors.Wrap(errors.Join(errs...), "validating config"), errors.ErrInvalidConfig)
	}

	return &cfg, nil
}

// Parse decodes YAML config data over the defaults and validates it.
// Validation problems match errors.ErrInvalidConfig; syntax errors do not.
func Parse(data []byte) (*Config, error) {
	file := map[string]any{}
	if err := unmarshalYAML(data, &file); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	return decode(file)
}

func decode(file map[string]any) (*Config, error) {
	v := viper.New()
	for k, def := range defaults() {
		v.SetDefault(k, def)
	}
	if err := v.MergeConfigMap(file); err != nil {
		return nil, errors.Wrap(err, "merging config")
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Mark(errors.Join(errs...), errors.ErrInvalidConfig)
	}
	return &cfg, nil
}

// FileUsed returns the config file Viper read, or "".
func FileUsed() string {
	return viper.ConfigFileUsed()
}

// Set validates value for key and writes the updated configuration to
// path atomically. Only keys already present in the file, plus key, are
// written, so defaults stay implicit.
func Set(path, key, value string) error {
	if !ValidKey(key) {
		return errors.WithHint(errors.Newf("unknown config key %q", key), "valid keys: "+strings.Join(Keys(), ", "))
	}

	file := map[string]any{}
	if data, err := fileutil.ReadFileWithLimit(path); err == nil {
		if err := unmarshalYAML(data, &file); err != nil {
			return errors.Wrapf(err, "parsing %s", path)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "reading %s", path)
	}

	typed, err := parseValue(key, value)
	if err != nil {
		return err
	}
	setNested(file, strings.Split(key, "."), typed)

	// Validate the merged view before touching the file.
	if _, err := decode(file); err != nil {
		return errors.Wrapf(err, "invalid value for %s", key)
	}

	if err := paths.EnsureDir(dirOf(path), 0); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	return errors.Wrap(fileutil.WriteYAML(path, file), "writing config file")
}

// WriteDefault writes the default configuration to path. An existing file
// is left alone unless force is set.
func WriteDefault(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.WithHint(errors.Newf("config file already exists at %s", path), "Use --force to overwrite it")
	}
	if err := paths.EnsureDir(dirOf(path), 0); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	return errors.Wrap(fileutil.WriteYAML(path, View(Default())), "writing config file")
}

// View renders cfg as nested maps keyed like the file, with durations as
// strings, the form Viper parses.
func View(cfg *Config) map[string]any {
	return map[string]any{
		"version":        cfg.Version,
		"default_preset": cfg.DefaultPreset,
		"presets_dir":    cfg.PresetsDir,
		"fetch": map[string]any{
			"timeout":    cfg.Fetch.Timeout.String(),
			"user_agent": cfg.Fetch.UserAgent,
			"max_bytes":  cfg.Fetch.MaxBytes,
		},
		"concurrency": cfg.Concurrency,
		"fail_on":     cfg.FailOn,
	}
}
