// Package paths resolves the per-user locations pagecheck reads from.
//
// The package wraps github.com/adrg/xdg for XDG Base Directory compliance.
// On Linux the layout is:
//
//	~/.config/pagecheck/config.yaml   configuration
//	~/.config/pagecheck/presets/      preset files (*.yaml, *.yml, *.toml)
//
// PAGECHECK_CONFIG_DIR replaces ~/.config/pagecheck, which tests use to
// isolate themselves from the real user configuration.
package paths
