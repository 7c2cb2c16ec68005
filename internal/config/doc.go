// Package config provides configuration management for the pagecheck CLI.
//
// # Configuration File
//
// The default configuration file location is ~/.config/pagecheck/config.yaml
// (see package paths). A file in the working directory takes precedence.
//
//	version: 1
//	default_preset: atlas
//	presets_dir: ~/.config/pagecheck/presets
//	fetch:
//	  timeout: 15s
//	  user_agent: pagecheck/1 (+landing page audit)
//	  max_bytes: 5242880
//	concurrency: 4
//	fail_on: danger
//
// Every key can be overridden from the environment with the PAGECHECK_
// prefix, dots replaced by underscores: PAGECHECK_FETCH_TIMEOUT=30s.
//
// # Loading Configuration
//
// Call [Init] once, then [Load]:
//
//	config.Init()
//	cfg, err := config.Load("")
//	if errors.Is(err, errors.ErrInvalidConfig) {
//	    // every problem is listed in err
//	}
//
// An explicit path that does not exist is an error matching
// errors.ErrNotFound; a missing default file is not.
//
// # Validation
//
// [Validate] returns every problem rather than the first:
//
//	for _, e := range config.Validate(cfg) {
//	    fmt.Println(e)
//	}
package config
