package config

import (
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/pagecheck/internal/errors"
)

// parseValue converts a command-line value to the type stored for key.
func parseValue(key, value string) (any, error) {
	switch key {
	case "version", "concurrency", "fetch.max_bytes":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "%s must be an integer, got %q", key, value)
		}
		return n, nil
	case "fetch.timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "%s must be a duration such as 15s, got %q", key, value)
		}
		return value, nil
	default:
		return value, nil
	}
}

// setNested assigns value under a dotted key path, creating maps as needed.
func setNested(m map[string]any, keys []string, value any) {
	for _, k := range keys[:len(keys)-1] {
		child, ok := m[k].(map[string]any)
		if !ok {
			child = map[string]any{}
			m[k] = child
		}
		m = child
	}
	m[keys[len(keys)-1]] = value
}

func unmarshalYAML(data []byte, out *map[string]any) error {
	if err := yaml.Unmarshal(data, out); err != nil {
		return err
	}
	if *out == nil {
		*out = map[string]any{}
	}
	return nil
}

func dirOf(path string) string {
	return filepath.Dir(path)
}
