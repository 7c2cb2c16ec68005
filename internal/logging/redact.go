package logging

import (
	"fmt"
	"net/url"
	"strings"
)

// SecretKeyPatterns contains substrings that indicate a key or query
// parameter likely holds sensitive data. Keys are matched case-insensitively.
var SecretKeyPatterns = []string{
	"TOKEN",
	"KEY",
	"SECRET",
	"PASSWORD",
	"AUTH",
	"CREDENTIAL",
	"SESSION",
}

// TokenPrefixes contains known token prefixes that mark a value as sensitive
// regardless of key name.
var TokenPrefixes = []string{
	"ghp_",
	"gho_",
	"sk-",
	"AKIA",
	"xoxb-",
	"xoxp-",
}

// MaskValue masks a potentially sensitive string value.
// Values of 4 or fewer runes are fully masked as "********".
// Longer values show their last 4 runes: "****xxxx".
func MaskValue(value string) string {
	runes := []rune(value)
	if len(runes) <= 4 {
		return "********"
	}
	return "****" + string(runes[len(runes)-4:])
}

// ShouldMask returns true if the key name suggests it contains sensitive data.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	for _, pattern := range SecretKeyPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}

// ContainsTokenPrefix returns true if the value starts with a known token prefix.
func ContainsTokenPrefix(value string) bool {
	for _, prefix := range TokenPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

// MaskURL redacts the password of embedded credentials and the values of
// sensitive query parameters. Landing page URLs routinely carry affiliate
// and session tokens in the query string. Unparseable input is returned
// unchanged.
func MaskURL(rawURL string) string {
	if rawURL == "" || !strings.Contains(rawURL, "://") {
		return rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	changed := false
	if parsed.User != nil {
		if password, ok := parsed.User.Password(); ok && password != "" {
			parsed.User = url.UserPassword(parsed.User.Username(), MaskValue(password))
			changed = true
		}
	}

	if parsed.RawQuery != "" {
		if masked, ok := maskQuery(parsed.RawQuery); ok {
			parsed.RawQuery = masked
			changed = true
		}
	}

	if !changed {
		return rawURL
	}
	return parsed.String()
}

// maskQuery masks sensitive parameters in place, keeping order and the
// encoding of everything else.
func maskQuery(raw string) (string, bool) {
	parts := strings.Split(raw, "&")
	changed := false
	for i, part := range parts {
		key, value, found := strings.Cut(part, "=")
		if !found || value == "" {
			continue
		}
		name, err := url.QueryUnescape(key)
		if err != nil || !ShouldMask(name) {
			continue
		}
		if plain, err := url.QueryUnescape(value); err == nil {
			value = plain
		}
		parts[i] = key + "=" + MaskValue(value)
		changed = true
	}
	return strings.Join(parts, "&"), changed
}

// redact returns the display form of an attribute value and whether it
// differs from the input.
func redact(key string, value any) (any, bool) {
	if ShouldMask(key) {
		return MaskValue(fmt.Sprint(value)), true
	}
	s, ok := value.(string)
	if !ok {
		return value, false
	}
	if ContainsTokenPrefix(s) {
		return MaskValue(s), true
	}
	if masked := MaskURL(s); masked != s {
		return masked, true
	}
	return s, false
}
