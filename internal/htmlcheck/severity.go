package htmlcheck

import (
	"github.com/thoreinstein/pagecheck/internal/errors"
)

// Severity ranks a failure. Values are totally ordered so the zero value,
// SeveritySuccess, is the lowest.
type Severity int

const (
	// SeveritySuccess marks a passed check. No failure is recorded at this level
	// by the engine itself.
	SeveritySuccess Severity = iota

	// SeverityInfo marks informational output, not a problem.
	SeverityInfo

	// SeverityWarning marks a problem that does not block traffic.
	SeverityWarning

	// SeverityDanger marks a blocking problem.
	SeverityDanger
)

// numSeverities is the number of defined severity levels.
const numSeverities = 4

// ErrUnknownSeverity is returned when parsing an unrecognized severity name.
var ErrUnknownSeverity = errors.New("unknown severity")

// Severities returns all levels in ascending order.
func Severities() []Severity {
	return []Severity{SeveritySuccess, SeverityInfo, SeverityWarning, SeverityDanger}
}

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityDanger:
		return "danger"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the defined levels.
func (s Severity) Valid() bool {
	return s >= SeveritySuccess && s <= SeverityDanger
}

// AtLeast reports whether s is as severe as other or more.
func (s Severity) AtLeast(other Severity) bool {
	return s >= other
}

// MarshalText encodes the severity as its name.
func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, errors.Wrapf(ErrUnknownSeverity, "%d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity returns the severity with the given name. "error" is accepted
// as an alias of "danger".
func ParseSeverity(name string) (Severity, error) {
	switch name {
	case "success":
		return SeveritySuccess, nil
	case "info":
		return SeverityInfo, nil
	case "warning":
		return SeverityWarning, nil
	case "danger", "error":
		return SeverityDanger, nil
	default:
		return SeveritySuccess, errors.Wrapf(ErrUnknownSeverity, "%q", name)
	}
}

// MaxSeverity returns the highest of the given levels, or SeveritySuccess
// when called with none.
func MaxSeverity(levels ...Severity) Severity {
	highest := SeveritySuccess
	for _, l := range levels {
		if l > highest {
			highest = l
		}
	}
	return highest
}
