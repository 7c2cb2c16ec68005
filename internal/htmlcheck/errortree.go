package htmlcheck

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/thoreinstein/pagecheck/internal/errors"
)

// NonFieldErrors is the ErrorTree key holding failures about the tag itself.
const NonFieldErrors = "non_field_errors"

// ErrUnexpectedShape is returned by CountLevels for a value that is neither
// a failure nor a collection of them.
var ErrUnexpectedShape = errors.New("unexpected error collection shape")

// ErrorTree maps a field name to []Failure for an attribute, ErrorTree for a
// nested tag or []ErrorTree for a repeated tag. NonFieldErrors holds the
// tag's own failures.
type ErrorTree map[string]any

// Plain converts the tree to maps, slices and strings only, for callers on
// the other side of a serialization boundary.
func (t ErrorTree) Plain() map[string]any {
	out := make(map[string]any, len(t))
	for k, v := range t {
		out[k] = plain(v)
	}
	return out
}

func plain(v any) any {
	switch v := v.(type) {
	case ErrorTree:
		return v.Plain()
	case []ErrorTree:
		out := make([]any, len(v))
		for i, t := range v {
			out[i] = t.Plain()
		}
		return out
	case []Failure:
		out := make([]any, len(v))
		for i, f := range v {
			out[i] = map[string]any{
				"message": f.Message,
				"level":   f.Severity.String(),
				"code":    f.Code,
				"path":    f.Path,
			}
		}
		return out
	default:
		return v
	}
}

// Histogram counts failures per severity.
type Histogram [numSeverities]int

// Count returns the number of failures at s.
func (h Histogram) Count(s Severity) int {
	if !s.Valid() {
		return 0
	}
	return h[s]
}

// Total returns the number of failures at any level.
func (h Histogram) Total() int {
	total := 0
	for _, n := range h {
		total += n
	}
	return total
}

// Worst returns the highest severity with at least one failure, or
// SeveritySuccess.
func (h Histogram) Worst() Severity {
	for s := SeverityDanger; s > SeveritySuccess; s-- {
		if h[s] > 0 {
			return s
		}
	}
	return SeveritySuccess
}

// Add returns the sum of two histograms.
func (h Histogram) Add(other Histogram) Histogram {
	for i := range h {
		h[i] += other[i]
	}
	return h
}

// MarshalJSON encodes the histogram as an object ordered from success to
// danger.
func (h Histogram) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range Severities() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(s.String()))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(h[s]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keyed by severity name.
func (h *Histogram) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "decoding histogram")
	}
	var out Histogram
	for name, n := range raw {
		s, err := ParseSeverity(name)
		if err != nil {
			return err
		}
		out[s] = n
	}
	*h = out
	return nil
}

// CountLevels walks an error collection of any depth and counts failures
// per level. Mappings and lists are walked uniformly; any other value yields
// an error wrapping ErrUnexpectedShape.
func CountLevels(v any) (Histogram, error) {
	var h Histogram
	if err := countInto(&h, v); err != nil {
		return Histogram{}, err
	}
	return h, nil
}

func countInto(h *Histogram, v any) error {
	switch v := v.(type) {
	case Failure:
		return h.add(v)
	case *Failure:
		if v == nil {
			return errors.Wrap(ErrUnexpectedShape, "nil failure")
		}
		return h.add(*v)
	case []Failure:
		for _, f := range v {
			if err := h.add(f); err != nil {
				return err
			}
		}
	case ErrorTree:
		for _, item := range v {
			if err := countInto(h, item); err != nil {
				return err
			}
		}
	case map[string]any:
		if level, ok := v["level"].(string); ok {
			return h.addPlain(level)
		}
		for _, item := range v {
			if err := countInto(h, item); err != nil {
				return err
			}
		}
	case []ErrorTree:
		for _, item := range v {
			if err := countInto(h, item); err != nil {
				return err
			}
		}
	case []any:
		for _, item := range v {
			if err := countInto(h, item); err != nil {
				return err
			}
		}
	default:
		return errors.Wrapf(ErrUnexpectedShape, "%T", v)
	}
	return nil
}

func (h *Histogram) add(f Failure) error {
	if !f.Severity.Valid() {
		return errors.Wrapf(ErrUnexpectedShape, "failure with severity %d", int(f.Severity))
	}
	h[f.Severity]++
	return nil
}

// addPlain counts a failure already converted by [ErrorTree.Plain].
func (h *Histogram) addPlain(level string) error {
	s, err := ParseSeverity(level)
	if err != nil {
		return errors.Wrapf(ErrUnexpectedShape, "failure with level %q", level)
	}
	h[s]++
	return nil
}

// String renders the histogram as "success=0 info=1 warning=0 danger=2".
func (h Histogram) String() string {
	var buf bytes.Buffer
	for i, s := range Severities() {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "%s=%d", s, h[s])
	}
	return buf.String()
}
