package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// SourceKey is the attribute the checker sets on per-page loggers. The text
// handler prints it as a "[source]" prefix so interleaved batch logs stay
// readable.
const SourceKey = "source"

// palette holds the colors of a handler writing to a terminal.
type palette struct {
	time, key, source *color.Color
	levels            map[slog.Level]*color.Color
}

func newPalette() *palette {
	return &palette{
		time:   color.New(color.FgHiBlack),
		key:    color.New(color.FgCyan),
		source: color.New(color.Bold),
		levels: map[slog.Level]*color.Color{
			LevelTrace:      color.New(color.FgHiBlack),
			slog.LevelDebug: color.New(color.FgMagenta),
			slog.LevelInfo:  color.New(color.FgGreen),
			slog.LevelWarn:  color.New(color.FgYellow),
			slog.LevelError: color.New(color.FgRed, color.Bold),
		},
	}
}

// Handler is a slog.Handler writing one human readable line per record:
//
//	15:04:05 DEBUG [page.html] checked page histogram="success 0 ..."
//
// Colors are used only when the writer is a terminal.
type Handler struct {
	opts   slog.HandlerOptions
	out    io.Writer
	mu     *sync.Mutex
	colors *palette

	source string // from WithAttrs
	attrs  []slog.Attr
	prefix string // joined groups, with a trailing dot
}

// NewHandler creates a text handler writing to out.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	h := &Handler{opts: *opts, out: out, mu: &sync.Mutex{}}
	if SupportsColor(out) {
		h.colors = newPalette()
	}
	return h
}

// Enabled reports whether level reaches the handler's minimum level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats r and writes it as a single line.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		buf.WriteString(h.paint(h.timeColor(), r.Time.Format(time.TimeOnly)))
		buf.WriteByte(' ')
	}
	fmt.Fprintf(&buf, "%-5s ", h.paint(h.levelColor(r.Level), LevelName(r.Level)))

	source := h.source
	var attrs []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == SourceKey && h.prefix == "" {
			source = RedactAttr(nil, a).Value.String()
			return true
		}
		attrs = append(attrs, a)
		return true
	})
	if source != "" {
		buf.WriteString(h.paint(h.sourceColor(), "["+source+"]"))
		buf.WriteByte(' ')
	}
	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		h.appendAttr(&buf, "", a)
	}
	for _, a := range attrs {
		h.appendAttr(&buf, h.prefix, a)
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

func (h *Handler) appendAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		group := prefix
		if a.Key != "" {
			group += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			h.appendAttr(buf, group, ga)
		}
		return
	}

	key := prefix + a.Key
	a = RedactAttr(nil, a)
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}
	value := a.Value.String()
	if strings.ContainsAny(value, " \t\"=") {
		value = fmt.Sprintf("%q", value)
	}
	fmt.Fprintf(buf, " %s=%s", h.paint(h.keyColor(), key), value)
}

// WithAttrs returns a handler that adds attrs to every record. A source
// attribute becomes the line prefix.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		if a.Key == SourceKey && h.prefix == "" {
			next.source = RedactAttr(nil, a).Value.String()
			continue
		}
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

// WithGroup returns a handler that qualifies later keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// LevelName returns the label for level, naming LevelTrace "TRACE".
func LevelName(level slog.Level) string {
	if level <= LevelTrace {
		return "TRACE"
	}
	return level.String()
}

func (h *Handler) paint(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

func (h *Handler) timeColor() *color.Color {
	if h.colors == nil {
		return nil
	}
	return h.colors.time
}

func (h *Handler) keyColor() *color.Color {
	if h.colors == nil {
		return nil
	}
	return h.colors.key
}

func (h *Handler) sourceColor() *color.Color {
	if h.colors == nil {
		return nil
	}
	return h.colors.source
}

func (h *Handler) levelColor(level slog.Level) *color.Color {
	if h.colors == nil {
		return nil
	}
	switch {
	case level >= slog.LevelError:
		return h.colors.levels[slog.LevelError]
	case level >= slog.LevelWarn:
		return h.colors.levels[slog.LevelWarn]
	case level >= slog.LevelInfo:
		return h.colors.levels[slog.LevelInfo]
	case level >= slog.LevelDebug:
		return h.colors.levels[slog.LevelDebug]
	default:
		return h.colors.levels[LevelTrace]
	}
}
