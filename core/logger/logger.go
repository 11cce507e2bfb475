package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the output encoding.
type Format string

const (
	FormatLine Format = "line"
	FormatJSON Format = "json"
)

// Option configures a logger created by New.
type Option func(*options)

type options struct {
	level  slog.Leveler
	output io.Writer
	format Format
	attrs  []slog.Attr
}

// WithLevel sets the minimum level. Defaults to debug.
func WithLevel(level slog.Leveler) Option {
	return func(o *options) {
		if level != nil {
			o.level = level
		}
	}
}

// WithOutput sets the destination writer. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithFormat selects the output format. Unknown formats fall back to FormatLine.
func WithFormat(format Format) Option {
	return func(o *options) {
		switch Format(strings.ToLower(string(format))) {
		case FormatJSON:
			o.format = FormatJSON
		default:
			o.format = FormatLine
		}
	}
}

// WithJSONFormatter is shorthand for WithFormat(FormatJSON).
func WithJSONFormatter() Option {
	return WithFormat(FormatJSON)
}

// WithAttr adds attributes to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(o *options) {
		o.attrs = append(o.attrs, attrs...)
	}
}

// New creates a logger. It is meant to be built once per process and passed
// down explicitly.
func New(opts ...Option) *slog.Logger {
	o := &options{
		level:  slog.LevelDebug,
		output: os.Stdout,
		format: FormatLine,
	}
	for _, opt := range opts {
		opt(o)
	}

	var handler slog.Handler
	switch o.format {
	case FormatJSON:
		handler = slog.NewJSONHandler(o.output, &slog.HandlerOptions{
			AddSource: true,
			Level:     o.level,
		})
	default:
		handler = NewLineHandler(o.output, o.level)
	}

	if len(o.attrs) > 0 {
		handler = handler.WithAttrs(o.attrs)
	}

	return slog.New(handler)
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a level name to a slog level. Empty input means debug.
// Unrecognized names fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR", "CRITICAL":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
