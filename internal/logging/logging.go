// ABOUTME: Structured logger construction for the CLI and MCP server
// ABOUTME: Wraps slog with a tint handler; errors are highlighted in red
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lmittmann/tint"
)

const timeFormat = "2006-01-02 15:04:05.000Z07:00"

// Options controls logger output
type Options struct {
	Level   slog.Level
	NoColor bool
}

// New creates a tint-backed logger writing to w
func New(w io.Writer, opts Options) *slog.Logger {
	handler := tint.NewHandler(w, &tint.Options{
		Level:      opts.Level,
		TimeFormat: timeFormat,
		NoColor:    opts.NoColor,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Value.Kind() == slog.KindAny {
				if _, ok := a.Value.Any().(error); ok {
					return tint.Attr(9, a)
				}
			}
			return a
		},
	})
	return slog.New(handler)
}

// ParseLevel maps debug, info, warn and error to slog levels
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// ResolveLevel applies the --verbose and --quiet overrides to a configured level
func ResolveLevel(configured slog.Level, verbose, quiet bool) slog.Level {
	switch {
	case verbose:
		return slog.LevelDebug
	case quiet:
		return slog.LevelError
	}
	return configured
}
