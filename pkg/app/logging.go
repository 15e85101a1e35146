// Package app assembles modesync from its internal packages: logging,
// configuration, the sync service and the long-running daemon.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/flemzord/modesync/internal/redact"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// LogOptions configures NewLogger.
type LogOptions struct {
	// Level is debug, info, warn or error. Defaults to info.
	Level string

	// Format is text (default) or json.
	Format string

	// Out defaults to os.Stderr.
	Out io.Writer
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("app: invalid log level %q (valid: debug, info, warn, error)", s)
	}
	return level, nil
}

// NewLogger builds the process logger. Every record goes through r so
// that tokens and webhook secrets never reach the output.
func NewLogger(opts LogOptions, r *redact.Redactor) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	hopts := &slog.HandlerOptions{Level: level}
	var inner slog.Handler
	switch opts.Format {
	case "", LogFormatText:
		inner = slog.NewTextHandler(out, hopts)
	case LogFormatJSON:
		inner = slog.NewJSONHandler(out, hopts)
	default:
		return nil, fmt.Errorf("app: invalid log format %q (valid: text, json)", opts.Format)
	}

	if r == nil {
		return slog.New(inner), nil
	}
	return slog.New(redact.NewHandler(inner, r)), nil
}
