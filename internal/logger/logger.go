// Package logger builds the slog logger used for diagnostics. All log
// output goes to stderr by default so it never mixes with streamed review
// text or council JSON on stdout.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// New initializes a slog logger at the given level. Format is "text" or
// "json"; output defaults to stderr when nil.
func New(level slog.Level, format string, output io.Writer) *slog.Logger {
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
