// Package cli implements the flowboard command-line interface.
//
// The CLI lays out, routes and exports flow boards, edits edge anchors in a
// terminal editor, and serves boards over HTTP. Commands are built on cobra;
// user-facing results go to stdout and diagnostics go to stderr through
// charmbracelet/log.
//
// # Commands
//
//   - layout: compute node positions and write them as JSON
//   - render: export a board as SVG, PNG, PDF, DOT or scene JSON
//   - anchors: drag edge endpoints between anchor points in the terminal
//   - freeze, reset: pin every edge's sides, or clear the saved board state
//   - serve: run the HTTP and websocket API
//   - cache: manage the layout and artifact cache
//
// # Logging
//
// --verbose (-v) switches to debug level, which also stamps each line with
// the time. The logger travels in the command context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger builds the stderr logger. Timestamps are only shown at debug
// level, where timing matters.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		TimeFormat: "15:04:05.000",
		Level:      level,
	})
	applyLevel(l, level)
	return l
}

func applyLevel(l *log.Logger, level log.Level) {
	l.SetLevel(level)
	l.SetReportTimestamp(level <= log.DebugLevel)
}

// logElapsed logs msg at info level with the time since start as "took".
func logElapsed(l *log.Logger, start time.Time, msg string, keyvals ...any) {
	keyvals = append(keyvals, "took", time.Since(start).Round(time.Millisecond))
	l.Info(msg, keyvals...)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the command logger, or log.Default() outside a
// command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
