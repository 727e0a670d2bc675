// Package cli implements the gridlayout command-line interface.
//
// The commands edit layouts kept in the configured store, render them for
// any breakpoint, and serve them over HTTP. Every editing command is one
// load-edit-save cycle: the layout is read, changed in memory through a
// [grid.Editor], and written back as a single document.
//
// # Commands
//
// The main commands are:
//   - new, show, list, rm: manage layouts
//   - add, move, resize, nudge, duplicate, delete, z: edit items
//   - override, resolve: per-breakpoint geometry and collision resolution
//   - edit: interactive terminal editor
//   - render: write SVG, JSON, text, PNG or PDF output
//   - serve: expose the store over HTTP
//   - cache, config: housekeeping
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. At debug
// level editor, store, cache and HTTP events are logged through the
// observability hooks. Loggers are passed through context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered home (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() when
// none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
