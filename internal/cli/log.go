// Package cli implements the cookgraph command-line interface.
//
// The CLI loads scenario files (TOML descriptions of a node network plus a
// script of edits), builds them into a session, and drives that session in
// one of several ways. It is built using cobra and logs via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - run: Play a scenario's steps in batch and check their expectations
//   - dot: Render a scenario's network as DOT, SVG, PNG or PDF
//   - tui: Step through a scenario interactively with undo and redo
//   - serve: Expose a scenario's session over the HTTP control API
//   - kinds: List the node kinds scenarios may use
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging; otherwise
// the level comes from the --config file. Loggers are passed through
// context.Context to the command bodies.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger with centisecond timestamps, the format every
// cookgraph command logs in.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one phase of a command, such as building or playing a
// scenario.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with keyvals and the elapsed time.
func (p *progress) done(msg string, keyvals ...any) {
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.logger.Info(msg, append(keyvals, "elapsed", elapsed)...)
}

type ctxKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the command's logger, or log.Default() when
// the root command's pre-run did not attach one.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
