package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// levelRouter sends records at or above errLevel to one handler and all
// other records to another, so errors land on stderr.
type levelRouter struct {
	out      slog.Handler
	errOut   slog.Handler
	errLevel slog.Level
}

func (lr *levelRouter) pick(level slog.Level) slog.Handler {
	if level >= lr.errLevel {
		return lr.errOut
	}
	return lr.out
}

func (lr *levelRouter) Enabled(ctx context.Context, level slog.Level) bool {
	return lr.pick(level).Enabled(ctx, level)
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	return lr.pick(r.Level).Handle(ctx, r)
}

// derive applies fn to both handlers.
func (lr *levelRouter) derive(fn func(slog.Handler) slog.Handler) *levelRouter {
	return &levelRouter{out: fn(lr.out), errOut: fn(lr.errOut), errLevel: lr.errLevel}
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return lr.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return lr.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

// newLevelRouter builds a text-format router at INFO over the given writers.
func newLevelRouter(out, errOut io.Writer) *levelRouter {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	return &levelRouter{
		out:      slog.NewTextHandler(out, opts),
		errOut:   slog.NewTextHandler(errOut, opts),
		errLevel: slog.LevelError,
	}
}

// setupLogger installs the default logger. With a log path every record is
// also appended to that file. The returned close func is never nil.
func setupLogger(logPath string) (func(), error) {
	if logPath == "" {
		slog.SetDefault(slog.New(newLevelRouter(os.Stdout, os.Stderr)))
		return func() {}, nil
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", logPath, err)
	}
	router := newLevelRouter(io.MultiWriter(os.Stdout, f), io.MultiWriter(os.Stderr, f))
	slog.SetDefault(slog.New(router))
	return func() { f.Close() }, nil
}
