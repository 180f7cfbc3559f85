package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

var logLevel = new(slog.LevelVar)

var logger atomic.Pointer[slog.Logger]

func init() {
	logLevel.Set(slog.LevelWarn)
	SetLogOutput(os.Stderr)
}

// SetLogOutput redirects warnings and debug traces, eg. into a buffer in tests.
func SetLogOutput(w io.Writer) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// keep stderr output stable between runs
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	})
	logger.Store(slog.New(handler))
}

// SetVerbose enables debug traces.
func SetVerbose(verbose bool) {
	if verbose {
		logLevel.Set(slog.LevelDebug)
		return
	}
	logLevel.Set(slog.LevelWarn)
}

func logWarning(format string, args ...any) {
	logger.Load().Warn(fmt.Sprintf(format, args...))
}

func logDebug(format string, args ...any) {
	l := logger.Load()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.Debug(fmt.Sprintf(format, args...))
}
