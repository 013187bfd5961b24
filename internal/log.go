package internal

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
)

// Prefix creates a consistent prefix for all file-based commands to use.
//
// i and n are the one-based ordinal and expected count.
func Prefix(i, n int, name flags.Filename) string {
	return fmt.Sprintf(`[%d/%d] "%s" - `, i, n, TruncateRightWithSuffix(filepath.Base(string(name)), 30, "..."))
}

type loggerKey struct{}

// WithPrefixLogger creates a new logger using the given prefix, then attaches the logger to context.
//
// The logger writes to os.Stderr.
func WithPrefixLogger(ctx context.Context, prefix string) context.Context {
	return WithLogger(ctx, log.New(os.Stderr, prefix, 0))
}

// WithLogger attaches the given logger to context.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// MustLogger returns the logger attached to the given context.
func MustLogger(ctx context.Context) *log.Logger {
	return ctx.Value(loggerKey{}).(*log.Logger)
}

// Logger returns the logger attached to the given context, or one that discards everything.
func Logger(ctx context.Context) *log.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return logger
	}

	return log.New(io.Discard, "", 0)
}
