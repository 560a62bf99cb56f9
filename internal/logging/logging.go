// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package logging wraps charmbracelet/log with the WithError/WithFields
// chaining convention used throughout this codebase's call sites.
package logging

import (
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Config controls how a Logger is built.
type Config struct {
	Level  string
	Output io.Writer
}

// DefaultConfig returns a Config that logs at info level to stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Output: os.Stderr}
}

// Logger is a structured logger with error/field chaining helpers.
type Logger struct {
	inner *charmlog.Logger
}

// New builds a Logger per cfg.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	inner := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: true,
	})
	if lvl, err := charmlog.ParseLevel(cfg.Level); err == nil {
		inner.SetLevel(lvl)
	}
	return &Logger{inner: inner}
}

// WithError returns a Logger that will attach err to every subsequent
// log call made through it.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return &Logger{inner: l.inner.With("error", err.Error())}
}

// WithFields returns a Logger that will attach the given key/value pairs
// to every subsequent log call made through it.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	kv := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return &Logger{inner: l.inner.With(kv...)}
}

func (l *Logger) Debug(msg string, kv ...any) { l.inner.Debug(msg, kv...) }
func (l *Logger) Info(msg string, kv ...any)  { l.inner.Info(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.inner.Warn(msg, kv...) }
func (l *Logger) Error(msg string, kv ...any) { l.inner.Error(msg, kv...) }

// Critical logs the final message before the process exits on a fatal
// error. It deliberately does not call the underlying library's Fatal
// method, which would os.Exit on its own -- the caller in cmd/scoreward
// decides the actual exit code.
func (l *Logger) Critical(msg string, kv ...any) {
	l.inner.With("severity", "critical").Error(msg, kv...)
}
