// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logger provides structured logging for supportq.
//
// Wraps charmbracelet/log behind a small keyval interface so packages can
// log without depending on a concrete logging library.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

// Level is a logging level name: "debug", "info", "warn", "error".
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Logger is the structured logging interface used throughout supportq.
// Keyvals are alternating key/value pairs, e.g. "category", "Billing".
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
	With(keyvals ...any) Logger
}

// Options configures logger construction.
type Options struct {
	// Level is the minimum level to emit (default: info).
	Level Level
	// JSON emits JSON-formatted records instead of logfmt text.
	JSON bool
	// Output is the destination writer (default: os.Stderr).
	Output io.Writer
	// Prefix is an optional component prefix shown on every record.
	Prefix string
}

type charmLogger struct {
	l *charmlog.Logger
}

func (c *charmLogger) Debug(msg string, keyvals ...any) { c.l.Debug(msg, keyvals...) }
func (c *charmLogger) Info(msg string, keyvals ...any)  { c.l.Info(msg, keyvals...) }
func (c *charmLogger) Warn(msg string, keyvals ...any)  { c.l.Warn(msg, keyvals...) }
func (c *charmLogger) Error(msg string, keyvals ...any) { c.l.Error(msg, keyvals...) }

func (c *charmLogger) With(keyvals ...any) Logger {
	return &charmLogger{l: c.l.With(keyvals...)}
}

// parseLevel maps a level name to a charmlog level, defaulting to info.
func parseLevel(level Level) charmlog.Level {
	switch Level(strings.ToLower(string(level))) {
	case DebugLevel:
		return charmlog.DebugLevel
	case WarnLevel:
		return charmlog.WarnLevel
	case ErrorLevel:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// New creates a Logger with the given options.
func New(opts Options) Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	l := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           parseLevel(opts.Level),
		Prefix:          opts.Prefix,
	})
	if opts.JSON {
		l.SetFormatter(charmlog.JSONFormatter)
	}
	return &charmLogger{l: l}
}

// =============================================================================
// DEFAULT LOGGER
// =============================================================================

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = New(Options{})
)

// SetDefault replaces the process-wide default logger.
// Called once at startup after configuration is loaded.
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Default returns the process-wide default logger.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Debug logs at debug level on the default logger.
func Debug(msg string, keyvals ...any) { Default().Debug(msg, keyvals...) }

// Info logs at info level on the default logger.
func Info(msg string, keyvals ...any) { Default().Info(msg, keyvals...) }

// Warn logs at warn level on the default logger.
func Warn(msg string, keyvals ...any) { Default().Warn(msg, keyvals...) }

// Error logs at error level on the default logger.
func Error(msg string, keyvals ...any) { Default().Error(msg, keyvals...) }
