// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package log is a small leveled logger. The dex package builds a
// Helper from Options.Logger; tolerated irregularities found during a
// parse are recorded in File.Anomalies rather than logged.
package log

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Level is a logging severity.
type Level int

// Severities, lowest to highest.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal logging interface the dex package depends on.
// Consumers may plug in any structured logger by implementing Log.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

// NewStdLogger returns a Logger that writes one line per call to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{w: w}
}

type stdLogger struct {
	w io.Writer
}

func (l *stdLogger) Log(level Level, keyvals ...interface{}) error {
	ts := time.Now().Format(time.RFC3339)
	_, err := fmt.Fprintf(l.w, "%s %s %s\n", ts, level, fmt.Sprint(keyvals...))
	return err
}

// NewFilter wraps a Logger so only records at or above the given level
// are forwarded.
func NewFilter(logger Logger, level Level) Logger {
	return &filter{next: logger, level: level}
}

type filter struct {
	next  Logger
	level Level
}

func (f *filter) Log(level Level, keyvals ...interface{}) error {
	if level < f.level {
		return nil
	}
	return f.next.Log(level, keyvals...)
}

// Helper adds printf-style convenience methods on top of a Logger.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger in a Helper.
func NewHelper(logger Logger) *Helper {
	if logger == nil {
		logger = NewStdLogger(os.Stderr)
	}
	return &Helper{logger: logger}
}

// Debugf logs at debug level.
func (h *Helper) Debugf(format string, args ...interface{}) {
	_ = h.logger.Log(LevelDebug, fmt.Sprintf(format, args...))
}

// Warnf logs at warn level.
func (h *Helper) Warnf(format string, args ...interface{}) {
	_ = h.logger.Log(LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf logs at error level.
func (h *Helper) Errorf(format string, args ...interface{}) {
	_ = h.logger.Log(LevelError, fmt.Sprintf(format, args...))
}
