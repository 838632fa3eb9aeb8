// log/log.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	*slog.Logger
	LogFile string
	LogDir  string
	Start   time.Time
}

// New returns a Logger writing JSON records to a size-rotated log file
// in dir; if dir is empty, the user config directory is used.
func New(level string, dir string) *Logger {
	if dir == "" {
		var err error
		dir, err = os.UserConfigDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to find user config dir: %v", err)
			dir = "."
		}
		dir = filepath.Join(dir, "gismap")
	}

	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "gismap.slog"),
		MaxSize:    32, // MB
		MaxBackups: 1,
	}
	if level == "debug" {
		w.MaxSize = 256
	}

	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		fmt.Fprintf(os.Stderr, "%s: invalid log level", level)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	l := &Logger{
		Logger:  slog.New(h),
		LogFile: w.Filename,
		LogDir:  dir,
		Start:   time.Now(),
	}

	// Start out the logs with some basic information about the system
	// we're running on.
	l.Info("Hello logging", slog.Time("start", time.Now()))
	l.Info("System information",
		slog.String("GOARCH", runtime.GOARCH),
		slog.String("GOOS", runtime.GOOS),
		slog.Int("NumCPUs", runtime.NumCPU()))

	return l
}

// Discard returns a Logger that throws away everything logged to it;
// it is handy for tests.
func Discard() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Start:  time.Now(),
	}
}

func (l *Logger) Debugf(f string, args ...interface{}) {
	l.Debug(fmt.Sprintf(f, args...))
}

func (l *Logger) Infof(f string, args ...interface{}) {
	l.Info(fmt.Sprintf(f, args...))
}

func (l *Logger) Warnf(f string, args ...interface{}) {
	l.Warn(fmt.Sprintf(f, args...))
}

func (l *Logger) Errorf(f string, args ...interface{}) {
	l.Error(fmt.Sprintf(f, args...))
}

// AnyPointerSlice wraps a slice of pointers as a slog attribute, logging
// the pointed-to values so LogValuer implementations are honored.
func AnyPointerSlice[T any](key string, values []*T) slog.Attr {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return slog.Any(key, vals)
}
