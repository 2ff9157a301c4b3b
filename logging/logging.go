// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package logging installs the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for the log file.
const (
	maxSizeMB  = 50
	maxAgeDays = 28
	maxBackups = 5
)

// Init sets the default slog logger to a JSON handler on stdout. When file
// is set, output is also written to a rotating log file. The returned
// closer flushes and closes that file; it is a no-op otherwise.
func Init(level, file string) io.Closer {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var (
		w      io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)
	if file != "" {
		target := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    maxSizeMB,
			MaxAge:     maxAgeDays,
			MaxBackups: maxBackups,
			Compress:   true,
		}
		w = io.MultiWriter(os.Stdout, target)
		closer = target
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(w, opts)))
	return closer
}

// ParseLevel maps a level name to a slog.Level. Unknown names are info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
