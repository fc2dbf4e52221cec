// Copyright 2026 Katharos Technology. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger provides the process-wide structured logger every PolyFS
// component writes through: a slog.Logger wrapping either stderr or a
// rotating, asynchronously-flushed file, with a severity scheme
// (TRACE/DEBUG/INFO/WARNING/ERROR/OFF) finer than slog's own four levels.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/katharostech/polyfs/cfg"
)

// Custom levels slotted around slog's built-in Debug/Info/Warn/Error, wide
// enough apart to leave room between them.
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelOff   = slog.Level(12)
)

// textTimeFormat is the timestamp layout used by the text handler. The
// embedded space forces slog's text output to quote the value.
const textTimeFormat = "02/01/2006 03:04:05.000000"

var severityNames = map[slog.Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARNING",
	LevelError: "ERROR",
}

type loggerFactory struct {
	format string
	file   *os.File

	// sysWriter is the destination when no log file is configured (nil
	// once a file is in use; see InitLogFile).
	sysWriter io.Writer

	level           cfg.LogSeverity
	logRotateConfig cfg.LoggingConfig
}

var defaultLoggerFactory = &loggerFactory{
	format:    "text",
	sysWriter: os.Stderr,
	level:     cfg.InfoLogSeverity,
}

var defaultLogger = func() *slog.Logger {
	programLevel := new(slog.LevelVar)
	setLoggingLevel(string(defaultLoggerFactory.level), programLevel)
	return slog.New(defaultLoggerFactory.createJsonOrTextHandler(os.Stderr, programLevel, ""))
}()

// createJsonOrTextHandler builds a slog.Handler writing to w in either
// "json" or "text" format, renaming slog's level/msg keys to the
// severity/message vocabulary PolyFS logs use, and prefixing every message
// with prefix.
func (f *loggerFactory) createJsonOrTextHandler(w io.Writer, programLevel *slog.LevelVar, prefix string) slog.Handler {
	replace := func(groups []string, a slog.Attr) slog.Attr {
		switch a.Key {
		case slog.LevelKey:
			level, _ := a.Value.Any().(slog.Level)
			name, ok := severityNames[level]
			if !ok {
				name = level.String()
			}
			a.Key = "severity"
			a.Value = slog.StringValue(name)
		case slog.MessageKey:
			a.Key = "message"
			a.Value = slog.StringValue(prefix + a.Value.String())
		case slog.TimeKey:
			t := a.Value.Time()
			if f.format == "json" {
				a.Key = "timestamp"
				a.Value = slog.GroupValue(
					slog.Int64("seconds", t.Unix()),
					slog.Int64("nanos", int64(t.Nanosecond())),
				)
			} else {
				a.Value = slog.StringValue(t.Format(textTimeFormat))
			}
		}
		return a
	}

	opts := &slog.HandlerOptions{Level: programLevel, ReplaceAttr: replace}
	if f.format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// setLoggingLevel maps a cfg.LogSeverity string to the slog.LevelVar
// programLevel points at, so that handler filtering implements PolyFS's
// six-level severity scheme on top of slog's coarser one.
func setLoggingLevel(level string, programLevel *slog.LevelVar) {
	switch cfg.LogSeverity(level) {
	case cfg.TraceLogSeverity:
		programLevel.Set(LevelTrace)
	case cfg.DebugLogSeverity:
		programLevel.Set(LevelDebug)
	case cfg.WarningLogSeverity:
		programLevel.Set(LevelWarn)
	case cfg.ErrorLogSeverity:
		programLevel.Set(LevelError)
	case cfg.OffLogSeverity:
		programLevel.Set(LevelOff)
	default:
		programLevel.Set(LevelInfo)
	}
}

// SetLogFormat switches the default logger between "text" and "json"
// output, keeping its current destination and level.
func SetLogFormat(format string) {
	defaultLoggerFactory.format = format

	programLevel := new(slog.LevelVar)
	setLoggingLevel(string(defaultLoggerFactory.level), programLevel)

	dst := defaultLoggerFactory.sysWriter
	if defaultLoggerFactory.file != nil {
		dst = defaultLoggerFactory.file
	}
	if dst == nil {
		dst = os.Stderr
	}
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(dst, programLevel, ""))
}

// InitLogFile redirects the default logger to a rotating file described by
// logConfig, via lumberjack for rotation and AsyncLogger so that a slow or
// stalled disk never blocks a FUSE operation.
func InitLogFile(logConfig cfg.LoggingConfig) error {
	filePath := string(logConfig.FilePath)
	if filePath == "" {
		return fmt.Errorf("logger: file-path must be set to log to a file")
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("logger: opening log file %s: %w", filePath, err)
	}

	rotator := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    logConfig.MaxFileSizeMB,
		MaxBackups: logConfig.BackupFileCount,
		Compress:   logConfig.Compress,
	}
	async := NewAsyncLogger(rotator, 4096)

	format := logConfig.Format
	if format == "" {
		format = "json"
	}

	defaultLoggerFactory = &loggerFactory{
		format:          format,
		file:            file,
		sysWriter:       nil,
		level:           logConfig.Severity,
		logRotateConfig: logConfig,
	}

	programLevel := new(slog.LevelVar)
	setLoggingLevel(string(logConfig.Severity), programLevel)
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(async, programLevel, ""))
	return nil
}

func Tracef(format string, v ...interface{}) {
	defaultLogger.Log(context.Background(), LevelTrace, fmt.Sprintf(format, v...))
}

func Debugf(format string, v ...interface{}) {
	defaultLogger.Debug(fmt.Sprintf(format, v...))
}

func Infof(format string, v ...interface{}) {
	defaultLogger.Info(fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...interface{}) {
	defaultLogger.Warn(fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...interface{}) {
	defaultLogger.Error(fmt.Sprintf(format, v...))
}
