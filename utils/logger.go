package utils

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOptions controls how the application logger is built.
type LogOptions struct {
	Level    string // debug|info|warn|error
	Format   string // text|json
	FilePath string // optional rotating log file; empty = stdout only
}

// Logger provides leveled, printf-style logging throughout the application.
// It wraps logrus so output format and level stay configurable, while call
// sites keep the compact Info/Warn/Error/Debug form.
type Logger struct {
	l *logrus.Logger
}

// NewLogger creates a Logger writing plain text to stdout at info level.
func NewLogger() *Logger {
	return NewLoggerWith(LogOptions{})
}

// NewLoggerWith creates a Logger from explicit options. When FilePath is
// set, entries are duplicated into a size-rotated file.
func NewLoggerWith(opts LogOptions) *Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	writers := []io.Writer{os.Stdout}
	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   opts.FilePath,
				MaxSize:    50, // MB
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			})
		}
	}
	l.SetOutput(io.MultiWriter(writers...))

	return &Logger{l: l}
}

func (l *Logger) Info(format string, args ...any) {
	l.l.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.l.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.l.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.l.Debugf(format, args...)
}
