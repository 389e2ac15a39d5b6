// Package logger wraps logrus with optional rotated file output.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timestampFormat = "2006-01-02 15:04:05"

// Logger carries a base logrus logger plus fields bound with WithField.
type Logger struct {
	*logrus.Logger
	fields logrus.Fields
}

// New creates a logger at the given level. When file is set, output goes to
// stdout and to a lumberjack-rotated file.
func New(level, format, file string) *Logger {
	log := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	l := &Logger{Logger: log, fields: logrus.Fields{}}
	l.SetFormat(format)

	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "logger: create log directory: %v\n", err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
				Filename:   file,
				MaxSize:    100, // MB
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}))
		}
	}
	return l
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *Logger {
	l := New("panic", "text", "")
	l.SetOutput(io.Discard)
	return l
}

// SetFormat switches between the json and text formatters.
func (l *Logger) SetFormat(format string) {
	if format == "json" {
		l.Logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timestampFormat})
		return
	}
	l.Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: timestampFormat})
}

// WithField returns a child logger with key bound.
func (l *Logger) WithField(key string, value any) *Logger {
	return l.WithFields(map[string]any{key: value})
}

// WithFields returns a child logger with every entry of fields bound.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	merged := make(logrus.Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{Logger: l.Logger, fields: merged}
}

// WithComponent tags entries with the subsystem that produced them.
func (l *Logger) WithComponent(name string) *Logger {
	return l.WithField("component", name)
}

// WithError binds err under the "error" key.
func (l *Logger) WithError(err error) *Logger {
	return l.WithField("error", err)
}

func (l *Logger) entry() *logrus.Entry { return l.Logger.WithFields(l.fields) }

func (l *Logger) Debug(msg string, args ...any) { l.entry().Debugf(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.entry().Infof(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.entry().Warnf(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.entry().Errorf(msg, args...) }
