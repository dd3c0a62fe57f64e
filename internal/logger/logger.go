// Package logger builds the zap logger shared by the CLI and the engine.
package logger

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Configuration selects the log sinks. With no sink set, New returns a
// no-op logger.
type Configuration struct {
	Level     string `yaml:"level" json:"level"`
	Console   bool   `yaml:"console" json:"console"`
	LogFile   string `yaml:"log_file" json:"log_file"`
	ErrorFile string `yaml:"error_file" json:"error_file"`
}

// DefaultLevel is used when Level is empty.
const DefaultLevel = "info"

// Logger is a zap logger plus the files it writes to.
type Logger struct {
	*zap.Logger
	files []*os.File
}

// Close flushes the logger and closes its files.
func (l *Logger) Close() error {
	if l.Logger != nil {
		// Sync on a terminal-backed stderr reports EINVAL; only file
		// errors matter here.
		_ = l.Sync()
	}
	var err error
	for _, f := range l.files {
		err = errors.Join(err, f.Close())
	}
	return err
}

// ParseLevel parses a zap level name. Empty means DefaultLevel.
func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		s = DefaultLevel
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}

// New builds a logger from configuration. Console output goes to stderr so
// it never mixes with command output.
func New(configuration Configuration) (*Logger, error) {
	return newLogger(configuration, os.Stderr)
}

func newLogger(configuration Configuration, console io.Writer) (*Logger, error) {
	level, err := ParseLevel(configuration.Level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	l := &Logger{}
	var cores []zapcore.Core

	if configuration.LogFile != "" {
		logFile, err := openLog(configuration.LogFile)
		if err != nil {
			l.Close()
			return nil, err
		}
		l.files = append(l.files, logFile)
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(logFile),
			level,
		))
	}

	if configuration.ErrorFile != "" {
		errorFile, err := openLog(configuration.ErrorFile)
		if err != nil {
			l.Close()
			return nil, err
		}
		l.files = append(l.files, errorFile)
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(errorFile),
			zapcore.ErrorLevel,
		))
	}

	if configuration.Console {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(console),
			level,
		))
	}

	if len(cores) == 0 {
		l.Logger = zap.NewNop()
		return l, nil
	}
	l.Logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return l, nil
}

func openLog(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
