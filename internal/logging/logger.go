// Package logging wraps zerolog with file rotation for ctb.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jontk/ctb/internal/fileperms"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *Logger
	mu     sync.RWMutex
)

// Level represents log level
type Level int

const (
	// DebugLevel has verbose message
	DebugLevel Level = iota
	// InfoLevel is default log level
	InfoLevel
	// WarnLevel is for warning conditions
	WarnLevel
	// ErrorLevel is for error conditions
	ErrorLevel
	// DisabledLevel turns logging off
	DisabledLevel
)

// ParseLevel converts a config string ("debug", "info", ...) to a Level.
// Unknown values fall back to InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "off", "disabled", "none":
		return DisabledLevel
	default:
		return InfoLevel
	}
}

// Config holds logger configuration
type Config struct {
	// Level is the minimum log level
	Level Level

	// Console enables console output
	Console bool

	// ConsoleJSON enables JSON format for console output
	ConsoleJSON bool

	// File enables file output
	File bool

	// Filename is the file to write logs to
	Filename string

	// MaxSize is the maximum size in megabytes of the log file
	MaxSize int

	// MaxBackups is the maximum number of old log files to retain
	MaxBackups int

	// MaxAge is the maximum number of days to retain old log files
	MaxAge int

	// Compress determines if the rotated log files should be compressed
	Compress bool

	// Output overrides every writer when set (tests, TUI redirection)
	Output io.Writer
}

// DefaultConfig returns default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:      InfoLevel,
		Console:    true,
		File:       true,
		Filename:   filepath.Join(os.TempDir(), "ctb.log"),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	}
}

// Logger wraps zerolog logger
type Logger struct {
	*zerolog.Logger
	config *Config
}

// Init replaces the global logger. main installs the defaults; commands
// call it again once the config file is known.
func Init(config *Config) {
	l := newLogger(config)
	mu.Lock()
	defer mu.Unlock()
	logger = l
	log.Logger = *l.Logger
}

// GetLogger returns the global logger instance
func GetLogger() *Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l == nil {
		Init(DefaultConfig())
		return GetLogger()
	}
	return l
}

// New builds a standalone logger that does not touch the global one.
func New(config *Config) *Logger {
	return newLogger(config)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	zl := zerolog.Nop()
	return &Logger{Logger: &zl, config: &Config{Level: DisabledLevel}}
}

func newLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}

	var writers []io.Writer

	if config.Output != nil {
		writers = append(writers, config.Output)
	} else {
		if config.Console {
			if config.ConsoleJSON {
				writers = append(writers, os.Stderr)
			} else {
				writers = append(writers, zerolog.ConsoleWriter{
					Out:        os.Stderr,
					TimeFormat: time.RFC3339,
				})
			}
		}

		if config.File && config.Filename != "" {
			logDir := filepath.Dir(config.Filename)
			if err := os.MkdirAll(logDir, fileperms.LogDir); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "Failed to create log directory: %v\n", err)
			} else {
				writers = append(writers, &lumberjack.Logger{
					Filename:   config.Filename,
					MaxSize:    config.MaxSize,
					MaxBackups: config.MaxBackups,
					MaxAge:     config.MaxAge,
					Compress:   config.Compress,
				})
			}
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stderr
	case 1:
		writer = writers[0]
	default:
		writer = io.MultiWriter(writers...)
	}

	zl := zerolog.New(writer).With().Timestamp().Logger().Level(convertLevel(config.Level))

	return &Logger{
		Logger: &zl,
		config: config,
	}
}

func convertLevel(level Level) zerolog.Level {
	switch level {
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	case DisabledLevel:
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Component returns a child logger tagged with a component name
func (l *Logger) Component(name string) *Logger {
	zl := l.Logger.With().Str("component", name).Logger()
	return &Logger{Logger: &zl, config: l.config}
}

// Package-level helpers for code that has no component logger, such as
// command setup before the TUI takes over the terminal.

// Debugf logs a formatted debug message
func Debugf(format string, v ...interface{}) {
	GetLogger().Debug().Msgf(format, v...)
}

// Info logs an info message
func Info(msg string) {
	GetLogger().Info().Msg(msg)
}

// Infof logs a formatted info message
func Infof(format string, v ...interface{}) {
	GetLogger().Info().Msgf(format, v...)
}

// Warnf logs a formatted warning message
func Warnf(format string, v ...interface{}) {
	GetLogger().Warn().Msgf(format, v...)
}
