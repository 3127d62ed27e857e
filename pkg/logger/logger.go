// Package logger provides structured logging using zerolog
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Config controls the process logger.
type Config struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Output string `yaml:"output"` // stderr, stdout or a console variant
}

// DefaultConfig logs at info level to stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Output: "stderr"}
}

// New builds a logger from config without touching the global one.
func New(config Config) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if config.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(strings.ToLower(config.Level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", config.Level, err)
		}
	}

	output, err := writerFor(config.Output)
	if err != nil {
		return zerolog.Nop(), err
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger(), nil
}

func writerFor(name string) (io.Writer, error) {
	switch name {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	case "console":
		return zerolog.ConsoleWriter{Out: os.Stderr}, nil
	}
	return nil, fmt.Errorf("unknown log output %q", name)
}

// Init replaces the global logger.
func Init(config Config) error {
	l, err := New(config)
	if err != nil {
		return err
	}
	globalLogger = l
	return nil
}

// SetOutput redirects the global logger, keeping its level.
func SetOutput(w io.Writer) {
	globalLogger = globalLogger.Output(w)
}

func GetLogger() zerolog.Logger {
	return globalLogger
}

// WithComponent returns the global logger tagged with a component name.
func WithComponent(component string) zerolog.Logger {
	return globalLogger.With().Str("component", component).Logger()
}

// Nop returns a logger that discards everything.
func Nop() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
