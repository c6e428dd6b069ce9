// Package logging builds the zerolog logger used by groqscribe. The terminal
// is owned by the UI, so output goes to a rotating file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FieldComponent tags log lines with the emitting component.
const FieldComponent = "component"

// Options configures New.
type Options struct {
	Level   string
	File    string
	Service string
}

// New returns a logger writing JSON lines to a rotated file, plus a closer
// that flushes the file.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     14, // days
	}

	logger := zerolog.New(rotator).
		Level(level).
		With().
		Timestamp().
		Str("service", opts.Service).
		Logger()

	return logger, rotator, nil
}

// Component returns a child logger tagged with name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str(FieldComponent, name).Logger()
}

// Nop returns a disabled logger.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
