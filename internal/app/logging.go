package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/touchmask/internal/config"
)

// LoggerConfig configures the root logger.
type LoggerConfig struct {
	Level  string
	Format string
	// File receives the log. Empty writes to Output.
	File string
	// Output is used when File is empty. Nil means stderr.
	Output io.Writer
}

// NewLogger builds the root logger. The returned closer releases the log
// file, if any.
func NewLogger(cfg LoggerConfig) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := cfg.Output
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		out, closer = f, f
	}
	if out == nil {
		out = os.Stderr
	}

	switch cfg.Format {
	case "json":
	case "", "console":
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.TimeOnly,
			NoColor:    cfg.File != "",
		}
	default:
		_ = closer.Close()
		return zerolog.Nop(), nil, fmt.Errorf("log format %q: %w", cfg.Format, config.ErrValidationFailed)
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}

// loggerConfig derives the logger settings. A terminal source owns the tty,
// so without a log file the log is discarded.
func loggerConfig(cfg *config.Config, opts Options) LoggerConfig {
	lc := cfg.Logging()
	out := LoggerConfig{Level: lc.Level, Format: lc.Format, File: lc.File, Output: opts.LogOutput}
	if opts.Debug {
		out.Level = zerolog.DebugLevel.String()
	}
	if out.File == "" && out.Output == nil && cfg.Input().Source == sourceTerminal && opts.Source == nil {
		out.Output = io.Discard
	}
	return out
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
