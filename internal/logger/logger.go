package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the level, encoding and destination of diagnostic logs.
type Options struct {
	Level  string // zerolog level name; unknown values fall back to info
	Format string // "text" or "json"
	File   string // rotated log file; empty logs to Out
	Out    io.Writer
}

// Rotation limits for file logging.
const (
	maxSizeMB  = 10
	maxBackups = 5
	maxAgeDays = 30
)

// New constructs a zerolog.Logger from opts.
func New(opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if opts.File != "" {
		out = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		}
	}

	if opts.Format == "text" {
		cw := zerolog.NewConsoleWriter()
		cw.Out = out
		cw.NoColor = opts.File != ""
		return zerolog.New(cw).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
