package cli

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// NewLogger builds the command logger writing to w.
func NewLogger(cfg LogConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), errors.Wrapf(ErrInvalidConfig, "log.level %q", cfg.Level)
	}

	var logger zerolog.Logger
	switch cfg.Format {
	case "json":
		logger = zerolog.New(w)
	case "console", "":
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
	default:
		return zerolog.Nop(), errors.Wrapf(ErrInvalidConfig, "log.format %q", cfg.Format)
	}

	return logger.Level(level).With().Timestamp().Logger(), nil
}
