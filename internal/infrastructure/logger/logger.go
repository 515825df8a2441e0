package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"jan-server/services/messaging-api/internal/config"
)

// New constructs the service logger from LOG_LEVEL and LOG_FORMAT and installs it globally.
func New(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.LogLevel)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var base zerolog.Logger
	switch strings.ToLower(cfg.LogFormat) {
	case "console":
		base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	default:
		base = zerolog.New(os.Stdout)
	}

	logger := base.Level(level).With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Logger()

	zerolog.SetGlobalLevel(level)
	log.Logger = logger

	return logger
}
