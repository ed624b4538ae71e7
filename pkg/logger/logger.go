package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

func New(env string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	l := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if env == "production" {
		return l.Level(zerolog.InfoLevel)
	}
	return l.Level(zerolog.DebugLevel)
}
