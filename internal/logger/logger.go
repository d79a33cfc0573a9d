package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger for development and a JSON logger elsewhere.
func New(environment string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	if environment == "development" {
		out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(out).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().
		Timestamp().
		Str("env", environment).
		Logger()
}
