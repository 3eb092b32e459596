package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger with configuration from environment variables.
// BIRTHDAY_LOG_LEVEL controls the log level: debug, info, warn, error (default: info)
func Init() {
	InitLevel(os.Getenv("BIRTHDAY_LOG_LEVEL"))
}

// InitLevel initializes the global logger at the named level. Under Lambda
// the output stays JSON so CloudWatch can index the fields; elsewhere it is
// human-readable on stderr.
func InitLevel(level string) {
	zerolog.SetGlobalLevel(ParseLevel(level))

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
