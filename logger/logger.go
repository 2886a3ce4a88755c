/*
Package logger holds the process-wide zerolog logger.
*/
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	// Log is the global logger instance. It writes to stderr so stdout stays
	// free for progress bars and results.
	Log zerolog.Logger
)

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "2006-01-02 15:04:05",
	}

	Log = zerolog.New(output).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Caller().
		Logger()
}

// ParseLevel parses a verbosity name. "off" disables logging.
func ParseLevel(levelStr string) (zerolog.Level, error) {
	if strings.EqualFold(levelStr, "off") {
		return zerolog.Disabled, nil
	}
	return zerolog.ParseLevel(strings.ToLower(levelStr))
}

// SetLevel sets the log level
func SetLevel(levelStr string) {
	level, err := ParseLevel(levelStr)
	if err != nil {
		Log.Warn().Str("level", levelStr).Msg("invalid log level, defaulting to info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	Log = Log.Level(level)
}
