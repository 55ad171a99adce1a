package logger

import (
	"os"

	"github.com/rs/zerolog"
)

const (
	LOG_LEVEL_DEBUG = "DEBUG"
	LOG_LEVEL_INFO  = "INFO"
	LOG_LEVEL_WARN  = "WARN"
	LOG_LEVEL_ERROR = "ERROR"
	LOG_LEVEL_FATAL = "FATAL"
	LOG_LEVEL_PANIC = "PANIC"
)

var levelValues = map[string]zerolog.Level{
	LOG_LEVEL_DEBUG: zerolog.DebugLevel,
	LOG_LEVEL_INFO:  zerolog.InfoLevel,
	LOG_LEVEL_WARN:  zerolog.WarnLevel,
	LOG_LEVEL_ERROR: zerolog.ErrorLevel,
	LOG_LEVEL_FATAL: zerolog.FatalLevel,
	LOG_LEVEL_PANIC: zerolog.PanicLevel,
}

func SetupLogging() {
	zerolog.LevelFieldName = "level_name"
	zerolog.TimestampFieldName = "timestamp"
}

// NewLogger returns a component-tagged logger. The level comes from
// MDL_COMN_LOGLEVEL and defaults to INFO.
func NewLogger(component string) zerolog.Logger {
	levelValue := zerolog.InfoLevel
	if level, ok := os.LookupEnv("MDL_COMN_LOGLEVEL"); ok {
		if parsed, known := levelValues[level]; known {
			levelValue = parsed
		}
	}

	return zerolog.New(os.Stderr).
		With().
		Str("component", component).
		Timestamp().
		Logger().
		Level(levelValue)
}
