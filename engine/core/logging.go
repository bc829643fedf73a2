package core

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var once sync.Once

var defaultLogger *log.Logger

// Default returns the process-wide logger. Components take a *log.Logger as
// a collaborator; this is the fallback wiring when the caller does not pass
// one of its own.
func Default() *log.Logger {
	once.Do(func() {
		defaultLogger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "preload 📦 ",
		})
		defaultLogger.SetLevel(levelFromEnv())
	})
	return defaultLogger
}

// PRELOAD_LOG_LEVEL overrides the default info level.
func levelFromEnv() log.Level {
	switch os.Getenv("PRELOAD_LOG_LEVEL") {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
