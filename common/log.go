package common

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// LogEnv names the environment variable holding the default log level.
const LogEnv = "ARMSIM_LOG"

var (
	loggerOnce sync.Once
	logger     *log.Logger
)

// Logger returns the process logger, creating it on first use.
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
			Prefix:          "armsim",
		})
		level := log.InfoLevel
		if env := strings.TrimSpace(os.Getenv(LogEnv)); env != "" {
			if parsed, err := log.ParseLevel(env); err == nil {
				level = parsed
			}
		}
		logger.SetLevel(level)
	})
	return logger
}

// SetLogLevel parses name ("debug", "info", "warn", "error") and applies it
// to the process logger.
func SetLogLevel(name string) error {
	level, err := log.ParseLevel(name)
	if err != nil {
		return err
	}
	Logger().SetLevel(level)
	return nil
}

// DiscardLogger returns a logger that writes nowhere.
func DiscardLogger() *log.Logger {
	return log.New(io.Discard)
}
