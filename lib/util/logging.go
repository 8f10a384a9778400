package util

import "github.com/sirupsen/logrus"

// SetLogLevel parses a level string and applies it to logger, defaulting to
// Info for anything unrecognized.
func SetLogLevel(logger *logrus.Logger, level string) {
	switch level {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}
}

// NewLogger builds a JSON-formatted logrus.Logger at the given level.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	SetLogLevel(logger, level)
	return logger
}
