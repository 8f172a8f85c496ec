package ros

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewDefaultLogger returns a logger writing text records to stderr at
// warning level. Stdout is left to the program.
func NewDefaultLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

// setLogLevel applies a level name such as "debug" or "error". An unknown
// name leaves the level untouched and is reported.
func setLogLevel(logger *logrus.Logger, level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithError(err).Warn("ignoring __log_level")
		return
	}
	logger.SetLevel(lvl)
}
