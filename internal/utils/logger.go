package utils

import (
	"fmt" // Error formatting

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// SetupLogger configures the standard logrus logger: JSON lines in
// production, timestamped text elsewhere.
func SetupLogger(level string, production bool) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	logrus.SetLevel(lvl)
	if production {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
