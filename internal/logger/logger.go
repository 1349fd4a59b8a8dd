package logger

import (
	"github.com/sirupsen/logrus"
)

// New builds the process logger. Unknown levels fall back to info so a
// typo in LOG_LEVEL never silences the service.
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	return log
}

// Component returns a child logger tagged for one area of the system
// (orders, inventory, catalog, importer, storage).
func Component(log *logrus.Logger, name string) *logrus.Entry {
	return log.WithField("component", name)
}
