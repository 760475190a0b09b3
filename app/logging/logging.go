package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a JSON logger writing to stdout at level.
func New(level logrus.Level) *logrus.Logger {
	return NewWithOutput(os.Stdout, level)
}

// NewWithOutput is New with a custom destination.
func NewWithOutput(out io.Writer, level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(out)
	logger.SetLevel(level)
	return logger
}

// Discard returns a logger that drops everything, for tests.
func Discard() *logrus.Logger {
	return NewWithOutput(io.Discard, logrus.PanicLevel)
}
