// Package logger builds the logrus loggers used by the pipeline.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the process wide logger. Its level is read from LOG_LEVEL.
var Logger *logrus.Logger

func init() {
	Logger = New(os.Getenv("LOG_LEVEL"), os.Stderr)
}

// New creates a JSON logger writing to out. Unknown levels fall back to info.
func New(level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(ParseLevel(level))
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	return log
}

// ParseLevel maps a level name to a logrus level, defaulting to info.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Discard returns a logger that drops every entry.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)

	return log
}

// WithNode returns an entry carrying the node fields shared by all pipeline log lines.
func WithNode(log logrus.FieldLogger, id int, name string) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"id":   id,
		"node": name,
	})
}
