// Package logger builds the logrus logger shared by the storage components.
package logger

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultLevel is used when the level is empty or unknown
const DefaultLevel = logrus.InfoLevel

// ParseLevel converts the level name in the config into logrus level.
// unknown name falls back to DefaultLevel
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return DefaultLevel
	}
}

// New initializes logger which writes text lines to out
func New(level string, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(ParseLevel(level))
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05.000",
	})
	return l
}
