package log

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// DebugEnv is the environment variable that enables debug level.
const DebugEnv = "PHONOGRAPH_DEBUG"

var debug bool

// Logger is a global interface for phonograph loggers
type Logger interface {
	Debug(...interface{})
	Info(...interface{})
}

func init() {
	var err error
	debug, err = strconv.ParseBool(os.Getenv(DebugEnv))
	if err != nil {
		debug = false
	}
}

// GetLogger returns a new logger instance
func GetLogger() *logrus.Logger {
	l := logrus.New()
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// WithDebug returns a new logger instance with debug level enabled
// regardless of environment.
func WithDebug() *logrus.Logger {
	l := GetLogger()
	l.SetLevel(logrus.DebugLevel)
	return l
}

// Fields returns a logger entry that carries the context name and id with
// every record.
func Fields(l *logrus.Logger, name, id string) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"context": name,
		"id":      id,
	})
}
