package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the logging surface used across taskexec. *logrus.Logger satisfies it,
// so the application can hand in its own configured logrus instance.
type Logger interface {
	WithField(key string, value interface{}) *logrus.Entry
	WithFields(fields logrus.Fields) *logrus.Entry
	WithError(err error) *logrus.Entry

	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Warning(args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})
	Panic(args ...interface{})

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	Panicf(format string, args ...interface{})
}

// ApplicationLogger is the logger every package writes to.
var ApplicationLogger Logger = NewDefaultLogger()

// NewDefaultLogger returns a logrus logger emitting JSON to stdout.
func NewDefaultLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
	return log
}

// SetLevel parses level and applies it when the application logger is logrus backed.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	if log, ok := ApplicationLogger.(*logrus.Logger); ok {
		log.SetLevel(lvl)
	}
	return nil
}
