// Package definition holds the small ambient facilities shared across the
// coupling runtime: logging and metrics. Nothing here is specific to any
// single coupling subsystem.
package definition

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the logging contract used across every coupling package. It
// mirrors the plain level+format shape the rest of the runtime expects,
// independent of whatever backend actually renders the lines.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Fatalf(format string, v ...interface{})

	// With returns a Logger that attaches the given fields to every
	// subsequent line, e.g. participant name and rank.
	With(fields map[string]interface{}) Logger
}

// LogrusLogger is the default Logger, backed by logrus. It is used unless
// the embedding solver supplies its own implementation.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewDefaultLogger builds a LogrusLogger writing structured text to
// stderr at info level.
func NewDefaultLogger() *LogrusLogger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

// ToggleDebug switches the logger between info and debug verbosity.
func (l *LogrusLogger) ToggleDebug(on bool) {
	if on {
		l.entry.Logger.SetLevel(logrus.DebugLevel)
	} else {
		l.entry.Logger.SetLevel(logrus.InfoLevel)
	}
}

func (l *LogrusLogger) Debugf(format string, v ...interface{}) { l.entry.Debugf(format, v...) }
func (l *LogrusLogger) Infof(format string, v ...interface{})  { l.entry.Infof(format, v...) }
func (l *LogrusLogger) Warnf(format string, v ...interface{})  { l.entry.Warnf(format, v...) }
func (l *LogrusLogger) Errorf(format string, v ...interface{}) { l.entry.Errorf(format, v...) }
func (l *LogrusLogger) Fatalf(format string, v ...interface{}) { l.entry.Fatalf(format, v...) }

func (l *LogrusLogger) With(fields map[string]interface{}) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(fields)}
}
