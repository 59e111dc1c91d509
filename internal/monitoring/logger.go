// Package monitoring holds the diagnostic logger shared by the library
// packages and the command line tools.
package monitoring

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var logger = newLogger(os.Stderr)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Logf is the package-level diagnostic logger. It defaults to the logrus
// logger at info level but may be replaced by SetLogger. Tests or production
// code can redirect or mute it.
var Logf func(format string, v ...interface{}) = logger.Infof

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Logger returns the logrus logger behind the default Logf.
func Logger() *logrus.Logger {
	return logger
}

// SetLevel parses a logrus level name ("debug", "info", "warn", ...) and
// applies it to Logger.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logger.SetLevel(lvl)
	return nil
}

// SetOutput redirects Logger.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}
