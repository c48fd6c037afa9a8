package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var (
	// Log is the logger
	Log *logrus.Logger
)

func init() {
	Log = logrus.New()
	Log.Out = os.Stderr
	Log.Formatter = &logrus.TextFormatter{}
	// Log.SetReportCaller(true)
}

// SetLevel sets the log level, falling back to info for unknown levels
func SetLevel(level string) {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		Log.Warnf("unknown log level [%s], using info", level)
		l = logrus.InfoLevel
	}

	Log.SetLevel(l)
}

// SetFormat switches between the "text" and "json" formatters
func SetFormat(format string) {
	switch format {
	case "json":
		Log.Formatter = &logrus.JSONFormatter{}
	default:
		Log.Formatter = &logrus.TextFormatter{}
	}
}

// SetOutput redirects the logs
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}
