package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide structured logger. Init must run before it is used
// outside of tests; the zero configuration still logs at info level.
var Log = logrus.New()

// Init configures the JSON formatter and the log level. An unknown level falls
// back to info.
func Init(level ...string) {
	Log.SetOutput(os.Stdout)
	Log.SetFormatter(&logrus.JSONFormatter{})

	lvl := logrus.InfoLevel
	if len(level) > 0 && level[0] != "" {
		if parsed, err := logrus.ParseLevel(level[0]); err == nil {
			lvl = parsed
		}
	}
	Log.SetLevel(lvl)
}
