// Package logging wires up the process-wide structured logger. The teacher
// used code.google.com/p/log4go, an archived leveled/formatter-based
// logger; the corpus's closest living analog for that shape is logrus
// (used for exactly this concern elsewhere in the retrieved examples), so
// this configures logrus's package-level default logger rather than
// reaching for the standard library.
package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Init configures logrus's default logger from a level name ("debug",
// "info", "warn", "error") and format ("text" or "json"), matching
// config.Settings.LogLevel/LogFormat.
func Init(level, format string) {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)

	if strings.ToLower(format) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{})
	}
}
