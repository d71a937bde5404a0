package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger returns the process logger.  Production environments log JSON
// so lines can be shipped as-is; everything else gets the text formatter
// with full timestamps.  An unknown level falls back to info.
func NewLogger(env, level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	switch strings.ToLower(env) {
	case "prod", "production":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
