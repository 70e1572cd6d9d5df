// Package logger configura el logger global de logrus.
package logger

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Setup define salida, nivel y formato; un nivel desconocido queda en info
func Setup(level, format string) {
	log.SetOutput(os.Stdout)

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)

	if format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
