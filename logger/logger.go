// Package logger configures the process-wide logrus logger.
package logger

import (
	"os"
	"time"

	nested "github.com/antonfisher/nested-logrus-formatter"
	log "github.com/sirupsen/logrus"
)

// Setup installs the nested formatter and sets the level. Unknown levels
// fall back to info so a typo in LOG_LEVEL never silences the server.
func Setup(level string) {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&nested.Formatter{
		HideKeys:        false,
		NoColors:        os.Getenv("NO_COLOR") != "",
		FieldsOrder:     []string{"module", "request_id", "method", "path", "status"},
		TimestampFormat: time.RFC3339,
	})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("unknown log level %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
