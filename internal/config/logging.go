package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// SetupLogging configures the standard logrus logger from c. Output always
// goes to stderr; stdout belongs to the protocol. When LOG_FILE is set output
// is duplicated there and the returned closer closes the file.
func SetupLogging(c *Config) io.Closer {
	level, err := logrus.ParseLevel(c.Level())
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetOutput(os.Stderr)

	if c.LogFile == "" {
		return io.NopCloser(nil)
	}
	lf := expandHome(c.LogFile)
	if err := os.MkdirAll(filepath.Dir(lf), 0o755); err != nil {
		logrus.WithError(err).Warn("failed to create directory for LOG_FILE; using stderr only")
		return io.NopCloser(nil)
	}
	f, err := os.OpenFile(lf, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logrus.WithError(err).Warn("failed to open LOG_FILE; using stderr only")
		return io.NopCloser(nil)
	}
	logrus.SetOutput(io.MultiWriter(os.Stderr, f))
	logrus.WithField("file", lf).Info("logging to file enabled")
	return f
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
