package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a text logger at level writing to w.
func New(w io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// ToFile appends to path; the TUI owns the terminal so logs cannot go there.
// An empty path discards output.
func ToFile(path, level string) (*logrus.Logger, io.Closer, error) {
	if path == "" {
		return New(io.Discard, level), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return New(f, level), f, nil
}

// Discard is a logger for callers that do not care.
func Discard() *logrus.Logger {
	return New(io.Discard, "panic")
}
