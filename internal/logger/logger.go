package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// PrefixHook prepends the component name to every message.
type PrefixHook struct {
	Prefix string
}

func (h *PrefixHook) Fire(entry *logrus.Entry) error {
	entry.Message = h.Prefix + ": " + entry.Message
	return nil
}

func (h *PrefixHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// New builds a logger for one component. Unknown levels fall back to info.
func New(level, format string, hooks ...logrus.Hook) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	for _, h := range hooks {
		l.AddHook(h)
	}
	return logrus.NewEntry(l)
}

// Component is New with a PrefixHook for name.
func Component(level, format, name string) *logrus.Entry {
	return New(level, format, &PrefixHook{Prefix: name})
}

// Discard returns a logger that writes nothing, for tests.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(discard{})
	return logrus.NewEntry(l)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
