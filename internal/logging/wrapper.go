package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// Logger prints through a charmbracelet logger and captures every call in
// a Storage, regardless of the printed level.
type Logger struct {
	out     *log.Logger
	storage *Storage
}

func New(w io.Writer, storage *Storage) *Logger {
	if storage == nil {
		storage = NewStorage(DefaultCapacity)
	}
	return &Logger{
		out:     log.NewWithOptions(w, log.Options{ReportTimestamp: true}),
		storage: storage,
	}
}

func (l *Logger) Storage() *Storage {
	return l.storage
}

func (l *Logger) SetLevel(level log.Level) {
	l.out.SetLevel(level)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.capture("debug", msg, args...)
	l.out.Debug(msg, args...)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.capture("info", msg, args...)
	l.out.Info(msg, args...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.capture("warn", msg, args...)
	l.out.Warn(msg, args...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.capture("error", msg, args...)
	l.out.Error(msg, args...)
}

func (l *Logger) capture(level, msg string, args ...interface{}) {
	l.storage.AddEntry(level, msg, parseFields(args...))
}

// SetLevel sets the level of the global charmbracelet logger, used by
// packages that log through it directly.
func SetLevel(level log.Level) {
	log.SetLevel(level)
}
