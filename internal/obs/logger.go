// Package obs wires the ambient logging and metrics stack: a thin zerolog
// wrapper and the Prometheus collectors the pipeline and HTTP layer report
// against.
package obs

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with the key-value call shape the rest of the
// module uses (structured fields instead of string concatenation).
type Logger struct {
	zl zerolog.Logger
}

// New builds a console-writer logger for interactive use.
func New() *Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	w := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05"}
	return &Logger{zl: zerolog.New(w).With().Timestamp().Logger()}
}

func (l *Logger) event(level zerolog.Level, msg string, kv ...interface{}) {
	e := l.zl.WithLevel(level)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.event(zerolog.DebugLevel, msg, kv...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.event(zerolog.InfoLevel, msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.event(zerolog.WarnLevel, msg, kv...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.event(zerolog.ErrorLevel, msg, kv...) }

// With returns a child logger with a component field set, for per-package
// scoping (pipeline, solver, api, ...).
func (l *Logger) With(component string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", component).Logger()}
}
