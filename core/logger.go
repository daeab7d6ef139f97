package core

import (
	"log"
)

// Logger is any leveled logging service.
// expected args: error, map[string]interface{}, ...
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

type stdLogger struct {
	std   *log.Logger
	debug bool
}

var _ Logger = (*stdLogger)(nil)

func NewStdLogger(std *log.Logger) Logger {
	return &stdLogger{std: std, debug: Conf.Debug}
}

func (l stdLogger) print(lvl, msg string, args []interface{}) {
	l.std.Println(lvl + " : " + msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l stdLogger) Debug(msg string, args ...interface{}) {
	if l.debug {
		l.print("DEBUG", msg, args)
	}
}

func (l stdLogger) Info(msg string, args ...interface{}) { l.print("INFO", msg, args) }
func (l stdLogger) Warn(msg string, args ...interface{}) { l.print("WARN", msg, args) }

func (l stdLogger) Error(msg string, args ...interface{}) {
	l.print("ERROR", msg, args)
}

// NopLogger discards everything; useful in tests.
func NopLogger() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
