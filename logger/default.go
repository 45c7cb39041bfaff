package logger

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/philipp01105/syslogconsole/core"
	"github.com/philipp01105/syslogconsole/handler/consolehandler"
)

var (
	defaultLogger *Logger
	defaultMu     sync.RWMutex
)

func init() {
	// Initialize default logger with console handler
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer: os.Stdout,
	})

	defaultLogger = NewBuilder(filepath.Base(os.Args[0])).
		WithHandler(h).
		WithTTY(false).
		Build()
}

// Default returns the default logger
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault sets the default logger
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Package-level convenience functions using the default logger

// Send delivers msg at severity using the default logger
func Send(severity core.Severity, msg interface{}) error {
	return Default().Send(severity, msg)
}

// Emergency sends msg at emergency severity using the default logger
func Emergency(msg interface{}) error {
	return Default().Emergency(msg)
}

// Alert sends msg at alert severity using the default logger
func Alert(msg interface{}) error {
	return Default().Alert(msg)
}

// Critical sends msg at critical severity using the default logger
func Critical(msg interface{}) error {
	return Default().Critical(msg)
}

// Error sends msg at error severity using the default logger
func Error(msg interface{}) error {
	return Default().Error(msg)
}

// Warning sends msg at warning severity using the default logger
func Warning(msg interface{}) error {
	return Default().Warning(msg)
}

// Notice sends msg at notice severity using the default logger
func Notice(msg interface{}) error {
	return Default().Notice(msg)
}

// Info sends msg at info severity using the default logger
func Info(msg interface{}) error {
	return Default().Info(msg)
}

// Debug sends msg at debug severity using the default logger
func Debug(msg interface{}) error {
	return Default().Debug(msg)
}

// Message sends {action, message} at debug severity using the default logger
func Message(msg interface{}) error {
	return Default().Message(msg)
}
