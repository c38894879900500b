package logger

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mama165/sdk-go/logs"
)

type Logger struct {
	log *slog.Logger
}

func New(level string) *Logger {
	return &Logger{log: logs.GetLoggerFromString(level)}
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.log.Info(fmt.Sprintf(format, v...))
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}

func (l *Logger) Fatal(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
	os.Exit(1)
}

// Slog exposes the underlying structured logger for components that take one.
func (l *Logger) Slog() *slog.Logger {
	return l.log
}

// Global logger instance
var GlobalLogger = New("INFO")

// Init replaces the global logger with one at the given level.
func Init(level string) {
	GlobalLogger = New(level)
}

// Convenience functions
func Info(format string, v ...interface{}) {
	GlobalLogger.Info(format, v...)
}

func Error(format string, v ...interface{}) {
	GlobalLogger.Error(format, v...)
}

func Debug(format string, v ...interface{}) {
	GlobalLogger.Debug(format, v...)
}

func Fatal(format string, v ...interface{}) {
	GlobalLogger.Fatal(format, v...)
}
