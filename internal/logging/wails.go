package logging

import (
	"os"
)

// WailsLogger routes the Wails runtime logger into the application log.
// It implements github.com/wailsapp/wails/v2/pkg/logger.Logger.
type WailsLogger struct{}

// NewWailsLogger creates a Wails logger backed by the default slog logger
func NewWailsLogger() *WailsLogger {
	return &WailsLogger{}
}

func (l *WailsLogger) Print(message string) {
	Logger().Info(message, "source", "wails")
}

func (l *WailsLogger) Trace(message string) {
	Logger().Debug(message, "source", "wails", "trace", true)
}

func (l *WailsLogger) Debug(message string) {
	Logger().Debug(message, "source", "wails")
}

func (l *WailsLogger) Info(message string) {
	Logger().Info(message, "source", "wails")
}

func (l *WailsLogger) Warning(message string) {
	Logger().Warn(message, "source", "wails")
}

func (l *WailsLogger) Error(message string) {
	Logger().Error(message, "source", "wails")
}

// Fatal logs the message, closes the log file and exits
func (l *WailsLogger) Fatal(message string) {
	Logger().Error(message, "source", "wails", "fatal", true)
	Close()
	os.Exit(1)
}
