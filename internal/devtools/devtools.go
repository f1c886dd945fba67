// Package devtools controls the webview inspector and the Wails log level.
package devtools

import (
	"context"

	"codefendpanel/internal/logging"
	"codefendpanel/internal/plugin"

	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
)

// Settings decides how the runtime is built
type Settings struct {
	Dev           bool
	OpenInspector bool
}

// Status is reported to the UI
type Status struct {
	Dev         bool   `json:"dev"`
	Inspector   bool   `json:"inspector"`
	LogLevel    string `json:"logLevel"`
	ContextMenu bool   `json:"contextMenu"`
	SessionID   string `json:"sessionId"`
}

// Devtools exposes the effective settings
type Devtools struct {
	settings Settings
}

// New creates the devtools service
func New(s Settings) *Devtools {
	return &Devtools{settings: s}
}

// Plugin registers the service as the "devtools" plugin
func Plugin(d *Devtools) plugin.Plugin {
	return plugin.Plugin{
		Name:    "devtools",
		Service: d,
		Start: func(context.Context) error {
			st := d.Status()
			logging.Info("Devtools configured", "dev", st.Dev, "inspector", st.Inspector, "wails_log_level", st.LogLevel)
			return nil
		},
	}
}

func (s Settings) logLevel() logger.LogLevel {
	if s.Dev {
		return logger.DEBUG
	}
	return logger.WARNING
}

// Apply sets the inspector, context menu and logging options on app.
// Wails output goes to the application log.
func Apply(app *options.App, s Settings) {
	app.Logger = logging.NewWailsLogger()
	app.LogLevel = s.logLevel()
	app.LogLevelProduction = logger.WARNING
	app.EnableDefaultContextMenu = s.Dev || s.OpenInspector
	app.Debug = options.Debug{
		OpenInspectorOnStartup: s.OpenInspector,
	}
}

// Status returns the effective devtools settings
func (d *Devtools) Status() Status {
	return Status{
		Dev:         d.settings.Dev,
		Inspector:   d.settings.OpenInspector,
		LogLevel:    levelName(d.settings.logLevel()),
		ContextMenu: d.settings.Dev || d.settings.OpenInspector,
		SessionID:   logging.SessionID(),
	}
}

func levelName(l logger.LogLevel) string {
	switch l {
	case logger.TRACE:
		return "trace"
	case logger.DEBUG:
		return "debug"
	case logger.INFO:
		return "info"
	case logger.WARNING:
		return "warning"
	default:
		return "error"
	}
}
