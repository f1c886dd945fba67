package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"codefendpanel/internal/dialog"
	"codefendpanel/internal/logging"
	"codefendpanel/internal/platform"
	"codefendpanel/internal/plugin"
	"codefendpanel/internal/window"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// WindowReadyEvent tells the frontend the main window is placed
const WindowReadyEvent = "window-ready"

var errNotStarted = errors.New("application has not started yet")

// App struct
type App struct {
	ctx     context.Context
	class   platform.Class
	variant window.Variant
	plugins *plugin.Registry

	newHost func(ctx context.Context) window.Host
	emit    func(ctx context.Context, name string, data ...interface{})
	report  func(err error)
	exit    func(code int)

	mu        sync.Mutex
	host      window.Host
	placeMu   sync.Mutex
	readyOnce sync.Once
	ready     atomic.Bool
}

// NewApp creates a new App
func NewApp(class platform.Class, plugins *plugin.Registry) *App {
	return &App{
		class:   class,
		variant: window.VariantFor(class),
		plugins: plugins,
		newHost: func(ctx context.Context) window.Host { return window.NewWailsHost(ctx) },
		emit:    runtime.EventsEmit,
		report:  showStartupError,
		exit:    os.Exit,
	}
}

// startup is called when the app starts
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	logging.Info("Application starting", "version", Version, "class", a.class.String())

	a.mu.Lock()
	a.host = a.newHost(ctx)
	a.mu.Unlock()

	a.plugins.Start(ctx)

	if err := a.setup(ctx); err != nil {
		a.fail(err)
	}
}

// setup places the main window. Mobile shells create their own window.
func (a *App) setup(ctx context.Context) error {
	if !a.class.IsDesktop() {
		logging.Info("Skipping main window setup", "class", a.class.String())
		return nil
	}
	return a.ensureMainWindow(ctx)
}

func (a *App) ensureMainWindow(ctx context.Context) error {
	a.mu.Lock()
	host := a.host
	a.mu.Unlock()
	if host == nil {
		return errNotStarted
	}

	// lookup and build must not interleave between setup and bound calls
	a.placeMu.Lock()
	defer a.placeMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			if be, ok := r.(*window.BuildError); ok {
				logging.Error("Main window could not be built", "error", be)
				a.report(be)
			}
			panic(r)
		}
	}()

	if err := window.EnsureMainWindow(host, a.variant); err != nil {
		return fmt.Errorf("setup main window: %w", err)
	}

	a.readyOnce.Do(func() {
		a.ready.Store(true)
		a.emit(ctx, WindowReadyEvent)
		logging.Info("Main window ready")
		a.plugins.WindowReady(ctx)
	})
	return nil
}

// domReady repeats the readiness event for listeners registered after startup
// emitted it. Plugin hooks are not run again.
func (a *App) domReady(ctx context.Context) {
	if a.ready.Load() {
		a.emit(ctx, WindowReadyEvent)
	}
}

// fail reports a startup error and terminates the process
func (a *App) fail(err error) {
	logging.Error("Startup failed", "error", err)
	a.report(err)
	logging.Close()
	a.exit(1)
}

func showStartupError(err error) {
	if dErr := dialog.Fatal(window.MainTitle, fmt.Sprintf("The application could not start:\n\n%v", err)); dErr != nil {
		logging.Warn("Failed to show startup error", "error", dErr)
	}
}

// shutdown is called when the app is closing
func (a *App) shutdown(ctx context.Context) {
	a.plugins.Stop(ctx)
	logging.Info("Application stopped")
	logging.Close()
}

// Greet returns a greeting for the given name
func (a *App) Greet(name string) string {
	return fmt.Sprintf("Hello, %s! You've been greeted from Go!", name)
}

// CreateMainWindow creates and places the main window if it does not exist yet
func (a *App) CreateMainWindow() error {
	return a.ensureMainWindow(a.ctx)
}

// GetVersion returns the application version
func (a *App) GetVersion() string {
	return Version
}

// Log receives log messages from the frontend and routes them through the centralized logger
func (a *App) Log(level, module, message string, data map[string]interface{}) {
	logging.LogFromFrontend(logging.LogEntry{
		Level:   level,
		Module:  module,
		Message: message,
		Data:    data,
	})
}

// IsDevMode returns whether the application is running in development mode
func (a *App) IsDevMode() bool {
	return logging.IsDevMode()
}
