// Package process lets the UI exit or relaunch the application.
package process

import (
	"context"
	"os"
	"os/exec"

	"codefendpanel/internal/logging"
	"codefendpanel/internal/plugin"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Controller exits and relaunches the running application
type Controller struct {
	ctx context.Context

	quit       func(ctx context.Context)
	exit       func(code int)
	executable func() (string, error)
	spawn      func(path string, args []string) error
}

// New creates a process controller
func New() *Controller {
	return &Controller{
		quit:       runtime.Quit,
		exit:       os.Exit,
		executable: os.Executable,
		spawn:      spawnDetached,
	}
}

// Plugin registers the controller as the "process" plugin
func Plugin(c *Controller) plugin.Plugin {
	return plugin.Plugin{
		Name:    "process",
		Service: c,
		Start: func(ctx context.Context) error {
			c.ctx = ctx
			return nil
		},
	}
}

// Exit stops the application. A zero code shuts down through Wails so
// plugins flush their state; any other code exits immediately.
func (c *Controller) Exit(code int) {
	logging.Info("Exit requested", "code", code)
	if code == 0 && c.ctx != nil {
		c.quit(c.ctx)
		return
	}
	logging.Close()
	c.exit(code)
}

// Relaunch starts a new instance of the application and quits this one
func (c *Controller) Relaunch() error {
	path, err := c.executable()
	if err != nil {
		return err
	}

	logging.Info("Relaunching", "path", logging.MaskPath(path))
	if err := c.spawn(path, os.Args[1:]); err != nil {
		logging.Error("Relaunch failed", "error", err)
		return err
	}

	c.Exit(0)
	return nil
}

func spawnDetached(path string, args []string) error {
	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
