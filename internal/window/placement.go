package window

import (
	"fmt"

	"codefendpanel/internal/logging"
)

// BuildError is the panic value raised when the window manager cannot
// create the main window. There is no usable application without it.
type BuildError struct {
	Label string
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build window %q: %v", e.Label, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// PlacementError is returned when sizing or positioning a created window fails
type PlacementError struct {
	Op  string
	Err error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("window placement: %s: %v", e.Op, e.Err)
}

func (e *PlacementError) Unwrap() error {
	return e.Err
}

// EnsureMainWindow creates the main window if it does not exist yet, sets its
// minimum size and centers it on its current monitor. A second call is a no-op.
//
// A build failure panics with *BuildError. Size and position failures are
// returned as *PlacementError. A missing monitor leaves the window where the
// window manager put it.
func EnsureMainWindow(host Host, v Variant) error {
	if _, ok := host.Window(MainLabel); ok {
		logging.Debug("Main window already exists, skipping creation")
		return nil
	}

	req := MainRequest(v)
	win, err := host.Build(req)
	if err != nil {
		panic(&BuildError{Label: req.Label, Err: err})
	}
	logging.Info("Main window created",
		"title", req.Title,
		"width", req.Width,
		"height", req.Height,
		"decorations", req.Decorations,
		"transparent", req.Transparent)

	if err := win.SetMinSize(Size{Width: req.MinWidth, Height: req.MinHeight}); err != nil {
		return &PlacementError{Op: "set min size", Err: err}
	}

	monitor, err := win.CurrentMonitor()
	if err != nil {
		logging.Warn("Current monitor unavailable, keeping default position", "error", err)
		return nil
	}
	if monitor == nil {
		logging.Debug("No current monitor reported, keeping default position")
		return nil
	}

	outer, err := win.OuterSize()
	if err != nil {
		return &PlacementError{Op: "outer size", Err: err}
	}

	pos := Center(monitor.Size, outer)
	if err := win.SetPosition(pos); err != nil {
		return &PlacementError{Op: "set position", Err: err}
	}

	logging.Info("Main window centered",
		"monitor", monitor.Name,
		"monitorWidth", monitor.Size.Width,
		"monitorHeight", monitor.Size.Height,
		"x", pos.X,
		"y", pos.Y)
	return nil
}
