// Package window places the main application window: it creates the window
// once, sizes it and centers it on the current monitor.
package window

import (
	"codefendpanel/internal/platform"
)

// Main window policy
const (
	MainLabel     = "main"
	MainTitle     = "Codefend Panel"
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Size is a width/height pair
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Position is a top-left window coordinate on a monitor
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Monitor describes the display a window is currently on
type Monitor struct {
	Name    string `json:"name"`
	Size    Size   `json:"size"`
	Primary bool   `json:"primary"`
}

// Request describes a window to create. It is never persisted.
type Request struct {
	Label       string
	Title       string
	Width       int
	Height      int
	MinWidth    int
	MinHeight   int
	Resizable   bool
	Maximized   bool
	Decorations bool
	Transparent bool
}

// Window is a live window owned by the window manager
type Window interface {
	SetMinSize(size Size) error
	// CurrentMonitor returns nil without error when no monitor is reported
	CurrentMonitor() (*Monitor, error)
	OuterSize() (Size, error)
	SetPosition(pos Position) error
}

// Host is the window-manager capability of the running application
type Host interface {
	// Window looks up an existing window by label
	Window(label string) (Window, bool)
	// Build creates a new window
	Build(req Request) (Window, error)
}

// Variant holds the platform-conditional parts of the window policy
type Variant struct {
	Decorations bool
	Transparent bool
}

// VariantFor selects the window variant for a platform class.
// macOS keeps native decorations and an opaque background.
func VariantFor(class platform.Class) Variant {
	if class == platform.MacOS {
		return Variant{Decorations: true, Transparent: false}
	}
	return Variant{Decorations: false, Transparent: true}
}

// MainRequest returns the creation request for the main window
func MainRequest(v Variant) Request {
	return Request{
		Label:       MainLabel,
		Title:       MainTitle,
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		MinWidth:    DefaultWidth,
		MinHeight:   DefaultHeight,
		Resizable:   true,
		Maximized:   true,
		Decorations: v.Decorations,
		Transparent: v.Transparent,
	}
}

// Center returns the top-left position that centers a window of the given
// outer size on a monitor. Odd remainders truncate toward zero.
func Center(monitor, outer Size) Position {
	return Position{
		X: (monitor.Width - outer.Width) / 2,
		Y: (monitor.Height - outer.Height) / 2,
	}
}
