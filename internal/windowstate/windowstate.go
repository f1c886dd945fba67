// Package windowstate persists main window geometry across launches.
package windowstate

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"codefendpanel/internal/logging"
	"codefendpanel/internal/plugin"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

const stateFile = "window-state.json"

// Accepted origin range spans monitors left of and above the primary one
const (
	minWindowX      = -5000
	maxWindowX      = 10000
	minWindowY      = -5000
	maxWindowY      = 10000
	minWindowWidth  = 400
	minWindowHeight = 300
)

// State is the saved geometry of the main window
type State struct {
	X         int  `json:"x"`
	Y         int  `json:"y"`
	Width     int  `json:"width"`
	Height    int  `json:"height"`
	Maximized bool `json:"maximized"`
}

// Geometry reads and changes the live window
type Geometry interface {
	Position() (int, int)
	Size() (int, int)
	IsMaximised() bool
	SetPosition(x, y int)
	SetSize(width, height int)
	Maximise()
}

// Manager restores and saves window state
type Manager struct {
	path  string
	saved *State
	mu    sync.Mutex
}

// NewManager creates a manager storing its file in dir
func NewManager(dir string) *Manager {
	return &Manager{path: filepath.Join(dir, stateFile)}
}

// Plugin registers the manager as the "window-state" plugin. Geometry is
// restored once the main window is placed and saved on shutdown.
func Plugin(m *Manager) plugin.Plugin {
	var g Geometry
	return plugin.Plugin{
		Name: "window-state",
		Start: func(ctx context.Context) error {
			g = wailsGeometry{ctx: ctx}
			return m.Load()
		},
		OnWindowReady: func(ctx context.Context) {
			m.Restore(g)
		},
		Stop: func(ctx context.Context) {
			if err := m.Save(g); err != nil {
				logging.Error("Failed to save window state", "error", err)
			}
		},
	}
}

// Load reads the saved state. A missing or corrupt file means no state.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			m.saved = nil
			return nil
		}
		return err
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		logging.Warn("Ignoring corrupt window state", "path", logging.MaskPath(m.path), "error", err)
		m.saved = nil
		return nil
	}
	m.saved = &s
	return nil
}

// Saved returns a copy of the loaded state, or nil
func (m *Manager) Saved() *State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		return nil
	}
	s := *m.saved
	return &s
}

// positionOK reports whether the saved origin lies within the multi-monitor bounds
func (s State) positionOK() bool {
	return s.X >= minWindowX && s.X <= maxWindowX && s.Y >= minWindowY && s.Y <= maxWindowY
}

// sizeOK reports whether the saved size is at least the minimum usable size
func (s State) sizeOK() bool {
	return s.Width >= minWindowWidth && s.Height >= minWindowHeight
}

// Restore applies the saved state to the window. A maximized state only
// maximizes; otherwise size and position are applied independently and an
// out-of-range value is left at the placed default.
func (m *Manager) Restore(g Geometry) {
	saved := m.Saved()
	switch {
	case saved == nil || g == nil:
		logging.Debug("Keeping placed geometry, nothing saved")
		return
	case saved.Maximized:
		g.Maximise()
		logging.Info("Restored main window", "maximized", true)
		return
	}

	applied := make([]string, 0, 2)
	if saved.sizeOK() {
		g.SetSize(saved.Width, saved.Height)
		applied = append(applied, "size")
	} else {
		logging.Warn("Saved window size below minimum", "width", saved.Width, "height", saved.Height)
	}
	if saved.positionOK() {
		g.SetPosition(saved.X, saved.Y)
		applied = append(applied, "position")
	} else {
		logging.Warn("Saved window position off screen", "x", saved.X, "y", saved.Y)
	}
	logging.Info("Restored main window", "applied", applied)
}

// current reads the geometry to persist. A maximized window reports the
// screen size, so the last normal geometry is carried over instead.
func (m *Manager) current(g Geometry) State {
	st := State{Maximized: g.IsMaximised()}
	if prev := m.Saved(); st.Maximized && prev != nil && !prev.Maximized {
		st.X, st.Y, st.Width, st.Height = prev.X, prev.Y, prev.Width, prev.Height
		return st
	}
	st.X, st.Y = g.Position()
	st.Width, st.Height = g.Size()
	return st
}

// Save writes the current window geometry to disk
func (m *Manager) Save(g Geometry) error {
	if g == nil {
		return nil
	}
	st := m.current(g)

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return err
	}

	m.mu.Lock()
	m.saved = &st
	m.mu.Unlock()

	logging.Debug("Stored main window geometry", "state", st)
	return nil
}

type wailsGeometry struct {
	ctx context.Context
}

func (w wailsGeometry) Position() (int, int) { return runtime.WindowGetPosition(w.ctx) }
func (w wailsGeometry) Size() (int, int) { return runtime.WindowGetSize(w.ctx) }
func (w wailsGeometry) IsMaximised() bool { return runtime.WindowIsMaximised(w.ctx) }
func (w wailsGeometry) SetPosition(x, y int) { runtime.WindowSetPosition(w.ctx, x, y) }
func (w wailsGeometry) SetSize(width, height int) { runtime.WindowSetSize(w.ctx, width, height) }
func (w wailsGeometry) Maximise() { runtime.WindowMaximise(w.ctx) }
