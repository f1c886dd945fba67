package window

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

var (
	// ErrNoContext is returned when the Wails runtime context is not set yet
	ErrNoContext = errors.New("wails runtime context not available")
	// ErrUnsupportedLabel is returned for any window other than the main one
	ErrUnsupportedLabel = errors.New("only the main window is supported")
)

// Wails runtime hooks, replaced in tests
var (
	windowSetTitle    = runtime.WindowSetTitle
	windowSetSize     = runtime.WindowSetSize
	windowSetMinSize  = runtime.WindowSetMinSize
	windowGetSize     = runtime.WindowGetSize
	windowSetPosition = runtime.WindowSetPosition
	windowMaximise    = runtime.WindowMaximise
	windowShow        = runtime.WindowShow
	screenGetAll      = runtime.ScreenGetAll
)

// ApplyOptions copies the construction-time parts of a request onto the Wails
// application options. Wails v2 fixes decorations and transparency when the
// native window is created, so they cannot be changed from Build.
// The window starts hidden and is shown once Build materializes it.
func ApplyOptions(app *options.App, req Request) {
	app.Title = req.Title
	app.Width = req.Width
	app.Height = req.Height
	app.MinWidth = req.MinWidth
	app.MinHeight = req.MinHeight
	app.DisableResize = !req.Resizable
	app.Frameless = !req.Decorations
	app.StartHidden = true

	if req.Transparent {
		app.BackgroundColour = &options.RGBA{R: 0, G: 0, B: 0, A: 0}
		app.Windows = &windows.Options{
			WebviewIsTransparent: true,
			WindowIsTranslucent:  true,
		}
		app.Linux = &linux.Options{
			WindowIsTranslucent: true,
		}
		return
	}

	app.BackgroundColour = &options.RGBA{R: 27, G: 38, B: 54, A: 255}
	app.Mac = &mac.Options{
		TitleBar:             mac.TitleBarDefault(),
		WebviewIsTransparent: false,
		WindowIsTranslucent:  false,
	}
}

// WailsHost adapts the single Wails v2 window to the Host interface.
// The native window exists from wails.Run but counts as created only once
// Build has configured and shown it.
type WailsHost struct {
	ctx   context.Context
	mu    sync.Mutex
	built bool
}

// NewWailsHost creates a host bound to the Wails runtime context
func NewWailsHost(ctx context.Context) *WailsHost {
	return &WailsHost{ctx: ctx}
}

// Window returns the main window once it has been built
func (h *WailsHost) Window(label string) (Window, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if label != MainLabel || !h.built {
		return nil, false
	}
	return &wailsWindow{ctx: h.ctx}, true
}

// Build configures and shows the main window
func (h *WailsHost) Build(req Request) (Window, error) {
	if h.ctx == nil {
		return nil, ErrNoContext
	}
	if req.Label != MainLabel {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLabel, req.Label)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	windowSetTitle(h.ctx, req.Title)
	windowSetSize(h.ctx, req.Width, req.Height)
	if req.Maximized {
		windowMaximise(h.ctx)
	}
	windowShow(h.ctx)
	h.built = true

	return &wailsWindow{ctx: h.ctx}, nil
}

type wailsWindow struct {
	ctx context.Context
}

func (w *wailsWindow) SetMinSize(size Size) error {
	windowSetMinSize(w.ctx, size.Width, size.Height)
	return nil
}

// CurrentMonitor returns the screen Wails flags as current, falling back to
// the primary screen.
func (w *wailsWindow) CurrentMonitor() (*Monitor, error) {
	screens, err := screenGetAll(w.ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate screens: %w", err)
	}

	var primary *Monitor
	for i, s := range screens {
		m := &Monitor{
			Name:    fmt.Sprintf("screen-%d", i),
			Size:    Size{Width: s.Size.Width, Height: s.Size.Height},
			Primary: s.IsPrimary,
		}
		if s.IsCurrent {
			return m, nil
		}
		if s.IsPrimary && primary == nil {
			primary = m
		}
	}
	return primary, nil
}

func (w *wailsWindow) OuterSize() (Size, error) {
	width, height := windowGetSize(w.ctx)
	return Size{Width: width, Height: height}, nil
}

func (w *wailsWindow) SetPosition(pos Position) error {
	windowSetPosition(w.ctx, pos.X, pos.Y)
	return nil
}
