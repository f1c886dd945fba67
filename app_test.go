package main

import (
	"context"
	"errors"
	"sync"
	"testing"

	"codefendpanel/internal/platform"
	"codefendpanel/internal/plugin"
	"codefendpanel/internal/window"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWindow struct {
	placed   bool
	position window.Position
	posErr   error
}

func (w *stubWindow) SetMinSize(window.Size) error { return nil }

func (w *stubWindow) CurrentMonitor() (*window.Monitor, error) {
	return &window.Monitor{Name: "main", Size: window.Size{Width: 1920, Height: 1080}}, nil
}

func (w *stubWindow) OuterSize() (window.Size, error) {
	return window.Size{Width: 800, Height: 600}, nil
}

func (w *stubWindow) SetPosition(pos window.Position) error {
	if w.posErr != nil {
		return w.posErr
	}
	w.placed = true
	w.position = pos
	return nil
}

type stubHost struct {
	win      *stubWindow
	built    bool
	builds   int
	buildErr error
}

func (h *stubHost) Window(label string) (window.Window, bool) {
	if !h.built || label != window.MainLabel {
		return nil, false
	}
	return h.win, true
}

func (h *stubHost) Build(window.Request) (window.Window, error) {
	h.builds++
	if h.buildErr != nil {
		return nil, h.buildErr
	}
	h.built = true
	return h.win, nil
}

type harness struct {
	app      *App
	host     *stubHost
	order    []string
	reported []error
	exits    []int
}

func newHarness(t *testing.T, class platform.Class) *harness {
	t.Helper()
	h := &harness{host: &stubHost{win: &stubWindow{}}}

	registry, err := plugin.NewRegistry(plugin.Plugin{
		Name: "recorder",
		OnWindowReady: func(context.Context) {
			h.order = append(h.order, "plugin-ready")
		},
	})
	require.NoError(t, err)

	h.app = NewApp(class, registry)
	h.app.newHost = func(context.Context) window.Host { return h.host }
	h.app.emit = func(_ context.Context, name string, _ ...interface{}) {
		if !h.host.win.placed {
			h.order = append(h.order, name+" before placement")
			return
		}
		h.order = append(h.order, name)
	}
	h.app.report = func(err error) { h.reported = append(h.reported, err) }
	h.app.exit = func(code int) { h.exits = append(h.exits, code) }
	return h
}

func TestGreet(t *testing.T) {
	app := NewApp(platform.Desktop, nil)

	assert.Equal(t, "Hello, Ana! You've been greeted from Go!", app.Greet("Ana"))
	assert.Equal(t, "Hello, ! You've been greeted from Go!", app.Greet(""))
}

func TestStartupEmitsReadyAfterPlacement(t *testing.T) {
	for _, class := range []platform.Class{platform.Desktop, platform.MacOS} {
		t.Run(class.String(), func(t *testing.T) {
			h := newHarness(t, class)

			h.app.startup(context.Background())

			assert.Equal(t, []string{WindowReadyEvent, "plugin-ready"}, h.order)
			assert.Equal(t, window.Position{X: 560, Y: 240}, h.host.win.position)
			assert.Empty(t, h.exits)
		})
	}
}

func TestReadyEmittedOnce(t *testing.T) {
	h := newHarness(t, platform.Desktop)

	h.app.startup(context.Background())
	require.NoError(t, h.app.CreateMainWindow())
	require.NoError(t, h.app.CreateMainWindow())

	assert.Equal(t, 1, h.host.builds)
	assert.Equal(t, []string{WindowReadyEvent, "plugin-ready"}, h.order)
}

func TestCreateMainWindowConcurrent(t *testing.T) {
	h := newHarness(t, platform.Desktop)
	h.app.ctx = context.Background()
	h.app.host = h.host

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, h.app.CreateMainWindow())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, h.host.builds)
	assert.Equal(t, []string{WindowReadyEvent, "plugin-ready"}, h.order)
}

func TestDomReadyRepeatsReadyEvent(t *testing.T) {
	h := newHarness(t, platform.Desktop)

	h.app.domReady(context.Background())
	assert.Empty(t, h.order)

	h.app.startup(context.Background())
	h.app.domReady(context.Background())

	assert.Equal(t, []string{WindowReadyEvent, "plugin-ready", WindowReadyEvent}, h.order)
}

func TestStartupSkipsWindowOnMobile(t *testing.T) {
	h := newHarness(t, platform.Mobile)

	h.app.startup(context.Background())

	assert.Zero(t, h.host.builds)
	assert.Empty(t, h.order)
	assert.Empty(t, h.exits)
}

func TestStartupPlacementFailureIsFatal(t *testing.T) {
	h := newHarness(t, platform.Desktop)
	h.host.win.posErr = errors.New("compositor refused")

	h.app.startup(context.Background())

	assert.Equal(t, []int{1}, h.exits)
	require.Len(t, h.reported, 1)
	var pe *window.PlacementError
	assert.ErrorAs(t, h.reported[0], &pe)
	assert.Empty(t, h.order)
}

func TestStartupBuildFailurePanics(t *testing.T) {
	h := newHarness(t, platform.Desktop)
	h.host.buildErr = errors.New("no display")

	assert.PanicsWithValue(t, &window.BuildError{Label: window.MainLabel, Err: h.host.buildErr}, func() {
		h.app.startup(context.Background())
	})
	require.Len(t, h.reported, 1)
	assert.Empty(t, h.order)
}

func TestCreateMainWindowBeforeStartup(t *testing.T) {
	h := newHarness(t, platform.Desktop)

	assert.ErrorIs(t, h.app.CreateMainWindow(), errNotStarted)
}
