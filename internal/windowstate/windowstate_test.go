package windowstate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeometry struct {
	x, y          int
	width, height int
	maximized     bool
	setPosCalls   int
	setSizeCalls  int
}

func (g *fakeGeometry) Position() (int, int) { return g.x, g.y }
func (g *fakeGeometry) Size() (int, int) { return g.width, g.height }
func (g *fakeGeometry) IsMaximised() bool { return g.maximized }
func (g *fakeGeometry) SetPosition(x, y int) {
	g.x, g.y = x, y
	g.setPosCalls++
}
func (g *fakeGeometry) SetSize(width, height int) {
	g.width, g.height = width, height
	g.setSizeCalls++
}
func (g *fakeGeometry) Maximise() { g.maximized = true }

func TestLoadMissingFile(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.Load())
	assert.Nil(t, m.Saved())
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, stateFile), []byte("{"), 0644))

	m := NewManager(dir)
	require.NoError(t, m.Load())
	assert.Nil(t, m.Saved())
}

func TestSaveAndRestore(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	live := &fakeGeometry{x: 120, y: 80, width: 1024, height: 768}
	require.NoError(t, m.Save(live))

	next := NewManager(dir)
	require.NoError(t, next.Load())
	require.Equal(t, &State{X: 120, Y: 80, Width: 1024, Height: 768}, next.Saved())

	restored := &fakeGeometry{}
	next.Restore(restored)
	assert.Equal(t, 120, restored.x)
	assert.Equal(t, 80, restored.y)
	assert.Equal(t, 1024, restored.width)
	assert.Equal(t, 768, restored.height)
	assert.False(t, restored.maximized)
}

func TestSaveWhileMaximizedKeepsPreviousGeometry(t *testing.T) {
	m := NewManager(t.TempDir())

	require.NoError(t, m.Save(&fakeGeometry{x: 10, y: 20, width: 900, height: 700}))
	require.NoError(t, m.Save(&fakeGeometry{x: 0, y: 0, width: 2560, height: 1440, maximized: true}))

	saved := m.Saved()
	require.NotNil(t, saved)
	assert.True(t, saved.Maximized)
	assert.Equal(t, 10, saved.X)
	assert.Equal(t, 900, saved.Width)
}

func TestRestoreMaximized(t *testing.T) {
	m := NewManager(t.TempDir())
	m.saved = &State{X: 10, Y: 10, Width: 900, Height: 700, Maximized: true}

	g := &fakeGeometry{}
	m.Restore(g)

	assert.True(t, g.maximized)
	assert.Zero(t, g.setPosCalls)
	assert.Zero(t, g.setSizeCalls)
}

func TestRestoreSkipsInvalidValues(t *testing.T) {
	tests := []struct {
		name         string
		state        State
		wantPosCalls int
		wantSizeCall int
	}{
		{"position out of bounds", State{X: 20000, Y: 0, Width: 900, Height: 700}, 0, 1},
		{"size too small", State{X: 0, Y: 0, Width: 100, Height: 100}, 1, 0},
		{"negative monitor", State{X: -1920, Y: 0, Width: 900, Height: 700}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(t.TempDir())
			s := tt.state
			m.saved = &s

			g := &fakeGeometry{}
			m.Restore(g)
			assert.Equal(t, tt.wantPosCalls, g.setPosCalls)
			assert.Equal(t, tt.wantSizeCall, g.setSizeCalls)
		})
	}
}

func TestRestoreWithoutState(t *testing.T) {
	m := NewManager(t.TempDir())
	g := &fakeGeometry{}
	m.Restore(g)
	assert.Zero(t, g.setPosCalls)
	assert.Zero(t, g.setSizeCalls)
}
