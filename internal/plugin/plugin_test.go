package plugin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
}

func (r *recorder) plugin(name string, startErr error) Plugin {
	return Plugin{
		Name:    name,
		Service: &struct{ name string }{name},
		Start: func(ctx context.Context) error {
			r.calls = append(r.calls, "start:"+name)
			return startErr
		},
		Stop: func(ctx context.Context) {
			r.calls = append(r.calls, "stop:"+name)
		},
		OnWindowReady: func(ctx context.Context) {
			r.calls = append(r.calls, "ready:"+name)
		},
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(Plugin{Name: "store"}, Plugin{Name: "store"})
	assert.Error(t, err)

	_, err = NewRegistry(Plugin{})
	assert.Error(t, err)
}

func TestRegistryLifecycleOrder(t *testing.T) {
	rec := &recorder{}
	reg, err := NewRegistry(rec.plugin("fs", nil), rec.plugin("store", nil), rec.plugin("updater", nil))
	require.NoError(t, err)

	ctx := context.Background()
	reg.Start(ctx)
	reg.WindowReady(ctx)
	reg.Stop(ctx)

	assert.Equal(t, []string{
		"start:fs", "start:store", "start:updater",
		"ready:fs", "ready:store", "ready:updater",
		"stop:updater", "stop:store", "stop:fs",
	}, rec.calls)
}

func TestRegistrySkipsFailedPlugins(t *testing.T) {
	rec := &recorder{}
	reg, err := NewRegistry(rec.plugin("fs", nil), rec.plugin("notification", errors.New("no dbus")))
	require.NoError(t, err)

	ctx := context.Background()
	reg.Start(ctx)
	reg.WindowReady(ctx)
	reg.Stop(ctx)

	assert.Equal(t, []string{
		"start:fs", "start:notification",
		"ready:fs",
		"stop:fs",
	}, rec.calls)
}

func TestRegistryBindings(t *testing.T) {
	rec := &recorder{}
	reg, err := NewRegistry(rec.plugin("fs", nil), Plugin{Name: "devtools"}, rec.plugin("store", nil))
	require.NoError(t, err)

	assert.Len(t, reg.Bindings(), 2)
	assert.Equal(t, []string{"fs", "devtools", "store"}, reg.Names())
}
