// Package plugin holds the fixed list of host plugins wired at startup.
package plugin

import (
	"context"
	"fmt"

	"codefendpanel/internal/logging"
)

// Plugin describes one host plugin. Service is bound to the UI as-is, so
// lifecycle hooks live here rather than as methods on the service.
type Plugin struct {
	Name    string
	Service interface{}

	Start         func(ctx context.Context) error
	Stop          func(ctx context.Context)
	OnWindowReady func(ctx context.Context)
}

// Registry runs plugin lifecycles in registration order
type Registry struct {
	plugins []Plugin
	started []Plugin
}

// NewRegistry validates the plugin list. Names must be unique and non-empty.
func NewRegistry(plugins ...Plugin) (*Registry, error) {
	seen := make(map[string]bool, len(plugins))
	for _, p := range plugins {
		if p.Name == "" {
			return nil, fmt.Errorf("plugin without a name")
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("plugin %q registered twice", p.Name)
		}
		seen[p.Name] = true
	}
	return &Registry{plugins: plugins}, nil
}

// Names returns plugin names in registration order
func (r *Registry) Names() []string {
	names := make([]string, len(r.plugins))
	for i, p := range r.plugins {
		names[i] = p.Name
	}
	return names
}

// Bindings returns the services exposed to the UI
func (r *Registry) Bindings() []interface{} {
	var out []interface{}
	for _, p := range r.plugins {
		if p.Service != nil {
			out = append(out, p.Service)
		}
	}
	return out
}

// Start runs each plugin's start hook. A failing plugin is logged and left
// out of the rest of the lifecycle; the application keeps running without it.
func (r *Registry) Start(ctx context.Context) {
	r.started = r.started[:0]
	for _, p := range r.plugins {
		if p.Start != nil {
			if err := p.Start(ctx); err != nil {
				logging.Error("Plugin failed to start", "plugin", p.Name, "error", err)
				continue
			}
		}
		r.started = append(r.started, p)
		logging.Debug("Plugin started", "plugin", p.Name)
	}
	logging.Info("Plugins registered", "count", len(r.started), "total", len(r.plugins))
}

// WindowReady notifies started plugins that the main window is placed
func (r *Registry) WindowReady(ctx context.Context) {
	for _, p := range r.started {
		if p.OnWindowReady != nil {
			p.OnWindowReady(ctx)
		}
	}
}

// Stop runs stop hooks of started plugins in reverse order
func (r *Registry) Stop(ctx context.Context) {
	for i := len(r.started) - 1; i >= 0; i-- {
		p := r.started[i]
		if p.Stop != nil {
			p.Stop(ctx)
		}
	}
	r.started = nil
}
