// Package store provides named JSON key-value stores for the UI.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"codefendpanel/internal/logging"
	"codefendpanel/internal/plugin"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// DefaultSaveDelay debounces writes after a change
const DefaultSaveDelay = 500 * time.Millisecond

// ChangedEvent is emitted to the UI after every mutation
const ChangedEvent = "store:changed"

// ErrInvalidName is returned for store names that are not plain file names
var ErrInvalidName = errors.New("invalid store name")

type kvStore struct {
	path      string
	data      map[string]interface{}
	saveTimer *time.Timer
}

// Manager owns all stores under one directory
type Manager struct {
	ctx       context.Context
	dir       string
	saveDelay time.Duration
	stores    map[string]*kvStore
	mu        sync.RWMutex
	saveMu    sync.Mutex
}

// NewManager creates a store manager rooted at dir
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Manager{
		dir:       dir,
		saveDelay: DefaultSaveDelay,
		stores:    make(map[string]*kvStore),
	}, nil
}

// Plugin registers the manager as the "store" plugin. Stores are flushed on stop.
func Plugin(m *Manager) plugin.Plugin {
	return plugin.Plugin{
		Name:    "store",
		Service: m,
		Start: func(ctx context.Context) error {
			m.ctx = ctx
			return nil
		},
		Stop: func(ctx context.Context) {
			if err := m.SaveAll(); err != nil {
				logging.Error("Failed to flush stores", "error", err)
			}
		},
	}
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// open returns the named store, loading it from disk on first use.
// Callers must hold m.mu for writing.
func (m *Manager) open(name string) (*kvStore, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if s, ok := m.stores[name]; ok {
		return s, nil
	}

	s := &kvStore{
		path: filepath.Join(m.dir, name+".json"),
		data: make(map[string]interface{}),
	}

	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &s.data); err != nil {
			logging.Warn("Store file is corrupt, starting empty", "store", name, "error", err)
			s.data = make(map[string]interface{})
		}
	case !os.IsNotExist(err):
		return nil, err
	}
	if s.data == nil {
		s.data = make(map[string]interface{})
	}

	m.stores[name] = s
	return s, nil
}

// Get returns the value for key, or nil when it is absent
func (m *Manager) Get(name, key string) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.open(name)
	if err != nil {
		return nil, err
	}
	return s.data[key], nil
}

// Has reports whether key is present
func (m *Manager) Has(name, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.open(name)
	if err != nil {
		return false, err
	}
	_, ok := s.data[key]
	return ok, nil
}

// Set stores a JSON value under key
func (m *Manager) Set(name, key string, value interface{}) error {
	m.mu.Lock()
	s, err := m.open(name)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	s.data[key] = value
	m.mu.Unlock()

	m.changed(name, key, value)
	return nil
}

// Delete removes key and reports whether it existed
func (m *Manager) Delete(name, key string) (bool, error) {
	m.mu.Lock()
	s, err := m.open(name)
	if err != nil {
		m.mu.Unlock()
		return false, err
	}
	_, existed := s.data[key]
	delete(s.data, key)
	m.mu.Unlock()

	if existed {
		m.changed(name, key, nil)
	}
	return existed, nil
}

// Keys returns the sorted keys of a store
func (m *Manager) Keys(name string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.open(name)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Entries returns a copy of all key-value pairs
func (m *Manager) Entries(name string) (map[string]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.open(name)
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out, nil
}

// Clear removes every key from a store
func (m *Manager) Clear(name string) error {
	m.mu.Lock()
	s, err := m.open(name)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	s.data = make(map[string]interface{})
	m.mu.Unlock()

	m.changed(name, "", nil)
	return nil
}

func (m *Manager) changed(name, key string, value interface{}) {
	m.scheduleSave(name)

	if m.ctx != nil {
		runtime.EventsEmit(m.ctx, ChangedEvent, map[string]interface{}{
			"store": name,
			"key":   key,
			"value": value,
		})
	}
}

// scheduleSave triggers a debounced save of one store
func (m *Manager) scheduleSave(name string) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.mu.RLock()
	s := m.stores[name]
	m.mu.RUnlock()
	if s == nil {
		return
	}

	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	s.saveTimer = time.AfterFunc(m.saveDelay, func() {
		if err := m.saveImmediate(name); err != nil {
			logging.Error("Failed to save store", "store", name, "error", err)
		}
	})
}

// Save writes one store to disk now
func (m *Manager) Save(name string) error {
	m.saveMu.Lock()
	m.mu.RLock()
	s := m.stores[name]
	m.mu.RUnlock()
	if s != nil && s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	m.saveMu.Unlock()

	return m.saveImmediate(name)
}

// SaveAll writes every loaded store to disk (for shutdown)
func (m *Manager) SaveAll() error {
	m.mu.RLock()
	names := make([]string, 0, len(m.stores))
	for name := range m.stores {
		names = append(names, name)
	}
	m.mu.RUnlock()

	var errs []error
	for _, name := range names {
		if err := m.Save(name); err != nil {
			errs = append(errs, fmt.Errorf("store %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) saveImmediate(name string) error {
	m.mu.RLock()
	s, ok := m.stores[name]
	if !ok {
		m.mu.RUnlock()
		if !validName(name) {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
		return nil
	}
	data, err := json.MarshalIndent(s.data, "", "  ")
	path := s.path
	m.mu.RUnlock()

	if err != nil {
		return err
	}

	// Atomic replace
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
