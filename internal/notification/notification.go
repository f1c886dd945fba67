// Package notification sends desktop notifications on behalf of the UI.
package notification

import (
	"errors"
	"strings"
	"sync"

	"codefendpanel/internal/logging"
	"codefendpanel/internal/plugin"

	"github.com/gen2brain/beeep"
	"github.com/google/uuid"
)

const (
	appName = "Codefend Panel"

	maxBodyLength = 240

	PermissionGranted = "granted"
	PermissionDenied  = "denied"
)

// ErrPermissionDenied is returned when notifications are disabled
var ErrPermissionDenied = errors.New("notification permission denied")

// ErrEmpty is returned for notifications with neither title nor body
var ErrEmpty = errors.New("notification has no title or body")

// Options is a notification sent from the UI
type Options struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon,omitempty"`
}

// Notifier delivers notifications through the OS notification center
type Notifier struct {
	enabled bool
	mu      sync.RWMutex
	send    func(title, message, icon string) error
}

// New creates a notifier. enabled seeds the permission state.
func New(enabled bool) *Notifier {
	return &Notifier{enabled: enabled, send: beeep.Notify}
}

// Plugin registers the notifier as the "notification" plugin
func Plugin(n *Notifier) plugin.Plugin {
	return plugin.Plugin{Name: "notification", Service: n}
}

// IsPermissionGranted reports whether notifications will be shown
func (n *Notifier) IsPermissionGranted() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

// RequestPermission returns the current permission state. The desktop
// notification centers used here grant permission per application, so the
// configured state is the answer.
func (n *Notifier) RequestPermission() string {
	if n.IsPermissionGranted() {
		return PermissionGranted
	}
	return PermissionDenied
}

// SetEnabled toggles notifications at runtime
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	n.enabled = enabled
	n.mu.Unlock()
}

// Send shows a notification and returns its id
func (n *Notifier) Send(opts Options) (string, error) {
	if !n.IsPermissionGranted() {
		return "", ErrPermissionDenied
	}

	title := strings.TrimSpace(opts.Title)
	body := strings.TrimSpace(opts.Body)
	if title == "" && body == "" {
		return "", ErrEmpty
	}
	if title == "" {
		title = appName
	}
	if r := []rune(body); len(r) > maxBodyLength {
		body = string(r[:maxBodyLength]) + "..."
	}

	id := uuid.NewString()
	if err := n.send(title, body, opts.Icon); err != nil {
		logging.Warn("Notification delivery failed", "id", id, "error", err)
		return "", err
	}

	logging.Debug("Notification sent", "id", id, "title", title)
	return id, nil
}
