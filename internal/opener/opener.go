// Package opener opens URLs and files with the default OS handler.
package opener

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"codefendpanel/internal/logging"
	"codefendpanel/internal/plugin"

	"github.com/pkg/browser"
)

// ErrScheme is returned for URLs with a scheme the UI may not open
var ErrScheme = errors.New("url scheme not allowed")

var allowedSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
	"tel":    true,
}

// Opener hands URLs and paths to the OS
type Opener struct {
	openURL  func(string) error
	openFile func(string) error
}

// New creates an opener backed by github.com/pkg/browser
func New() *Opener {
	return &Opener{openURL: browser.OpenURL, openFile: browser.OpenFile}
}

// Plugin registers the opener as the "opener" plugin
func Plugin(o *Opener) plugin.Plugin {
	return plugin.Plugin{Name: "opener", Service: o}
}

// OpenURL opens a web or mail link in the default application
func (o *Opener) OpenURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if !allowedSchemes[strings.ToLower(u.Scheme)] {
		return fmt.Errorf("%w: %q", ErrScheme, u.Scheme)
	}

	logging.Info("Opening URL", "scheme", u.Scheme, "host", u.Host)
	return o.openURL(u.String())
}

// OpenPath opens a local file or directory with its default application
func (o *Opener) OpenPath(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	logging.Info("Opening path", "path", logging.MaskPath(path))
	return o.openFile(path)
}
