// Package updater checks for, downloads and verifies signed application updates.
package updater

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"codefendpanel/internal/logging"
	"codefendpanel/internal/plugin"

	"github.com/wailsapp/wails/v2/pkg/runtime"
	"golang.org/x/mod/semver"
)

const (
	// ProgressEvent carries download progress to the UI
	ProgressEvent = "updater:progress"
	// FinishedEvent is emitted once a download is verified
	FinishedEvent = "updater:finished"

	chunkSize   = 32 * 1024
	maxManifest = 1 << 20
)

var (
	// ErrNoUpdate is returned when there is nothing to download
	ErrNoUpdate = errors.New("no update available")
	// ErrNoEndpoints is returned when no update endpoint is configured
	ErrNoEndpoints = errors.New("no update endpoints configured")
)

// Options configures the updater
type Options struct {
	Endpoints      []string
	Pubkey         string
	Timeout        time.Duration
	CurrentVersion string
	// Target is the manifest platform key, e.g. "linux-x86_64"
	Target string
	Arch   string
	// DownloadDir receives verified artifacts
	DownloadDir string
}

// Asset is one platform entry of a manifest
type Asset struct {
	URL       string `json:"url"`
	Signature string `json:"signature"`
}

// Manifest is the document served by an update endpoint
type Manifest struct {
	Version   string           `json:"version"`
	Notes     string           `json:"notes"`
	PubDate   string           `json:"pub_date"`
	Platforms map[string]Asset `json:"platforms"`
}

// Update describes the result of a check
type Update struct {
	Available      bool   `json:"available"`
	CurrentVersion string `json:"currentVersion"`
	Version        string `json:"version"`
	Notes          string `json:"notes"`
	PubDate        string `json:"pubDate"`
	URL            string `json:"url"`
	Signature      string `json:"-"`
}

// Progress is the payload of ProgressEvent
type Progress struct {
	ChunkLength   int   `json:"chunkLength"`
	ContentLength int64 `json:"contentLength"`
	Downloaded    int64 `json:"downloaded"`
}

// Updater is the update service bound to the UI
type Updater struct {
	ctx      context.Context
	opts     Options
	client   *http.Client
	download *http.Client

	emit    func(ctx context.Context, name string, data ...interface{})
	install func(path string) error

	mu      sync.Mutex
	pending *Update
}

// New creates an updater. install opens a verified artifact.
func New(opts Options, install func(path string) error) *Updater {
	return &Updater{
		opts:     opts,
		client:   &http.Client{Timeout: opts.Timeout},
		download: &http.Client{},
		emit:     runtime.EventsEmit,
		install:  install,
	}
}

// Plugin registers the updater as the "updater" plugin
func Plugin(u *Updater) plugin.Plugin {
	return plugin.Plugin{
		Name:    "updater",
		Service: u,
		Start: func(ctx context.Context) error {
			if _, err := ParsePublicKey(u.opts.Pubkey); err != nil {
				return fmt.Errorf("updater public key: %w", err)
			}
			u.ctx = ctx
			return nil
		},
	}
}

func (u *Updater) context() context.Context {
	if u.ctx == nil {
		return context.Background()
	}
	return u.ctx
}

// emitEvent is a no-op until the plugin has started with a Wails context
func (u *Updater) emitEvent(name string, data interface{}) {
	if u.ctx == nil {
		return
	}
	u.emit(u.ctx, name, data)
}

// CurrentVersion returns the running version
func (u *Updater) CurrentVersion() string {
	return u.opts.CurrentVersion
}

func (u *Updater) endpointURL(endpoint string) string {
	return strings.NewReplacer(
		"{{target}}", u.opts.Target,
		"{{arch}}", u.opts.Arch,
		"{{current_version}}", u.opts.CurrentVersion,
	).Replace(endpoint)
}

func canonical(v string) string {
	return "v" + strings.TrimPrefix(strings.TrimSpace(v), "v")
}

// Newer reports whether candidate is a higher semantic version than current
func Newer(candidate, current string) (bool, error) {
	c, cur := canonical(candidate), canonical(current)
	if !semver.IsValid(c) {
		return false, fmt.Errorf("invalid version %q", candidate)
	}
	if !semver.IsValid(cur) {
		return false, fmt.Errorf("invalid current version %q", current)
	}
	return semver.Compare(c, cur) > 0, nil
}

func (u *Updater) fetchManifest(ctx context.Context, endpoint string) (*Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.endpointURL(endpoint), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, ErrNoUpdate
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var m Manifest
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxManifest)).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// Check queries the endpoints in order and returns the first usable answer
func (u *Updater) Check() (*Update, error) {
	if len(u.opts.Endpoints) == 0 {
		return nil, ErrNoEndpoints
	}

	var errs []error
	for _, endpoint := range u.opts.Endpoints {
		m, err := u.fetchManifest(u.context(), endpoint)
		if errors.Is(err, ErrNoUpdate) {
			return u.remember(&Update{CurrentVersion: u.opts.CurrentVersion}), nil
		}
		if err != nil {
			logging.Warn("Update endpoint failed", "endpoint", endpoint, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", endpoint, err))
			continue
		}

		newer, err := Newer(m.Version, u.opts.CurrentVersion)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", endpoint, err))
			continue
		}
		if !newer {
			return u.remember(&Update{CurrentVersion: u.opts.CurrentVersion, Version: m.Version}), nil
		}

		asset, ok := m.Platforms[u.opts.Target]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: no artifact for %s", endpoint, u.opts.Target))
			continue
		}

		logging.Info("Update available", "current", u.opts.CurrentVersion, "version", m.Version)
		return u.remember(&Update{
			Available:      true,
			CurrentVersion: u.opts.CurrentVersion,
			Version:        m.Version,
			Notes:          m.Notes,
			PubDate:        m.PubDate,
			URL:            asset.URL,
			Signature:      asset.Signature,
		}), nil
	}
	return nil, errors.Join(errs...)
}

func (u *Updater) remember(up *Update) *Update {
	u.mu.Lock()
	defer u.mu.Unlock()
	if up.Available {
		u.pending = up
	} else {
		u.pending = nil
	}
	return up
}

// Download fetches the pending update, verifies its signature and writes it
// to the download directory. It returns the artifact path.
func (u *Updater) Download() (string, error) {
	u.mu.Lock()
	up := u.pending
	u.mu.Unlock()
	if up == nil {
		return "", ErrNoUpdate
	}

	pk, err := ParsePublicKey(u.opts.Pubkey)
	if err != nil {
		return "", fmt.Errorf("updater public key: %w", err)
	}
	sig, err := ParseSignature(up.Signature)
	if err != nil {
		return "", fmt.Errorf("update signature: %w", err)
	}

	data, err := u.fetchArtifact(up.URL)
	if err != nil {
		return "", err
	}
	if err := verify(pk, data, sig); err != nil {
		logging.Error("Update rejected", "version", up.Version, "error", err)
		return "", err
	}

	if err := os.MkdirAll(u.opts.DownloadDir, 0755); err != nil {
		return "", err
	}
	dest := filepath.Join(u.opts.DownloadDir, artifactName(up))
	if err := os.WriteFile(dest, data, 0755); err != nil {
		return "", err
	}

	u.emitEvent(FinishedEvent, up)
	logging.Info("Update downloaded", "version", up.Version, "path", logging.MaskPath(dest))
	return dest, nil
}

// DownloadAndInstall downloads the pending update and hands it to the installer
func (u *Updater) DownloadAndInstall() error {
	dest, err := u.Download()
	if err != nil {
		return err
	}
	if u.install == nil {
		return nil
	}
	return u.install(dest)
}

func artifactName(up *Update) string {
	name := ""
	if i := strings.IndexAny(up.URL, "?#"); i >= 0 {
		name = path.Base(up.URL[:i])
	} else {
		name = path.Base(up.URL)
	}
	if name == "" || name == "." || name == "/" {
		name = "codefend-panel-" + up.Version
	}
	return name
}

func (u *Updater) fetchArtifact(url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(u.context(), http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := u.download.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: unexpected status %d", resp.StatusCode)
	}

	var data []byte
	if resp.ContentLength > 0 {
		data = make([]byte, 0, resp.ContentLength)
	}
	buf := make([]byte, chunkSize)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
			u.emitEvent(ProgressEvent, Progress{
				ChunkLength:   n,
				ContentLength: resp.ContentLength,
				Downloaded:    int64(len(data)),
			})
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("download: %w", err)
		}
	}
	return data, nil
}
