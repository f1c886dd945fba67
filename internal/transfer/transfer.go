// Package transfer uploads and downloads files between scoped paths and URLs,
// reporting progress to the UI.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"codefendpanel/internal/logging"
	"codefendpanel/internal/plugin"

	"github.com/google/uuid"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// ProgressEvent carries transfer progress
const ProgressEvent = "transfer:progress"

const chunkSize = 64 * 1024

// ErrScheme is returned for URLs that are not http or https
var ErrScheme = errors.New("only http and https URLs are allowed")

// Resolver maps a UI supplied path to a real path inside the allowed scope
type Resolver interface {
	Resolve(path string) (string, error)
}

// Progress is the payload of ProgressEvent
type Progress struct {
	ID       string `json:"id"`
	Progress int64  `json:"progress"`
	Total    int64  `json:"total"`
}

// Response is returned by Upload
type Response struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// Transfer is the upload/download service
type Transfer struct {
	ctx    context.Context
	scope  Resolver
	client *http.Client
	emit   func(ctx context.Context, name string, data ...interface{})
}

// New creates a transfer service limited to scope
func New(scope Resolver) *Transfer {
	return &Transfer{
		scope:  scope,
		client: &http.Client{},
		emit:   runtime.EventsEmit,
	}
}

// Plugin registers the service as the "upload" plugin
func Plugin(t *Transfer) plugin.Plugin {
	return plugin.Plugin{
		Name:    "upload",
		Service: t,
		Start: func(ctx context.Context) error {
			t.ctx = ctx
			return nil
		},
	}
}

func (t *Transfer) context() context.Context {
	if t.ctx == nil {
		return context.Background()
	}
	return t.ctx
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrScheme
	}
	return nil
}

// progressReader reports every read as a ProgressEvent
type progressReader struct {
	r     io.Reader
	t     *Transfer
	id    string
	done  int64
	total int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.done += int64(n)
		if p.t.ctx != nil {
			p.t.emit(p.t.ctx, ProgressEvent, Progress{ID: p.id, Progress: p.done, Total: p.total})
		}
	}
	return n, err
}

// Upload sends the file at path as the request body. Method defaults to POST.
// The returned id matches the id of the progress events.
func (t *Transfer) Upload(id, rawURL, path, method string, headers map[string]string) (*Response, error) {
	if err := checkURL(rawURL); err != nil {
		return nil, err
	}
	p, err := t.scope.Resolve(path)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = uuid.NewString()
	}
	if method == "" {
		method = http.MethodPost
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	body := &progressReader{r: f, t: t, id: id, total: info.Size()}
	req, err := http.NewRequestWithContext(t.context(), strings.ToUpper(method), rawURL, body)
	if err != nil {
		return nil, err
	}
	req.ContentLength = info.Size()
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	logging.Info("Upload finished", "id", id, "status", resp.StatusCode, "bytes", info.Size())
	return &Response{Status: resp.StatusCode, Body: string(data)}, nil
}

// Download writes the body of a GET request to path. The file only appears
// once the whole body has been received.
func (t *Transfer) Download(id, rawURL, path string, headers map[string]string) error {
	if err := checkURL(rawURL); err != nil {
		return err
	}
	p, err := t.scope.Resolve(path)
	if err != nil {
		return err
	}
	if id == "" {
		id = uuid.NewString()
	}

	req, err := http.NewRequestWithContext(t.context(), http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("download: unexpected status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	src := &progressReader{r: resp.Body, t: t, id: id, total: resp.ContentLength}
	n, err := io.CopyBuffer(tmp, src, make([]byte, chunkSize))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return err
	}

	logging.Info("Download finished", "id", id, "bytes", n, "path", logging.MaskPath(p))
	return nil
}
