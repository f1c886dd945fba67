// Package httpclient performs HTTP requests on behalf of the webview.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codefendpanel/internal/logging"
	"codefendpanel/internal/plugin"
)

const maxTimeout = 5 * time.Minute

var (
	// ErrScheme is returned for URLs that are not http or https
	ErrScheme = errors.New("only http and https URLs are allowed")
	// ErrBodyTooLarge is returned when a response exceeds the configured limit
	ErrBodyTooLarge = errors.New("response body too large")
)

// Request is a fetch issued by the UI
type Request struct {
	Method    string            `json:"method"`
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers"`
	Body      string            `json:"body"`
	TimeoutMs int               `json:"timeoutMs"`
}

// Response is returned to the UI
type Response struct {
	Status     int               `json:"status"`
	StatusText string            `json:"statusText"`
	URL        string            `json:"url"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// Client is the HTTP passthrough service
type Client struct {
	ctx     context.Context
	client  *http.Client
	timeout time.Duration
	maxBody int64
}

// New creates a client with a default timeout and a response size limit
func New(timeout time.Duration, maxBody int64) *Client {
	return &Client{
		ctx:     context.Background(),
		client:  &http.Client{},
		timeout: timeout,
		maxBody: maxBody,
	}
}

// Plugin registers the client as the "http" plugin. In-flight requests are
// cancelled when the application stops.
func Plugin(c *Client) plugin.Plugin {
	var cancel context.CancelFunc
	return plugin.Plugin{
		Name:    "http",
		Service: c,
		Start: func(ctx context.Context) error {
			c.ctx, cancel = context.WithCancel(ctx)
			return nil
		},
		Stop: func(context.Context) {
			if cancel != nil {
				cancel()
			}
		},
	}
}

func (c *Client) requestTimeout(ms int) time.Duration {
	if ms <= 0 {
		return c.timeout
	}
	d := time.Duration(ms) * time.Millisecond
	if d > maxTimeout {
		return maxTimeout
	}
	return d
}

// Fetch performs a request and returns the whole response body
func (c *Client) Fetch(req Request) (*Response, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrScheme
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.requestTimeout(req.TimeoutMs))
	defer cancel()

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		logging.Warn("Fetch failed", "method", method, "host", u.Host, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, ErrBodyTooLarge
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[strings.ToLower(k)] = strings.Join(resp.Header.Values(k), ", ")
	}

	logging.Debug("Fetch completed", "method", method, "host", u.Host, "status", resp.StatusCode, "duration", time.Since(start))

	return &Response{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		URL:        resp.Request.URL.String(),
		Headers:    headers,
		Body:       string(data),
	}, nil
}
