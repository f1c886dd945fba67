package httpclient

import (
	"net/http"

	"codefendpanel/internal/plugin"
)

// CORSFetch backs the frontend fetch shim for cross-origin requests. Requests
// go through the native client, so browser CORS rules do not apply.
type CORSFetch struct {
	client *Client
}

// CORSPlugin registers the "cors-fetch" plugin. It shares c, including its
// context and limits, so it must be registered next to Plugin(c).
func CORSPlugin(c *Client) plugin.Plugin {
	return plugin.Plugin{Name: "cors-fetch", Service: &CORSFetch{client: c}}
}

// Fetch sends req without the webview's Origin and Referer headers
func (f *CORSFetch) Fetch(req Request) (*Response, error) {
	headers := make(map[string]string, len(req.Headers))
	for k, v := range req.Headers {
		switch http.CanonicalHeaderKey(k) {
		case "Origin", "Referer":
		default:
			headers[k] = v
		}
	}
	req.Headers = headers
	return f.client.Fetch(req)
}
