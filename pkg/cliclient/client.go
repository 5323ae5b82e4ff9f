// Package cliclient is the CLI front-end's transport: it resolves a named
// instance's port through the Registry and issues HTTP requests against
// its daemon.
package cliclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/entrhq/br/pkg/registry"
)

// ErrDaemonNotRunning is returned by Resolve when the named instance has
// no live registry entry.
var ErrDaemonNotRunning = errors.New("daemon is not running")

// Client issues requests against one named daemon instance.
type Client struct {
	Name    string
	Port    int
	httpC   *http.Client
}

// Resolve looks up name in the shared registry and returns a Client bound
// to its port, or ErrDaemonNotRunning.
func Resolve(name string) (*Client, error) {
	reg, err := registry.New("")
	if err != nil {
		return nil, err
	}
	entry, ok, err := reg.Lookup(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDaemonNotRunning
	}
	return &Client{Name: name, Port: entry.Port, httpC: &http.Client{Timeout: 35 * time.Second}}, nil
}

// Response is a decoded daemon response: the raw body plus the HTTP
// status code, since several endpoints return 200 with a false/failed
// result rather than a non-2xx status.
type Response struct {
	StatusCode int
	Body       []byte
}

// JSON unmarshals the response body into dst.
func (r *Response) JSON(dst interface{}) error {
	return json.Unmarshal(r.Body, dst)
}

func (r *Response) String() string { return string(r.Body) }

func (c *Client) url(path string, query url.Values) string {
	u := fmt.Sprintf("http://localhost:%d%s", c.Port, path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Get issues a GET request.
func (c *Client) Get(path string, query url.Values) (*Response, error) {
	resp, err := c.httpC.Get(c.url(path, query))
	if err != nil {
		return nil, fmt.Errorf("request to daemon failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read daemon response: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// Post issues a POST request with body marshaled as JSON.
func (c *Client) Post(path string, body interface{}) (*Response, error) {
	if body == nil {
		body = map[string]interface{}{}
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	resp, err := c.httpC.Post(c.url(path, nil), "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("request to daemon failed: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read daemon response: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}
