package caldav

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/emersion/go-webdav"
)

// MethodReport is the WebDAV REPORT verb.
const MethodReport = "REPORT"

// Precondition guards a write. Empty fields send no header.
type Precondition struct {
	IfMatch     string
	IfNoneMatch string
}

// Client issues CalDAV requests relative to the DAV root of one server.
// Paths may be relative to that root or absolute hrefs taken from a
// multistatus response.
type Client struct {
	http    webdav.HTTPClient
	baseURL *url.URL
	logger  *slog.Logger
}

// NewClient returns a client for the DAV root at endpoint.
func NewClient(c webdav.HTTPClient, endpoint string, logger *slog.Logger) (*Client, error) {
	if c == nil {
		c = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing DAV endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("DAV endpoint %q must be an http or https URL", endpoint)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return &Client{http: c, baseURL: u, logger: logger}, nil
}

// Endpoint returns the DAV root URL.
func (c *Client) Endpoint() string {
	return c.baseURL.String()
}

// Report sends a calendar-query REPORT with Depth 1 to a collection and
// returns the raw multistatus body.
func (c *Client) Report(ctx context.Context, collection, query string) (string, error) {
	header := http.Header{}
	header.Set("Content-Type", "application/xml; charset=utf-8")
	header.Set("Depth", "1")

	_, body, err := c.do(ctx, MethodReport, collection, strings.NewReader(query), header, http.StatusMultiStatus)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Get fetches a single calendar object and its etag.
func (c *Client) Get(ctx context.Context, path string) (data, etag string, err error) {
	resp, body, err := c.do(ctx, http.MethodGet, path, nil, nil, http.StatusOK)
	if err != nil {
		return "", "", err
	}
	return string(body), resp.Header.Get("ETag"), nil
}

// Put stores a calendar object and returns the new etag when the server
// reports one.
func (c *Client) Put(ctx context.Context, path, data string, pre Precondition) (string, error) {
	header := http.Header{}
	header.Set("Content-Type", "text/calendar; charset=utf-8")
	if pre.IfMatch != "" {
		header.Set("If-Match", pre.IfMatch)
	}
	if pre.IfNoneMatch != "" {
		header.Set("If-None-Match", pre.IfNoneMatch)
	}

	resp, _, err := c.do(ctx, http.MethodPut, path, strings.NewReader(data), header,
		http.StatusCreated, http.StatusNoContent, http.StatusOK)
	if err != nil {
		return "", err
	}
	return resp.Header.Get("ETag"), nil
}

// Delete removes a calendar object. A non-empty etag is sent as If-Match.
func (c *Client) Delete(ctx context.Context, path, etag string) error {
	var header http.Header
	if etag != "" {
		header = http.Header{}
		header.Set("If-Match", etag)
	}
	_, _, err := c.do(ctx, http.MethodDelete, path, nil, header, http.StatusNoContent, http.StatusOK)
	return err
}

// Resolve turns a path relative to the DAV root, or an absolute href,
// into a full URL.
func (c *Client) Resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("failed to parse path %q: %w", path, err)
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, header http.Header, want ...int) (*http.Response, []byte, error) {
	target, err := c.Resolve(path)
	if err != nil {
		return nil, nil, err
	}
	c.logger.DebugContext(ctx, "starting request", "method", method, "url", target)

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "request failed", "method", method, "url", target, "error", err)
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s response: %w", method, err)
	}
	c.logger.DebugContext(ctx, "received response",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"bytes", len(data),
	)

	for _, code := range want {
		if resp.StatusCode == code {
			return resp, data, nil
		}
	}
	return nil, nil, newRemoteError(method, path, resp, data)
}
