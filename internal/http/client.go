package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Config holds the request decoration and transport settings of a Client.
type Config struct {
	UserAgent string
	Cookie    string
	Referer   string

	// HeaderTimeout bounds the wait for response headers. Zero disables it.
	HeaderTimeout time.Duration

	// Transport overrides the default transport (tests).
	Transport http.RoundTripper
}

// Client wraps HTTP operations with the headers the media source expects.
//
// Example usage:
//
//	client := NewClient(Config{UserAgent: "Mozilla/5.0", Referer: "https://example.com"})
//
//	resp, err := client.Get(ctx, url, nil)
//	if err != nil {
//	    return err
//	}
//	defer resp.Body.Close()
type Client struct {
	httpClient *http.Client
	header     http.Header
}

// NewClient creates a new HTTP client from cfg.
func NewClient(cfg Config) *Client {
	transport := cfg.Transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.ResponseHeaderTimeout = cfg.HeaderTimeout
		transport = t
	}

	header := make(http.Header)
	if cfg.UserAgent != "" {
		header.Set("User-Agent", cfg.UserAgent)
	}
	if cfg.Cookie != "" {
		header.Set("Cookie", cfg.Cookie)
	}
	if cfg.Referer != "" {
		header.Set("Referer", cfg.Referer)
	}

	return &Client{
		httpClient: &http.Client{Transport: transport},
		header:     header,
	}
}

// Range is an HTTP byte range. End is inclusive; a negative End means
// "to the end of the resource".
type Range struct {
	Start int64
	End   int64
}

// String renders the Range header value: "bytes=<start>-" or "bytes=<start>-<end>".
func (r Range) String() string {
	if r.End < 0 {
		return fmt.Sprintf("bytes=%d-", r.Start)
	}
	return fmt.Sprintf("bytes=%d-%d", r.Start, r.End)
}

// Response is the part of an HTTP response the transfer logic needs.
// Body is nil for HEAD responses.
type Response struct {
	StatusCode    int
	Header        http.Header
	ContentLength int64
	Body          io.ReadCloser
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// StatusError is returned by GetBytes for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

func (c *Client) newRequest(ctx context.Context, method, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	return req, nil
}

// Head performs a HEAD request. Any status is returned to the caller;
// only transport failures produce an error.
func (c *Client) Head(ctx context.Context, url string) (*Response, error) {
	req, err := c.newRequest(ctx, http.MethodHead, url)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()

	return &Response{
		StatusCode:    resp.StatusCode,
		Header:        resp.Header,
		ContentLength: resp.ContentLength,
	}, nil
}

// Get performs a GET request, optionally restricted to rng. The caller
// owns the returned body and must close it, whatever the status.
func (c *Client) Get(ctx context.Context, url string, rng *Range) (*Response, error) {
	req, err := c.newRequest(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	if rng != nil {
		req.Header.Set("Range", rng.String())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode:    resp.StatusCode,
		Header:        resp.Header,
		ContentLength: resp.ContentLength,
		Body:          resp.Body,
	}, nil
}

// GetBytes performs a GET request and returns the whole body.
//
// Use this for small files like cover art; stream files go through Get.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !resp.OK() {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// ParseContentRange parses a "bytes start-end/total" Content-Range value.
// total is -1 when the server reports "*".
func ParseContentRange(v string) (start, end, total int64, err error) {
	v = strings.TrimSpace(v)
	spec, ok := strings.CutPrefix(v, "bytes ")
	if !ok {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range %q", v)
	}
	span, size, ok := strings.Cut(spec, "/")
	if !ok {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range %q", v)
	}
	first, last, ok := strings.Cut(span, "-")
	if !ok {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range %q", v)
	}

	if start, err = strconv.ParseInt(first, 10, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range %q: %w", v, err)
	}
	if end, err = strconv.ParseInt(last, 10, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range %q: %w", v, err)
	}
	if size == "*" {
		return start, end, -1, nil
	}
	if total, err = strconv.ParseInt(size, 10, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range %q: %w", v, err)
	}
	return start, end, total, nil
}
