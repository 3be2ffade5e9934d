package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	ioutils "github.com/handiism/gist-downloader/internal/io"
)

// apiAccept is the media type GitHub recommends for REST API requests.
const apiAccept = "application/vnd.github+json"

// Options configures the HTTP client.
type Options struct {
	// UserAgent is sent with every request. GitHub rejects requests without one.
	// Default: "gist-downloader"
	UserAgent string

	// Timeout bounds a single request including reading the body.
	// Default: 60s
	Timeout time.Duration
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		UserAgent: "gist-downloader",
		Timeout:   60 * time.Second,
	}
}

// TransportError reports a request that could not be sent, a response that
// could not be read, or a response with a non-success status.
//
// StatusCode is zero when no response was received.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Page is a fully read API response.
type Page struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client wraps HTTP operations with GitHub-specific configuration.
//
// Client provides:
//   - Configured User-Agent header (required by the GitHub API)
//   - Timeout handling
//   - API page fetches that keep the response headers (pagination, rate limit)
//   - Raw file downloads streamed to disk with progress tracking
//
// One Client is safe for concurrent use and is meant to be shared by the
// listing and download stages.
//
// Example usage:
//
//	client := NewClient(DefaultOptions())
//
//	// Fetch one listing page
//	page, err := client.GetPage(ctx, "https://api.github.com/users/octocat/gists?per_page=10&page=1")
//
//	// Download a raw file
//	n, err := client.DownloadFile(ctx, rawURL, "/gists/abc123/main.go", nil)
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new HTTP client with the given options.
// Zero-valued options fall back to DefaultOptions.
func NewClient(opts Options) *Client {
	def := DefaultOptions()
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		userAgent: opts.UserAgent,
	}
}

// ProgressWriter wraps a writer to track download progress.
//
// Use this to monitor large downloads by providing an OnUpdate callback
// that receives the current bytes written and total expected bytes.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	// -1 when unknown.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	// Parameters are (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)

	// err is the first error returned by Writer.
	err error
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if err != nil && pw.err == nil {
		pw.err = err
	}
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// GetPage performs a GET request against the API and returns the status,
// headers and the full body.
//
// Returns a *TransportError if:
//   - The request cannot be sent
//   - The response status is not 2xx
//   - Reading the body fails
func (c *Client) GetPage(ctx context.Context, url string) (*Page, error) {
	resp, err := c.do(ctx, url, apiAccept)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	return &Page{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// DownloadFile downloads a file to the specified path with optional progress callback.
//
// The file is only created (or truncated if it exists) once the server has
// answered with a success status, and the content is streamed directly to
// disk. The number of bytes written is returned even on failure.
//
// Errors are classified:
//   - *TransportError when the request fails, the status is not 2xx or the body
//     cannot be read
//   - *ioutils.FileSystemError when the destination cannot be created, written
//     or closed
//
// Example:
//
//	n, err := client.DownloadFile(ctx, rawURL, "/gists/abc123/notes.md", func(written, total int64) {
//	    if total > 0 {
//	        fmt.Printf("%.1f%%\r", float64(written)/float64(total)*100)
//	    }
//	})
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) (int64, error) {
	resp, err := c.do(ctx, url, "")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	file, err := os.Create(destPath)
	if err != nil {
		return 0, &ioutils.FileSystemError{Op: "create", Path: destPath, Err: err}
	}

	pw := &ProgressWriter{
		Writer:   file,
		Total:    resp.ContentLength,
		OnUpdate: onProgress,
	}

	_, copyErr := io.Copy(pw, resp.Body)
	closeErr := file.Close()

	switch {
	case copyErr != nil && pw.err != nil:
		return pw.Written, &ioutils.FileSystemError{Op: "write", Path: destPath, Err: pw.err}
	case copyErr != nil:
		return pw.Written, &TransportError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", copyErr)}
	case closeErr != nil:
		return pw.Written, &ioutils.FileSystemError{Op: "close", Path: destPath, Err: closeErr}
	}

	return pw.Written, nil
}

// do sends a GET request and returns the response if its status is 2xx.
// The caller owns the response body.
func (c *Client) do(ctx context.Context, url, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		io.CopyN(io.Discard, resp.Body, 4096)
		resp.Body.Close()
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	return resp, nil
}
