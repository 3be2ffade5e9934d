// Package http provides an HTTP client configured for GitHub API requests.
//
// The Client in this package handles:
//   - User-Agent and Accept headers for the GitHub REST API
//   - Listing pages returned together with their response headers
//   - Raw file downloads streamed to disk with progress tracking
//   - Timeout handling (the only timeout the pipeline relies on)
//
// # Basic Usage
//
//	client := http.NewClient(http.DefaultOptions())
//
//	// Fetch one listing page; headers carry pagination and rate limit info
//	page, err := client.GetPage(ctx, "https://api.github.com/users/octocat/gists?per_page=100&page=1")
//
//	// Download file with progress callback
//	client.DownloadFile(ctx, rawURL, "/path/to/file.go", func(written, total int64) {
//	    fmt.Printf("%d bytes\n", written)
//	})
//
// # Errors
//
// Network failures, unreadable bodies and non-2xx statuses are reported as
// *TransportError. Failures to create or write the destination file are
// reported as *ioutils.FileSystemError so callers can tell the two apart.
package http
