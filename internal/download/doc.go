// Package download provides the orchestration logic for listing a user's
// gists and fetching their files.
//
// # Manager
//
// The Manager coordinates the entire process:
//
//  1. List the user's gists, page by page, honouring the rate limit
//  2. Start one download task per gist
//  3. Bound the tasks running at once with a Gate
//  4. Collect one Outcome per gist into a Summary
//
// # Basic Usage
//
//	client := http.NewClient(settings.ToHTTPOptions())
//	manager, err := download.NewManager(settings, client, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	if err := manager.Initialize(ctx, "octocat"); err != nil {
//	    log.Fatal(err)
//	}
//
//	summary, err := manager.StartDownloads(ctx)
//	if err != nil {
//	    log.Fatal(err) // interrupted
//	}
//	if err := summary.Err(); err != nil {
//	    fmt.Println(err) // "1 of 5 gists failed"
//	}
//
// # Concurrency
//
// Every gist gets its own goroutine, but a goroutine must hold one of
// settings.Concurrency permits before it touches the network or the disk.
// The permits are handed out in FIFO order.
//
// # Failure Isolation
//
// A gist fails as a whole when any of its files cannot be fetched or
// written. Files written before the failure stay on disk. No failure stops
// or delays the other gists, and nothing is retried.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	    GistID  string
//	}
//
// The callback is never invoked concurrently. Pollers such as a TUI can use
// GetProgress instead.
package download
