// Package github lists the gists of a GitHub user through the REST API.
//
// The package handles three concerns:
//
//  1. Walking the paginated listing endpoint page by page
//  2. Decoding each page into model.Gist values
//  3. Pausing between pages when the rate limit quota runs out
//
// # Listing
//
// Use a Lister with a shared HTTP client:
//
//	client := http.NewClient(http.DefaultOptions())
//	lister := github.NewLister(client)
//
//	gists, err := lister.List(ctx, "octocat", 10)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, g := range gists {
//	    fmt.Println(g) // "id - description (file1, file2)"
//	}
//
// Pass github.NoLimit to fetch every page. A limit of 0 returns immediately.
//
// # Pagination and Rate Limits
//
// A page is followed by another only when its Link header carries a
// rel="next" entry. The X-RateLimit-Remaining header of each response decides
// whether the next request must wait: when the header is missing or the
// quota is exhausted the Throttle sleeps for a fixed delay (3s by default).
// Downloads of raw file content never go through the Throttle.
//
// # Errors
//
// A page body that is not a valid gist array yields a *ParseError carrying
// the raw body and the offset of the offending token. Request failures are
// returned as *http.TransportError. Either one stops the listing.
package github
