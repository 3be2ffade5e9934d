package download

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/handiism/gist-downloader/internal/http"
	ioutils "github.com/handiism/gist-downloader/internal/io"
	"github.com/handiism/gist-downloader/internal/model"
)

// fakeClient serves listing pages from memory and writes "content of <url>"
// for every download. It records how many downloads run at once.
type fakeClient struct {
	pages   []string
	delay   time.Duration
	failing map[string]bool // raw URLs that always fail

	mu       sync.Mutex
	fetched  []string
	running  atomic.Int32
	maxSeen  atomic.Int32
	requests atomic.Int32
	release  chan struct{} // when set, downloads block until it is closed
}

func (f *fakeClient) GetPage(ctx context.Context, url string) (*http.Page, error) {
	n := int(f.requests.Add(1))
	if n > len(f.pages) {
		return nil, &http.TransportError{URL: url, StatusCode: nethttp.StatusNotFound, Err: errors.New("404 Not Found")}
	}

	h := nethttp.Header{}
	h.Set("X-RateLimit-Remaining", "100")
	if n < len(f.pages) {
		h.Set("Link", fmt.Sprintf(`<%s&page=%d>; rel="next"`, url, n+1))
	}
	return &http.Page{StatusCode: nethttp.StatusOK, Header: h, Body: []byte(f.pages[n-1])}, nil
}

func (f *fakeClient) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) (int64, error) {
	cur := f.running.Add(1)
	defer f.running.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if cur <= seen || f.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}

	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.mu.Unlock()

	if f.release != nil {
		<-f.release
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.failing[url] {
		return 0, &http.TransportError{URL: url, StatusCode: nethttp.StatusInternalServerError, Err: errors.New("500 Internal Server Error")}
	}

	content := []byte("content of " + url)
	if err := os.WriteFile(destPath, content, 0644); err != nil {
		return 0, &ioutils.FileSystemError{Op: "write", Path: destPath, Err: err}
	}
	return int64(len(content)), nil
}

func (f *fakeClient) fetchedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetched)
}

// testGist builds a gist whose files have raw URLs "https://raw.test/<id>/<name>".
func testGist(id string, names ...string) *model.Gist {
	files := make(map[string]model.File, len(names))
	for _, name := range names {
		files[name] = model.File{Name: name, RawURL: rawURL(id, name), Size: 10}
	}
	return model.NewGist(id, files).WithDescription("gist " + id)
}

func rawURL(id, name string) string {
	return "https://raw.test/" + id + "/" + name
}

func gistPage(gists ...*model.Gist) string {
	items := make([]string, 0, len(gists))
	for _, g := range gists {
		var files []string
		for _, name := range g.FileNames() {
			files = append(files, fmt.Sprintf(`%q:{"filename":%q,"raw_url":%q,"size":10}`, name, name, g.Files[name].RawURL))
		}
		items = append(items, fmt.Sprintf(`{"id":%q,"description":%q,"files":{%s}}`, g.ID, g.DescriptionText(), strings.Join(files, ",")))
	}
	return "[" + strings.Join(items, ",") + "]"
}
