package download

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/gist-downloader/internal/http"
	ioutils "github.com/handiism/gist-downloader/internal/io"
	"github.com/handiism/gist-downloader/internal/model"
)

func newTestWorker(t *testing.T, fetcher Fetcher, root string) *Worker {
	t.Helper()
	gate, err := NewGate(1)
	require.NoError(t, err)
	return NewWorker(fetcher, gate, root)
}

func TestWorker_DownloadWritesFiles(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		fmt.Fprintf(w, "body of %s", r.URL.Path)
	}))
	defer srv.Close()

	root := t.TempDir()
	w := newTestWorker(t, http.NewClient(http.DefaultOptions()), root)

	gist := model.NewGist("abc123", map[string]model.File{
		"main.go":   {Name: "main.go", RawURL: srv.URL + "/raw/main.go"},
		"README.md": {Name: "README.md", RawURL: srv.URL + "/raw/README.md"},
	})

	out := w.Download(context.Background(), gist)
	require.NoError(t, out.Err)
	assert.True(t, out.Succeeded())
	assert.Equal(t, 2, out.Files)
	assert.Equal(t, filepath.Join(root, "abc123"), out.Dir)

	data, err := os.ReadFile(filepath.Join(root, "abc123", "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "body of /raw/main.go", string(data))
	assert.EqualValues(t, len("body of /raw/main.go")+len("body of /raw/README.md"), out.Bytes)
}

func TestWorker_DownloadIsIdempotent(t *testing.T) {
	root := t.TempDir()
	client := &fakeClient{}
	w := newTestWorker(t, client, root)
	gist := testGist("g1", "a.txt")

	dest := filepath.Join(root, "g1", "a.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0755))
	require.NoError(t, os.WriteFile(dest, []byte("stale content that is longer than the new one"), 0644))

	for range 2 {
		out := w.Download(context.Background(), gist)
		require.NoError(t, out.Err)
	}

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "content of "+rawURL("g1", "a.txt"), string(data))
}

func TestWorker_UnsafeFileName(t *testing.T) {
	root := t.TempDir()
	client := &fakeClient{}
	w := newTestWorker(t, client, root)

	gist := model.NewGist("g1", map[string]model.File{
		"../escape.txt": {Name: "../escape.txt", RawURL: "https://raw.test/escape"},
	})

	out := w.Download(context.Background(), gist)

	var fsErr *ioutils.FileSystemError
	require.True(t, errors.As(out.Err, &fsErr))
	assert.ErrorIs(t, out.Err, ioutils.ErrUnsafeName)
	assert.Equal(t, 0, client.fetchedCount())
	_, err := os.Stat(filepath.Join(root, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestWorker_UnsafeGistID(t *testing.T) {
	w := newTestWorker(t, &fakeClient{}, t.TempDir())

	out := w.Download(context.Background(), testGist("..", "a.txt"))

	assert.ErrorIs(t, out.Err, ioutils.ErrUnsafeName)
}

func TestWorker_FetchFailureKeepsWrittenFiles(t *testing.T) {
	root := t.TempDir()
	client := &fakeClient{failing: map[string]bool{rawURL("g1", "b.txt"): true}}
	w := newTestWorker(t, client, root)

	out := w.Download(context.Background(), testGist("g1", "a.txt", "b.txt", "c.txt"))

	var terr *http.TransportError
	require.True(t, errors.As(out.Err, &terr))
	assert.Equal(t, nethttp.StatusInternalServerError, terr.StatusCode)
	assert.Equal(t, 1, out.Files)

	// Files are processed in name order: a.txt was written before b.txt failed.
	assert.FileExists(t, filepath.Join(root, "g1", "a.txt"))
	assert.NoFileExists(t, filepath.Join(root, "g1", "c.txt"))
}

func TestWorker_DirectoryBlocked(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "g1"), []byte("not a dir"), 0644))
	client := &fakeClient{}
	w := newTestWorker(t, client, root)

	out := w.Download(context.Background(), testGist("g1", "a.txt"))

	var fsErr *ioutils.FileSystemError
	require.True(t, errors.As(out.Err, &fsErr))
	assert.Equal(t, "mkdir", fsErr.Op)
	assert.Equal(t, 0, client.fetchedCount())
}

func TestWorker_EmptyGistCreatesDirectory(t *testing.T) {
	root := t.TempDir()
	w := newTestWorker(t, &fakeClient{}, root)

	out := w.Download(context.Background(), model.NewGist("empty", nil))

	require.NoError(t, out.Err)
	assert.DirExists(t, filepath.Join(root, "empty"))
}
