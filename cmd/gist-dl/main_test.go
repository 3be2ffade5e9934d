package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAPI serves two gists for "octocat" and for "mixed"; the second gist of
// "mixed" points at a raw file that always fails.
func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	listing := func(g2Dir string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			base := "http://" + r.Host
			w.Header().Set("X-RateLimit-Remaining", "59")
			fmt.Fprintf(w, `[
			  {"id":"g1","description":"First","files":{"a.txt":{"filename":"a.txt","raw_url":"%[1]s/raw/g1/a.txt","size":5}}},
			  {"id":"g2","description":null,"files":{"b.txt":{"filename":"b.txt","raw_url":"%[1]s/raw/%[2]s/b.txt","size":5}}}
			]`, base, g2Dir)
		}
	}
	mux.HandleFunc("/users/octocat/gists", listing("g2"))
	mux.HandleFunc("/users/mixed/gists", listing("broken"))
	mux.HandleFunc("/users/broken/gists", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":"g1","files":`)
	})
	mux.HandleFunc("/raw/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/raw/broken/") {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, "data:%s", r.URL.Path)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	t.Setenv("GISTDL_BASE_URL", srv.URL)
	t.Setenv("GISTDL_LOG_LEVEL", "error")
	t.Setenv("GISTDL_THROTTLE_DELAY", "1ms")
	return srv
}

func runCmd(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCmd()
	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "Usage: gist-dl")

	code, _, stderr = runCmd("upload")
	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "Unknown command: upload")

	code, stdout, _ := runCmd("help")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "download")
}

func TestList_RequiresUsername(t *testing.T) {
	code, _, stderr := runCmd("list")
	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "-username is required")
}

func TestList_PrintsGists(t *testing.T) {
	newAPI(t)

	code, stdout, _ := runCmd("list", "-username", "octocat")
	require.Equal(t, ExitSuccess, code)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "g1 - First (a.txt)", lines[0])
	assert.Equal(t, "g2 - <no description> (b.txt)", lines[1])
}

func TestList_LimitFlag(t *testing.T) {
	newAPI(t)

	code, stdout, _ := runCmd("list", "-username", "octocat", "-limit", "1")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "g1 - First (a.txt)", strings.TrimSpace(stdout))
}

func TestList_ExitCodes(t *testing.T) {
	newAPI(t)

	code, _, _ := runCmd("list", "-username", "ghost")
	assert.Equal(t, ExitTransportError, code)

	code, _, stderr := runCmd("list", "-username", "broken")
	assert.Equal(t, ExitParseError, code)
	assert.Contains(t, stderr, "parse gist listing")
}

func TestDownload_WritesFiles(t *testing.T) {
	newAPI(t)
	out := t.TempDir()

	code, stdout, _ := runCmd("download", "-username", "octocat", "-output", out, "-concurrency", "2")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "Downloaded 2/2 gists, 2 files")

	data, err := os.ReadFile(filepath.Join(out, "g1", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "data:/raw/g1/a.txt", string(data))
	assert.FileExists(t, filepath.Join(out, "g2", "b.txt"))
}

func TestDownload_PartialFailure(t *testing.T) {
	newAPI(t)
	out := t.TempDir()

	code, stdout, _ := runCmd("download", "-username", "mixed", "-output", out)
	assert.Equal(t, ExitPartialFailure, code)
	assert.Contains(t, stdout, "Downloaded 1/2 gists")
	assert.Contains(t, stdout, "g2:")

	assert.FileExists(t, filepath.Join(out, "g1", "a.txt"))
	assert.NoFileExists(t, filepath.Join(out, "g2", "b.txt"))
}

func TestDownload_ConfigFile(t *testing.T) {
	newAPI(t)
	out := t.TempDir()
	cfg := writeConfig(t, fmt.Sprintf(`{"output_dir": %q, "limit": 1}`, out))

	code, _, _ := runCmd("download", "-username", "octocat", "-config", cfg)
	require.Equal(t, ExitSuccess, code)

	assert.FileExists(t, filepath.Join(out, "g1", "a.txt"))
	assert.NoDirExists(t, filepath.Join(out, "g2"))
}

func TestDownload_DryRun(t *testing.T) {
	newAPI(t)
	out := t.TempDir()

	code, stdout, _ := runCmd("download", "-username", "octocat", "-output", out, "-dry-run")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "[Dry run - not downloading]")
	assert.Contains(t, stdout, "g1 - First (a.txt) -> "+filepath.Join(out, "g1"))
	assert.NoDirExists(t, filepath.Join(out, "g1"))
}

func TestDownload_InvalidConcurrency(t *testing.T) {
	newAPI(t)

	code, _, stderr := runCmd("download", "-username", "octocat", "-concurrency", "0")
	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr, "concurrency")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
