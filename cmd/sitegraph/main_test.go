package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amosWeiskopf/sitegraph/internal/config"
	"github.com/amosWeiskopf/sitegraph/pkg/reporter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		switch r.URL.Path {
		case "/":
			w.Write([]byte(`<html><head><title>Home</title></head><body>
				<a href="/about">About</a>
				<a href="https://elsewhere.test/">Elsewhere</a>
				</body></html>`))
		case "/about":
			w.Write([]byte(`<html><head><title>About "us"</title></head><body><a href="/">Home</a></body></html>`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	chdir(t, t.TempDir())

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestMissingSite(t *testing.T) {
	stdout, stderr, err := execute(t)

	assert.ErrorIs(t, err, errMissingSite)
	assert.Equal(t, usageMessage+"\n", stderr)
	assert.Empty(t, stdout)
}

func TestCrawlWritesDOT(t *testing.T) {
	server := newSite(t)

	stdout, stderr, err := execute(t, server.URL, "--renderer", "http", "--log-format", "json")
	require.NoError(t, err)

	id := reporter.NodeID(server.URL + "/")
	about := reporter.NodeID(server.URL + "/about")
	assert.True(t, strings.HasPrefix(stdout, "digraph sitemap {\n"))
	assert.Contains(t, stdout, "   "+id+` [label = "Home\n/"];`)
	assert.Contains(t, stdout, "   "+about+` [label = "About \"us\"\n/about"];`)
	assert.Contains(t, stdout, "   "+id+" -> "+about+"\n")
	assert.Contains(t, stdout, "   "+about+" -> "+id+"\n")
	assert.NotContains(t, stdout, "elsewhere")
	assert.True(t, strings.HasSuffix(stdout, "}\n"))

	// diagnostics stay on stderr
	assert.Contains(t, stderr, `"message":"crawl finished"`)
	assert.NotContains(t, stdout, "crawl finished")
}

func TestCrawlWritesJSONFile(t *testing.T) {
	server := newSite(t)
	out := filepath.Join(t.TempDir(), "graph.json")

	stdout, _, err := execute(t, server.URL, "--renderer", "http", "--format", "json", "--output", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var report struct {
		Site  string `json:"site"`
		Pages []struct {
			URL string `json:"url"`
		} `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, server.URL+"/", report.Site)
	assert.Len(t, report.Pages, 2)
}

func TestInvalidConfig(t *testing.T) {
	_, _, err := execute(t, "http://x.test/", "--renderer", "http", "--format", "html")
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, _, err = execute(t, "http://x.test/", "--max-depth", "0")
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestInvalidSite(t *testing.T) {
	_, _, err := execute(t, "markusos.github.io", "--renderer", "http")
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test
// (equivalent to testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
