package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/amosWeiskopf/sitegraph/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *models.CrawlResult {
	return &models.CrawlResult{
		Site: "http://x.test/",
		Pages: []models.Page{
			{URL: "http://x.test/", Title: "Home", Fetched: true, Links: []string{"http://x.test/a"}},
			{URL: "http://x.test/a", Title: "A", Fetched: true, Links: []string{"http://x.test/", "http://x.test/b"}},
			{URL: "http://x.test/b", Links: []string{}},
		},
		Stats: models.Stats{Fetched: 2, Stubs: 1},
	}
}

func TestNodeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://x.test/", "httpxtest"},
		{"http://x.test/a-b_c?d=1", "httpxtestab_cd1"},
		{"http://x.test/café", "httpxtestcaf"},
		{"://", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NodeID(tt.in))
		})
	}
}

func TestNodeLabel(t *testing.T) {
	page := models.Page{URL: "http://x.test/docs/", Title: `Say "hi"`}
	assert.Equal(t, `Say \"hi\"\n/docs/`, NodeLabel(page, "http://x.test/"))

	root := models.Page{URL: "http://x.test/"}
	assert.Equal(t, `\n/`, NodeLabel(root, "http://x.test/"))
}

func TestWriteDOT(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, sampleResult()))

	want := strings.Join([]string{
		"digraph sitemap {",
		"   overlap=false;",
		"   bgcolor=transparent;",
		"   splines=true;",
		"   rankdir=TB;",
		`   node [shape=Mrecord, fontname="Arial", fontsize=18, style=filled, fillcolor=deepskyblue];`,
		`   httpxtest [label = "Home\n/"];`,
		`   httpxtesta [label = "A\n/a"];`,
		`   httpxtestb [label = "\n/b"];`,
		"   httpxtest -> httpxtesta",
		"   httpxtesta -> httpxtest",
		"   httpxtesta -> httpxtestb",
		"}",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestWriteDOTSkipsEmptyIDs(t *testing.T) {
	result := &models.CrawlResult{
		Site: "://",
		Pages: []models.Page{
			{URL: "://", Fetched: true, Links: []string{"://a", ":/"}},
			{URL: "://a", Links: []string{}},
			{URL: ":/", Links: []string{}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, result))

	want := strings.Join(append(append([]string{}, dotHeader...),
		`   a [label = "\n/a"];`,
		"}",
		"",
	), "\n")
	assert.Equal(t, want, buf.String())
	assert.NotContains(t, buf.String(), "->")
}

func TestWriteDOTEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, &models.CrawlResult{Site: "http://x.test/"}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, len(dotHeader)+1)
	assert.Equal(t, "}", lines[len(lines)-1])
}

func TestNewUnsupportedFormat(t *testing.T) {
	_, err := New("html")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	for _, f := range Formats {
		r, err := New(f)
		require.NoError(t, err)
		assert.NotNil(t, r)
	}
}

func TestWriteJSON(t *testing.T) {
	r, err := New(FormatJSON)
	require.NoError(t, err)

	summary := &models.Summary{Nodes: 3, Edges: 3, Stubs: 1}
	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, sampleResult(), summary))

	var got struct {
		Site    string         `json:"site"`
		Pages   []models.Page  `json:"pages"`
		Stats   models.Stats   `json:"stats"`
		Summary models.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "http://x.test/", got.Site)
	require.Len(t, got.Pages, 3)
	assert.Equal(t, "http://x.test/a", got.Pages[1].URL)
	assert.Equal(t, 2, got.Stats.Fetched)
	assert.Equal(t, 3, got.Summary.Edges)
}

func TestWriteMarkdown(t *testing.T) {
	r, err := New(FormatMarkdown)
	require.NoError(t, err)

	summary := &models.Summary{
		Nodes:     3,
		Edges:     3,
		TopLinked: []models.LinkCount{{URL: "http://x.test/", Count: 1}},
	}
	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, sampleResult(), summary))

	out := buf.String()
	assert.Contains(t, out, "# Sitemap of http://x.test/")
	assert.Contains(t, out, "## Most linked pages")
	assert.Contains(t, out, "http://x.test/ (1)")
	assert.Contains(t, out, "### Home")
	assert.Contains(t, out, "- http://x.test/b")
	assert.Contains(t, out, "_not fetched_")
	assert.Contains(t, out, "Fetched")
}

func TestWriteDOTThroughReporter(t *testing.T) {
	r, err := New(FormatDOT)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, sampleResult(), nil))
	assert.True(t, strings.HasPrefix(buf.String(), "digraph sitemap {\n"))
}
