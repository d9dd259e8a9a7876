package analyzer

import (
	"testing"

	"github.com/amosWeiskopf/sitegraph/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *models.CrawlResult {
	return &models.CrawlResult{
		Site: "http://x.test/",
		Pages: []models.Page{
			{URL: "http://x.test/", Title: "Home", Fetched: true, Links: []string{"http://x.test/a", "http://x.test/b"}},
			{URL: "http://x.test/a", Title: "A", Fetched: true, Links: []string{"http://x.test/", "http://x.test/b"}},
			{URL: "http://x.test/b", Links: []string{}},
		},
	}
}

func TestAnalyze(t *testing.T) {
	summary := New(0).Analyze(sampleResult())

	assert.Equal(t, 3, summary.Nodes)
	assert.Equal(t, 4, summary.Edges)
	assert.Equal(t, 1, summary.Stubs)
	assert.Equal(t, map[string]int{
		"http://x.test/":  1,
		"http://x.test/a": 1,
		"http://x.test/b": 2,
	}, summary.Inbound)

	require.Len(t, summary.TopLinked, 3)
	assert.Equal(t, models.LinkCount{URL: "http://x.test/b", Count: 2}, summary.TopLinked[0])
	// equal counts keep discovery order
	assert.Equal(t, "http://x.test/", summary.TopLinked[1].URL)
	assert.Equal(t, "http://x.test/a", summary.TopLinked[2].URL)
}

func TestAnalyzeTopN(t *testing.T) {
	summary := New(1).Analyze(sampleResult())
	require.Len(t, summary.TopLinked, 1)
	assert.Equal(t, "http://x.test/b", summary.TopLinked[0].URL)
}

func TestPageRank(t *testing.T) {
	summary := New(0).Analyze(sampleResult())

	total := 0.0
	for _, r := range summary.PageRank {
		total += r
	}
	assert.InDelta(t, 1.0, total, 1e-6)
	assert.Greater(t, summary.PageRank["http://x.test/b"], summary.PageRank["http://x.test/a"])
}

func TestAnalyzeEmpty(t *testing.T) {
	summary := New(5).Analyze(&models.CrawlResult{})
	assert.Zero(t, summary.Nodes)
	assert.Zero(t, summary.Edges)
	assert.Empty(t, summary.PageRank)
	assert.Empty(t, summary.TopLinked)
}
