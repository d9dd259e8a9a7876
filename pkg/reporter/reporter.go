package reporter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/amosWeiskopf/sitegraph/internal/models"
	"github.com/nao1215/markdown"
)

// Output formats
const (
	FormatDOT      = "dot"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// ErrUnsupportedFormat is returned for an unknown output format
var ErrUnsupportedFormat = errors.New("unsupported format")

// Formats lists the accepted output formats
var Formats = []string{FormatDOT, FormatJSON, FormatMarkdown}

// Reporter renders crawl results in the requested format
type Reporter struct {
	format string
}

// New creates a Reporter for format
func New(format string) (*Reporter, error) {
	switch format {
	case FormatDOT, FormatJSON, FormatMarkdown:
		return &Reporter{format: format}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Write renders result to w. summary may be nil for the DOT format.
func (r *Reporter) Write(w io.Writer, result *models.CrawlResult, summary *models.Summary) error {
	switch r.format {
	case FormatDOT:
		return WriteDOT(w, result)
	case FormatJSON:
		return writeJSON(w, result, summary)
	case FormatMarkdown:
		return writeMarkdown(w, result, summary)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, r.format)
	}
}

type jsonReport struct {
	Site    string          `json:"site"`
	Pages   []models.Page   `json:"pages"`
	Stats   models.Stats    `json:"stats"`
	Summary *models.Summary `json:"summary,omitempty"`
}

func writeJSON(w io.Writer, result *models.CrawlResult, summary *models.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonReport{
		Site:    result.Site,
		Pages:   result.Pages,
		Stats:   result.Stats,
		Summary: summary,
	}); err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return nil
}

func writeMarkdown(w io.Writer, result *models.CrawlResult, summary *models.Summary) error {
	md := markdown.NewMarkdown(w)

	md.H1("Sitemap of " + result.Site)
	md.PlainText("")

	rows := [][]string{
		{"Pages", strconv.Itoa(len(result.Pages))},
		{"Fetched", strconv.Itoa(result.Stats.Fetched)},
		{"Stubs", strconv.Itoa(result.Stats.Stubs)},
		{"Failed", strconv.Itoa(result.Stats.Failed)},
	}
	if summary != nil {
		rows = append(rows, []string{"Links", strconv.Itoa(summary.Edges)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if summary != nil && len(summary.TopLinked) > 0 {
		md.H2("Most linked pages")
		md.PlainText("")
		items := make([]string, 0, len(summary.TopLinked))
		for _, lc := range summary.TopLinked {
			items = append(items, fmt.Sprintf("%s (%d)", lc.URL, lc.Count))
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	md.H2("Pages")
	md.PlainText("")
	for _, page := range result.Pages {
		heading := page.Title
		if heading == "" {
			heading = page.URL
		}
		md.H3(heading)
		md.PlainText("")
		md.PlainText(page.URL)
		md.PlainText("")
		switch {
		case page.IsStub():
			md.PlainText("_not fetched_")
		case len(page.Links) == 0:
			md.PlainText("_no internal links_")
		default:
			md.BulletList(page.Links...)
		}
		md.PlainText("")
	}

	return md.Build()
}
