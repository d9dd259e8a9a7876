package reporter

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/amosWeiskopf/sitegraph/internal/models"
)

// dotHeader fixes the Graphviz layout used for every sitemap
var dotHeader = []string{
	"digraph sitemap {",
	"   overlap=false;",
	"   bgcolor=transparent;",
	"   splines=true;",
	"   rankdir=TB;",
	`   node [shape=Mrecord, fontname="Arial", fontsize=18, style=filled, fillcolor=deepskyblue];`,
}

var nonWordChars = regexp.MustCompile(`[^A-Za-z0-9_]+`)

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// NodeID turns a URL into a Graphviz identifier by dropping every non-word character.
// Distinct URLs can map to the same identifier.
func NodeID(url string) string {
	return nonWordChars.ReplaceAllString(url, "")
}

// NodeLabel is the two-line label of a page: its title, then its path below the site root
func NodeLabel(page models.Page, site string) string {
	path := strings.Replace(page.URL, site, "/", 1)
	return labelEscaper.Replace(page.Title) + `\n` + labelEscaper.Replace(path)
}

// WriteDOT emits the crawl as a Graphviz digraph: all nodes first, then all edges,
// both in page discovery order.
func WriteDOT(w io.Writer, result *models.CrawlResult) error {
	bw := bufio.NewWriter(w)

	for _, line := range dotHeader {
		fmt.Fprintln(bw, line)
	}

	for _, page := range result.Pages {
		id := NodeID(page.URL)
		if id == "" {
			continue
		}
		fmt.Fprintf(bw, "   %s [label = \"%s\"];\n", id, NodeLabel(page, result.Site))
	}

	for _, page := range result.Pages {
		from := NodeID(page.URL)
		for _, link := range page.Links {
			to := NodeID(link)
			if from != "" && to != "" {
				fmt.Fprintf(bw, "   %s -> %s\n", from, to)
			}
		}
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}
