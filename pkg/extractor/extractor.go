package extractor

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/amosWeiskopf/sitegraph/internal/models"
	"golang.org/x/net/html"
)

// FollowSelector matches the anchors a crawl follows: everything not marked rel=nofollow
const FollowSelector = `a[href]:not([rel~="nofollow"])`

// Extract parses an HTML document and returns its title and followable hrefs
func Extract(r io.Reader) (*models.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return FromNode(root), nil
}

// ExtractString is Extract for an in-memory document
func ExtractString(htmlContent string) (*models.Document, error) {
	return Extract(strings.NewReader(htmlContent))
}

// FromNode extracts from an already parsed document
func FromNode(root *html.Node) *models.Document {
	doc := goquery.NewDocumentFromNode(root)

	result := &models.Document{
		Title: collapseSpace(doc.Find("title").First().Text()),
		Links: []string{},
	}

	doc.Find(FollowSelector).Each(func(_ int, s *goquery.Selection) {
		// Surrounding whitespace is dropped the way browsers resolve href
		if href, ok := s.Attr("href"); ok {
			result.Links = append(result.Links, strings.TrimSpace(href))
		}
	})

	return result
}

// collapseSpace trims and folds whitespace runs to one space, as document.title does
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
