package analyzer

import (
	"sort"

	"github.com/amosWeiskopf/sitegraph/internal/models"
)

const (
	dampingFactor = 0.85
	iterations    = 100
)

// Analyzer summarizes the link structure of a crawl
type Analyzer struct {
	topN int
}

// New creates an Analyzer that reports the topN most linked pages
func New(topN int) *Analyzer {
	return &Analyzer{topN: topN}
}

// Analyze computes node, edge and stub counts, inbound link counts and PageRank
func (a *Analyzer) Analyze(result *models.CrawlResult) *models.Summary {
	summary := &models.Summary{
		Nodes:    len(result.Pages),
		Inbound:  make(map[string]int, len(result.Pages)),
		PageRank: make(map[string]float64, len(result.Pages)),
	}

	order := make(map[string]int, len(result.Pages))
	for i, page := range result.Pages {
		order[page.URL] = i
		summary.Inbound[page.URL] = 0
		if page.IsStub() {
			summary.Stubs++
		}
	}

	for _, page := range result.Pages {
		summary.Edges += len(page.Links)
		for _, link := range page.Links {
			summary.Inbound[link]++
		}
	}

	summary.PageRank = pageRank(result.Pages)
	summary.TopLinked = a.topLinked(summary.Inbound, order)
	return summary
}

// topLinked sorts by inbound count, ties broken by discovery order
func (a *Analyzer) topLinked(inbound map[string]int, order map[string]int) []models.LinkCount {
	counts := make([]models.LinkCount, 0, len(inbound))
	for url, n := range inbound {
		if n > 0 {
			counts = append(counts, models.LinkCount{URL: url, Count: n})
		}
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count == counts[j].Count {
			return order[counts[i].URL] < order[counts[j].URL]
		}
		return counts[i].Count > counts[j].Count
	})
	if a.topN > 0 && len(counts) > a.topN {
		counts = counts[:a.topN]
	}
	return counts
}

func pageRank(pages []models.Page) map[string]float64 {
	rank := make(map[string]float64, len(pages))
	if len(pages) == 0 {
		return rank
	}

	inboundLinks := make(map[string][]string)
	for _, page := range pages {
		for _, link := range page.Links {
			inboundLinks[link] = append(inboundLinks[link], page.URL)
		}
	}
	outbound := make(map[string]int, len(pages))
	for _, page := range pages {
		outbound[page.URL] = len(page.Links)
	}

	pageCount := float64(len(pages))
	for _, page := range pages {
		rank[page.URL] = 1.0 / pageCount
	}

	for i := 0; i < iterations; i++ {
		// Pages without outbound links (stubs, dead ends) spread their rank evenly
		dangling := 0.0
		for _, page := range pages {
			if outbound[page.URL] == 0 {
				dangling += rank[page.URL]
			}
		}

		next := make(map[string]float64, len(pages))
		for _, page := range pages {
			r := (1.0-dampingFactor)/pageCount + dampingFactor*dangling/pageCount
			for _, from := range inboundLinks[page.URL] {
				r += dampingFactor * rank[from] / float64(outbound[from])
			}
			next[page.URL] = r
		}
		rank = next
	}

	return rank
}
