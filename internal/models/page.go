package models

import "time"

// Page represents a node of the site graph
type Page struct {
	URL     string   `json:"url"`
	Title   string   `json:"title"`
	Links   []string `json:"links"`
	Fetched bool     `json:"fetched"`
	// Depth is the fetch depth, or the depth a stub was first discovered at
	Depth   int      `json:"depth"`
}

// IsStub reports whether the page was discovered as a link target but never fetched
func (p Page) IsStub() bool {
	return !p.Fetched
}

// Document is what a renderer extracts from a loaded page
type Document struct {
	Title string
	// Links holds the raw href values in document order
	Links []string
}

// CrawlResult contains the results of a crawl operation
type CrawlResult struct {
	Site      string        `json:"site"`
	Pages     []Page        `json:"pages"`
	Visited   int           `json:"visited"`
	Stats     Stats         `json:"stats"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Stats counts how each scheduled page ended up
type Stats struct {
	Fetched     int `json:"fetched"`
	Failed      int `json:"failed"`
	DepthCapped int `json:"depth_capped"`
	Skipped     int `json:"skipped"`
	Stubs       int `json:"stubs"`
}

// Summary describes the shape of the discovered site graph
type Summary struct {
	Nodes    int                `json:"nodes"`
	Edges    int                `json:"edges"`
	Stubs    int                `json:"stubs"`
	Inbound  map[string]int     `json:"inbound"`
	PageRank map[string]float64 `json:"pagerank"`
	// TopLinked lists the most linked-to URLs, highest first
	TopLinked []LinkCount `json:"top_linked"`
}

// LinkCount pairs a URL with the number of pages linking to it
type LinkCount struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}
