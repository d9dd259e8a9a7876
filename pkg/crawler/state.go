package crawler

import "github.com/amosWeiskopf/sitegraph/internal/models"

// State is the bookkeeping of a single crawl run: the pages known so far,
// in discovery order, and the URLs already scheduled for fetching.
// It is owned by one traversal and is not safe for concurrent use.
type State struct {
	pages   map[string]*models.Page
	order   []string
	visited map[string]bool
}

// NewState returns an empty crawl state
func NewState() *State {
	return &State{
		pages:   make(map[string]*models.Page),
		visited: make(map[string]bool),
	}
}

func (s *State) MarkVisited(url string) {
	s.visited[url] = true
}

func (s *State) IsVisited(url string) bool {
	return s.visited[url]
}

// HasRecord reports whether url has a page record, fetched or stub
func (s *State) HasRecord(url string) bool {
	_, ok := s.pages[url]
	return ok
}

// UpsertStub records url as discovered at depth but not fetched, unless a record already exists
func (s *State) UpsertStub(url string, depth int) {
	if s.HasRecord(url) {
		return
	}
	s.insert(&models.Page{URL: url, Links: []string{}, Depth: depth})
}

// RecordFetched stores the full record of a fetched page.
// An existing stub is overwritten in place, keeping its position in the page order.
func (s *State) RecordFetched(url, title string, links []string, depth int) {
	page := &models.Page{
		URL:     url,
		Title:   title,
		Links:   append([]string{}, links...),
		Fetched: true,
		Depth:   depth,
	}
	if existing, ok := s.pages[url]; ok {
		*existing = *page
		return
	}
	s.insert(page)
}

func (s *State) insert(p *models.Page) {
	s.pages[p.URL] = p
	s.order = append(s.order, p.URL)
}

// Page returns a copy of the record for url
func (s *State) Page(url string) (models.Page, bool) {
	p, ok := s.pages[url]
	if !ok {
		return models.Page{}, false
	}
	return clonePage(p), true
}

// Pages returns all records in insertion order
func (s *State) Pages() []models.Page {
	pages := make([]models.Page, 0, len(s.order))
	for _, url := range s.order {
		pages = append(pages, clonePage(s.pages[url]))
	}
	return pages
}

// Len is the number of page records
func (s *State) Len() int {
	return len(s.order)
}

// VisitedCount is the number of URLs ever scheduled
func (s *State) VisitedCount() int {
	return len(s.visited)
}

func clonePage(p *models.Page) models.Page {
	c := *p
	c.Links = append([]string{}, p.Links...)
	return c
}
