package utils

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// NormalizeLink rewrites a root-relative link into an absolute URL under siteRoot.
// Anything else (absolute URLs, mailto:, javascript:, fragments) is returned unchanged.
func NormalizeLink(link, siteRoot string) string {
	if strings.HasPrefix(link, "/") {
		return siteRoot + link[1:]
	}
	return link
}

// IsInternal reports whether link belongs to the crawled site.
// This is a literal, case-sensitive prefix test, not a URL comparison.
func IsInternal(link, siteRoot string) bool {
	return strings.HasPrefix(link, siteRoot)
}

// Dedupe removes repeated links, keeping the first occurrence of each
func Dedupe(links []string) []string {
	seen := make(map[string]bool, len(links))
	result := make([]string, 0, len(links))
	for _, l := range links {
		if !seen[l] {
			seen[l] = true
			result = append(result, l)
		}
	}
	return result
}

// InternalLinks turns the raw hrefs of a page into its ordered set of internal links
func InternalLinks(raw []string, siteRoot string) []string {
	normalized := make([]string, 0, len(raw))
	for _, href := range raw {
		normalized = append(normalized, NormalizeLink(href, siteRoot))
	}

	unique := Dedupe(normalized)
	internal := unique[:0]
	for _, link := range unique {
		if IsInternal(link, siteRoot) {
			internal = append(internal, link)
		}
	}
	return internal
}

// URLParts is the diagnostic decomposition of a page URL
type URLParts struct {
	Scheme   string
	Host     string
	Domain   string // registered domain (eTLD+1), empty for IPs and unknown suffixes
	Path     string
	Query    string
	Fragment string
}

// Breakdown splits rawURL into its components for debug logging
func Breakdown(rawURL string) (URLParts, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return URLParts{}, fmt.Errorf("parse %q: %w", rawURL, err)
	}

	parts := URLParts{
		Scheme:   u.Scheme,
		Host:     u.Host,
		Path:     u.Path,
		Query:    u.RawQuery,
		Fragment: u.Fragment,
	}
	if host := u.Hostname(); host != "" && net.ParseIP(host) == nil {
		if domain, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
			parts.Domain = domain
		}
	}
	return parts, nil
}

// CanonicalRoot appends a trailing slash to a site root that has no path,
// so that root-relative links resolve to http://host/path instead of http://hostpath.
func CanonicalRoot(site string) (string, error) {
	u, err := url.Parse(site)
	if err != nil {
		return "", fmt.Errorf("invalid site URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid site URL %q: must be absolute", site)
	}
	if u.Path == "" && u.RawQuery == "" && u.Fragment == "" {
		return site + "/", nil
	}
	return site, nil
}
