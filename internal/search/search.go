// Package search looks up health questions on the web and keeps only results
// from trusted medical sites.
package search

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
	// Source is the trusted domain the result was accepted for.
	Source string `json:"source"`
}

// Citation renders the result as an answer attributed to its source.
func (r Result) Citation() string {
	source := r.Source
	if source == "" {
		source = "medical sources"
	}
	return fmt.Sprintf("According to %s: %s", source, Clean(r.Snippet))
}

// TrustedDomains are the medical sites results are accepted from.
var TrustedDomains = []string{
	"mayoclinic.org",
	"webmd.com",
	"cdc.gov",
	"who.int",
	"nhs.uk",
	"healthline.com",
	"medicalnewstoday.com",
	"hopkinsmedicine.org",
	"medlineplus.gov",
	"whoafro.org",
	"ghanahealthservice.org",
	"moh.gov.gh",
}

// Trusted returns the allow listed domain serving rawURL, matching the
// domain itself or any subdomain of it.
func Trusted(rawURL string, domains []string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return "", false
	}
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return d, true
		}
	}
	return "", false
}

var (
	whitespace = regexp.MustCompile(`\s+`)
	citations  = regexp.MustCompile(`\[\d+\]`)
)

// Clean collapses whitespace and drops numeric citation markers like [3].
func Clean(snippet string) string {
	s := whitespace.ReplaceAllString(snippet, " ")
	s = citations.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
