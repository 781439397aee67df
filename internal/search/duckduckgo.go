package search

import (
	"context"
	"fmt"
	"github.com/goccy/go-json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultEndpoint   = "https://api.duckduckgo.com/"
	DefaultMaxResults = 5
	relatedTopics     = 3
)

// DuckDuckGo queries the DuckDuckGo Instant Answer API.
type DuckDuckGo struct {
	Endpoint   string
	Client     *http.Client
	MaxResults int
	Domains    []string
	Logger     *slog.Logger
}

func NewDuckDuckGo(timeout time.Duration, maxResults int) *DuckDuckGo {
	return &DuckDuckGo{
		Endpoint:   DefaultEndpoint,
		Client:     &http.Client{Timeout: timeout},
		MaxResults: maxResults,
		Domains:    TrustedDomains,
	}
}

type instantAnswer struct {
	Heading       string  `json:"Heading"`
	Abstract      string  `json:"Abstract"`
	AbstractURL   string  `json:"AbstractURL"`
	RelatedTopics []topic `json:"RelatedTopics"`
}

type topic struct {
	Text     string `json:"Text"`
	FirstURL string `json:"FirstURL"`
}

func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]Result, error) {
	endpoint := d.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	params := url.Values{}
	params.Set("q", strings.TrimSpace(query)+" health medical")
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var ia instantAnswer
	err = json.NewDecoder(resp.Body).Decode(&ia)
	if err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := d.collect(ia)
	d.logger().Debug("web search", "query", query, "results", len(results))
	return results, nil
}

func (d *DuckDuckGo) collect(ia instantAnswer) []Result {
	var candidates []Result
	if ia.Abstract != "" {
		title := ia.Heading
		if title == "" {
			title = "Health Information"
		}
		candidates = append(candidates, Result{Title: title, Snippet: ia.Abstract, URL: ia.AbstractURL})
	}
	for i, t := range ia.RelatedTopics {
		if i >= relatedTopics {
			break
		}
		if t.Text == "" {
			continue
		}
		candidates = append(candidates, Result{Title: topicTitle(t.FirstURL), Snippet: t.Text, URL: t.FirstURL})
	}

	domains := d.Domains
	if domains == nil {
		domains = TrustedDomains
	}
	limit := d.MaxResults
	if limit <= 0 {
		limit = DefaultMaxResults
	}

	var results []Result
	for _, c := range candidates {
		domain, ok := Trusted(c.URL, domains)
		if !ok || Clean(c.Snippet) == "" {
			continue
		}
		c.Source = domain
		results = append(results, c)
		if len(results) == limit {
			break
		}
	}
	return results
}

func topicTitle(firstURL string) string {
	i := strings.LastIndex(firstURL, "/")
	return strings.ReplaceAll(firstURL[i+1:], "_", " ")
}

func (d *DuckDuckGo) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
