package search

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTrusted(t *testing.T) {
	tests := []struct {
		url    string
		domain string
		ok     bool
	}{
		{"https://www.mayoclinic.org/diseases/malaria", "mayoclinic.org", true},
		{"https://who.int/news", "who.int", true},
		{"https://WWW.NHS.UK/conditions/", "nhs.uk", true},
		{"https://en.wikipedia.org/wiki/Malaria", "", false},
		{"https://notmayoclinic.org/x", "", false},
		{"https://mayoclinic.org.evil.com/x", "", false},
		{"", "", false},
		{"::bad", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.url, func(t *testing.T) {
			domain, ok := Trusted(tc.url, TrustedDomains)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.domain, domain)
		})
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "Malaria is spread by mosquitoes.", Clean("  Malaria  is spread\n by mosquitoes.[12] "))
}

func TestCitation(t *testing.T) {
	r := Result{Snippet: "Rest and  fluids.[1]", Source: "cdc.gov"}
	assert.Equal(t, "According to cdc.gov: Rest and fluids.", r.Citation())
	assert.Equal(t, "According to medical sources: x", Result{Snippet: "x"}.Citation())
}

const instantAnswerBody = `{
  "Heading": "Malaria",
  "Abstract": "Malaria is a mosquito-borne infectious disease.",
  "AbstractURL": "https://en.wikipedia.org/wiki/Malaria",
  "RelatedTopics": [
    {"Text": "Malaria prevention - CDC", "FirstURL": "https://www.cdc.gov/malaria_prevention"},
    {"Name": "See also", "Topics": []},
    {"Text": "Malaria fact sheet", "FirstURL": "https://www.who.int/news-room/Malaria_fact_sheet"},
    {"Text": "Malaria overview", "FirstURL": "https://www.mayoclinic.org/malaria"}
  ]
}`

func TestDuckDuckGo(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("q")
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("no_html"))
		assert.Equal(t, "1", r.URL.Query().Get("skip_disambig"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(instantAnswerBody))
	}))
	defer srv.Close()

	ddg := NewDuckDuckGo(time.Second, 5)
	ddg.Endpoint = srv.URL + "/"

	results, err := ddg.Search(context.Background(), " malaria ")
	require.NoError(t, err)
	assert.Equal(t, "malaria health medical", query)

	// the wikipedia abstract is dropped and only the first three related
	// topics are considered
	require.Len(t, results, 2)
	assert.Equal(t, Result{
		Title:   "malaria prevention",
		Snippet: "Malaria prevention - CDC",
		URL:     "https://www.cdc.gov/malaria_prevention",
		Source:  "cdc.gov",
	}, results[0])
	assert.Equal(t, "who.int", results[1].Source)
	assert.Equal(t, "Malaria fact sheet", results[1].Title)
}

func TestDuckDuckGoMaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(instantAnswerBody))
	}))
	defer srv.Close()

	ddg := NewDuckDuckGo(time.Second, 1)
	ddg.Endpoint = srv.URL + "/"
	results, err := ddg.Search(context.Background(), "malaria")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "cdc.gov", results[0].Source)
}

func TestDuckDuckGoErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ddg := NewDuckDuckGo(time.Second, 5)
	ddg.Endpoint = srv.URL + "/"
	_, err := ddg.Search(context.Background(), "malaria")
	assert.Error(t, err)

	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{"))
	}))
	defer srv2.Close()
	ddg.Endpoint = srv2.URL + "/"
	_, err = ddg.Search(context.Background(), "malaria")
	assert.Error(t, err)
}

type countingSearcher struct {
	calls   int
	results []Result
	err     error
}

func (c *countingSearcher) Search(ctx context.Context, query string) ([]Result, error) {
	c.calls++
	return c.results, c.err
}

func TestCached(t *testing.T) {
	inner := &countingSearcher{results: []Result{{Snippet: "x", Source: "cdc.gov"}}}
	c := NewCached(inner, time.Minute)

	r1, err := c.Search(context.Background(), "Malaria  symptoms")
	require.NoError(t, err)
	r2, err := c.Search(context.Background(), "malaria symptoms")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, c.Len())

	inner.err = errors.New("down")
	_, err = c.Search(context.Background(), "fever")
	assert.Error(t, err)
	assert.Equal(t, 1, c.Len())
}
