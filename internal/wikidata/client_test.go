package wikidata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantamorto/internal/platform/config"
	"fantamorto/pkg/platform/sentinel"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := config.Default().Wikidata
	cfg.SearchURL = srv.URL + "/w/api.php"
	cfg.SPARQLURL = srv.URL + "/sparql"
	cfg.Timeout = 2 * time.Second
	return NewClient(cfg)
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/w/api.php", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "wbsearchentities", q.Get("action"))
		assert.Equal(t, "it", q.Get("language"))
		assert.Equal(t, "Mina", q.Get("search"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"search":[
			{"id":"Q100","label":"Mina","description":"album"},
			{"id":"Q200","label":"Mina","description":"cantante italiana, essere umano"}]}`))
	})

	got, err := c.Search(context.Background(), "Mina", "it")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Candidate{ID: "Q200", Label: "Mina", Description: "cantante italiana, essere umano"}, got[1])
}

func TestSearchErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		category  ErrorCategory
		retryable bool
	}{
		{"outage", http.StatusBadGateway, ErrorProviderOutage, true},
		{"rate limited", http.StatusTooManyRequests, ErrorRateLimited, true},
		{"bad request", http.StatusBadRequest, ErrorBadData, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := c.Search(context.Background(), "Mina", "it")
			require.Error(t, err)
			assert.Equal(t, tt.category, GetCategory(err))
			assert.Equal(t, tt.retryable, IsRetryable(err))
			assert.Equal(t, tt.retryable, errors.Is(err, sentinel.ErrUnavailable))
		})
	}
}

func TestSearchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	cfg := config.Default().Wikidata
	cfg.SearchURL = srv.URL
	c := NewClient(cfg)

	_, err := c.Search(context.Background(), "Mina", "it")
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}

func TestFacts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sparql", r.URL.Path)
		query := r.URL.Query().Get("query")
		assert.Contains(t, query, "VALUES ?person { wd:Q1 wd:Q2 }")
		assert.Contains(t, query, `wikibase:language "it,en"`)
		w.Header().Set("Content-Type", "application/sparql-results+json")
		_, _ = w.Write([]byte(`{"results":{"bindings":[
			{"person":{"value":"http://www.wikidata.org/entity/Q1"},"personLabel":{"value":"Pippo Baudo"},
			 "birthDate":{"value":"1936-06-07T00:00:00Z"},"deathDate":{"value":"2025-08-16T00:00:00Z"}},
			{"person":{"value":"http://www.wikidata.org/entity/Q2"}}]}}`))
	})

	facts, err := c.Facts(context.Background(), []string{"Q1", "Q2"}, "it")
	require.NoError(t, err)
	require.Len(t, facts, 2)
	assert.Equal(t, Fact{
		ID:        "Q1",
		Label:     "Pippo Baudo",
		BirthDate: "1936-06-07T00:00:00Z",
		DeathDate: "2025-08-16T00:00:00Z",
		URL:       "http://www.wikidata.org/entity/Q1",
	}, facts[0])
	assert.Equal(t, UnknownLabel, facts[1].Label)
	assert.Empty(t, facts[1].DeathDate)
}

func TestFactsQueryEnglishLocale(t *testing.T) {
	q := FactsQuery([]string{"Q1"}, "en")
	assert.True(t, strings.Contains(q, `wikibase:language "en"`))
}
