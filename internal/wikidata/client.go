package wikidata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"fantamorto/internal/platform/config"
)

const (
	endpointSearch = "search"
	endpointSPARQL = "sparql"

	// UnknownLabel is used when the knowledge base returns no label.
	UnknownLabel = "Sconosciuto"
)

// Candidate is one ranked search hit.
type Candidate struct {
	ID          string
	Label       string
	Description string
}

// Fact is the biography of one entity.
type Fact struct {
	ID        string
	Label     string
	BirthDate string // raw value, may carry a time component
	DeathDate string
	URL       string
}

// Client talks to the Wikidata search API and the SPARQL endpoint.
type Client struct {
	http      *resty.Client
	searchURL string
	sparqlURL string
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRetries enables in-call retries on 5xx and 429 answers.
func WithRetries(count int, wait time.Duration) Option {
	return func(c *Client) {
		c.http.SetRetryCount(count).
			SetRetryWaitTime(wait).
			SetRetryMaxWaitTime(4 * wait).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
			})
	}
}

// NewClient builds a client for the configured endpoints.
func NewClient(cfg config.Wikidata, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetTimeout(cfg.Timeout).
			SetHeader("User-Agent", cfg.UserAgent).
			SetHeader("Accept", "application/json"),
		searchURL: cfg.SearchURL,
		sparqlURL: cfg.SPARQLURL,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Search []struct {
		ID          string `json:"id"`
		Label       string `json:"label"`
		Description string `json:"description"`
	} `json:"search"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// Search returns the ranked candidates for a free-text name.
func (c *Client) Search(ctx context.Context, name, locale string) ([]Candidate, error) {
	var out searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"action":   "wbsearchentities",
			"format":   "json",
			"language": locale,
			"search":   name,
			"type":     "item",
		}).
		SetResult(&out).
		Get(c.searchURL)
	if err := classify(endpointSearch, resp, err); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, NewProviderError(ErrorBadData, endpointSearch, out.Error.Code+": "+out.Error.Info, nil)
	}

	candidates := make([]Candidate, 0, len(out.Search))
	for _, r := range out.Search {
		candidates = append(candidates, Candidate{ID: r.ID, Label: r.Label, Description: r.Description})
	}
	c.logger.DebugContext(ctx, "wikidata search", "name", name, "candidates", len(candidates))
	return candidates, nil
}

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// Facts runs one SPARQL query for the given ids. Callers keep batches small
// enough for the endpoint's limits.
func (c *Client) Facts(ctx context.Context, ids []string, locale string) ([]Fact, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out sparqlResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/sparql-results+json").
		SetQueryParams(map[string]string{
			"query":  FactsQuery(ids, locale),
			"format": "json",
		}).
		SetResult(&out).
		ForceContentType("application/json").
		Get(c.sparqlURL)
	if err := classify(endpointSPARQL, resp, err); err != nil {
		return nil, err
	}

	facts := make([]Fact, 0, len(out.Results.Bindings))
	for _, b := range out.Results.Bindings {
		uri := b["person"].Value
		if uri == "" {
			continue
		}
		label := b["personLabel"].Value
		if label == "" {
			label = UnknownLabel
		}
		facts = append(facts, Fact{
			ID:        uri[strings.LastIndex(uri, "/")+1:],
			Label:     label,
			BirthDate: b["birthDate"].Value,
			DeathDate: b["deathDate"].Value,
			URL:       uri,
		})
	}
	c.logger.DebugContext(ctx, "wikidata facts", "ids", len(ids), "rows", len(facts))
	return facts, nil
}

// FactsQuery builds the SPARQL query for birth and death dates of ids, with
// labels in locale falling back to English.
func FactsQuery(ids []string, locale string) string {
	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = "wd:" + id
	}
	languages := locale
	if locale != "en" {
		languages += ",en"
	}
	return fmt.Sprintf(`SELECT ?person ?personLabel ?birthDate ?deathDate WHERE {
  VALUES ?person { %s }
  OPTIONAL { ?person wdt:P569 ?birthDate. }
  OPTIONAL { ?person wdt:P570 ?deathDate. }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "%s". }
}`, strings.Join(values, " "), languages)
}

func classify(endpoint string, resp *resty.Response, err error) error {
	if err != nil {
		var netErr net.Error
		switch {
		case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
			return NewProviderError(ErrorTimeout, endpoint, "request timed out", err)
		case errors.Is(err, context.Canceled):
			return NewProviderError(ErrorInternal, endpoint, "request canceled", err)
		default:
			// Unmarshal failures surface here as well as transport errors.
			if resp != nil && resp.StatusCode() == http.StatusOK {
				return NewProviderError(ErrorBadData, endpoint, "decode response", err)
			}
			return NewProviderError(ErrorProviderOutage, endpoint, "request failed", err)
		}
	}
	switch code := resp.StatusCode(); {
	case code == http.StatusTooManyRequests:
		return NewProviderError(ErrorRateLimited, endpoint, resp.Status(), nil)
	case code >= 500:
		return NewProviderError(ErrorProviderOutage, endpoint, resp.Status(), nil)
	case code >= 400:
		return NewProviderError(ErrorBadData, endpoint, resp.Status(), nil)
	}
	return nil
}
