// Package s2 queries the Semantic Scholar graph API, the secondary
// academic index.
package s2

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/matsen/refcheck/internal/reference"
	"github.com/matsen/refcheck/internal/source"
)

const (
	// Name identifies Semantic Scholar in verdicts.
	Name = "semantic_scholar"

	// BaseURL is the S2 graph API base URL.
	BaseURL = "https://api.semanticscholar.org/graph/v1"

	// RateLimit is the unauthenticated limit of one request per second.
	RateLimit = 1.0

	// KeyedRateLimit applies when an API key is configured.
	KeyedRateLimit = 10.0

	// Fields are requested for every paper.
	Fields = "title,authors,year,externalIds,abstract,tldr,venue,url"

	// Limit is how many search results are requested.
	Limit = 3
)

// Client is a Semantic Scholar source.
type Client struct {
	http      *source.Client
	baseURL   string
	apiKey    string
	perSecond float64
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the key sent in the x-api-key header.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithBaseURL points the client elsewhere (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the HTTP transport.
func WithHTTPClient(d source.Doer) Option {
	return func(c *Client) { c.http.HTTP = d }
}

// WithRateLimit overrides the requests-per-second limit.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) { c.perSecond = perSecond }
}

// New creates a Semantic Scholar client. With an API key and no explicit
// rate limit the keyed limit applies.
func New(opts ...Option) *Client {
	c := &Client{
		http:    source.NewClient(Name, RateLimit),
		baseURL: BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.apiKey != "" {
		c.http.Header.Set("x-api-key", c.apiKey)
		if c.perSecond == 0 {
			c.perSecond = KeyedRateLimit
		}
	}
	if c.perSecond > 0 {
		c.http.SetRate(c.perSecond)
	}
	return c
}

// Name implements source.Source.
func (c *Client) Name() string { return Name }

// Search implements source.Source. Papers are looked up by DOI first and
// searched by title otherwise. S2's search takes no author filter, so
// untitled queries are a miss.
func (c *Client) Search(ctx context.Context, q source.Query) ([]reference.Candidate, error) {
	if q.DOI != "" {
		p, err := c.Paper(ctx, "DOI:"+q.DOI)
		if err == nil {
			return []reference.Candidate{p.Candidate()}, nil
		}
		if !source.IsNoMatch(err) {
			return nil, err
		}
	}
	if q.Title == "" {
		return nil, source.ErrNoMatch
	}

	resp, err := c.SearchPapers(ctx, q.Title, Limit)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, source.ErrNoMatch
	}
	out := make([]reference.Candidate, 0, len(resp.Data))
	for _, p := range resp.Data {
		out = append(out, p.Candidate())
	}
	return out, nil
}

// SearchPapers runs a relevance search.
func (c *Client) SearchPapers(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	if limit <= 0 {
		limit = Limit
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("fields", Fields)
	params.Set("limit", strconv.Itoa(limit))

	var resp SearchResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/paper/search?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("searching semantic scholar: %w", err)
	}
	return &resp, nil
}

// Paper fetches one paper by S2 identifier, e.g. "DOI:10.1038/nature14539".
func (c *Client) Paper(ctx context.Context, id string) (*Paper, error) {
	u := c.baseURL + "/paper/" + (&url.URL{Path: id}).EscapedPath() + "?fields=" + url.QueryEscape(Fields)
	var p Paper
	if err := c.http.GetJSON(ctx, u, &p); err != nil {
		return nil, fmt.Errorf("fetching paper %s: %w", id, err)
	}
	return &p, nil
}

// Candidate converts a paper to a verification candidate.
func (p Paper) Candidate() reference.Candidate {
	c := reference.Candidate{
		Source:   Name,
		Title:    strings.TrimSpace(p.Title),
		Year:     p.Year,
		Venue:    p.Venue,
		DOI:      p.ExternalIDs.DOI,
		URL:      p.URL,
		Abstract: strings.TrimSpace(p.Abstract),
	}
	if p.TLDR != nil {
		c.Summary = strings.TrimSpace(p.TLDR.Text)
	}
	for _, a := range p.Authors {
		if a.Name != "" {
			c.Authors = append(c.Authors, a.Name)
		}
	}
	return c
}
