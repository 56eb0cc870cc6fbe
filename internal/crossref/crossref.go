// Package crossref queries the CrossRef works API, the primary
// bibliographic index.
package crossref

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/matsen/refcheck/internal/reference"
	"github.com/matsen/refcheck/internal/source"
)

const (
	// Name identifies CrossRef in verdicts.
	Name = "crossref"

	// BaseURL is the CrossRef REST API.
	BaseURL = "https://api.crossref.org"

	// RateLimit is requests per second; the polite pool allows more but
	// this stays well under it.
	RateLimit = 10.0

	// Rows is how many search results are requested.
	Rows = 3
)

// Client is a CrossRef source.
type Client struct {
	http    *source.Client
	baseURL string
	mailto  string
}

// Option configures a Client.
type Option func(*Client)

// WithMailto identifies the caller for CrossRef's polite pool.
func WithMailto(addr string) Option {
	return func(c *Client) { c.mailto = addr }
}

// WithBaseURL points the client elsewhere (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the HTTP transport.
func WithHTTPClient(d source.Doer) Option {
	return func(c *Client) { c.http.HTTP = d }
}

// New creates a CrossRef client.
func New(opts ...Option) *Client {
	c := &Client{
		http:    source.NewClient(Name, RateLimit),
		baseURL: BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.mailto != "" {
		c.http.Header.Set("User-Agent", fmt.Sprintf("%s (mailto:%s)", source.UserAgent, c.mailto))
	}
	return c
}

// Name implements source.Source.
func (c *Client) Name() string { return Name }

// Search implements source.Source. A DOI is looked up directly; when the
// lookup misses, the bibliographic search still runs.
func (c *Client) Search(ctx context.Context, q source.Query) ([]reference.Candidate, error) {
	if q.DOI != "" {
		cand, err := c.lookup(ctx, q.DOI)
		if err == nil {
			return []reference.Candidate{cand}, nil
		}
		if !source.IsNoMatch(err) {
			return nil, err
		}
	}
	if q.Title == "" && len(q.Authors) == 0 {
		return nil, source.ErrNoMatch
	}

	params := url.Values{}
	params.Set("rows", strconv.Itoa(Rows))
	if q.Title != "" {
		params.Set("query.bibliographic", q.Title)
	}
	if a := q.FirstAuthor(); a != "" {
		params.Set("query.author", a)
	}
	if c.mailto != "" {
		params.Set("mailto", c.mailto)
	}

	var resp searchResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/works?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("querying crossref: %w", err)
	}
	if len(resp.Message.Items) == 0 {
		return nil, source.ErrNoMatch
	}

	out := make([]reference.Candidate, 0, len(resp.Message.Items))
	for _, w := range resp.Message.Items {
		out = append(out, w.candidate())
	}
	return out, nil
}

func (c *Client) lookup(ctx context.Context, doi string) (reference.Candidate, error) {
	var resp workResponse
	// DOIs contain slashes that are part of the path.
	u := c.baseURL + "/works/" + (&url.URL{Path: doi}).EscapedPath()
	if c.mailto != "" {
		u += "?mailto=" + url.QueryEscape(c.mailto)
	}
	if err := c.http.GetJSON(ctx, u, &resp); err != nil {
		return reference.Candidate{}, fmt.Errorf("looking up DOI %s: %w", doi, err)
	}
	return resp.Message.candidate(), nil
}

type searchResponse struct {
	Status  string `json:"status"`
	Message struct {
		Items []work `json:"items"`
	} `json:"message"`
}

type workResponse struct {
	Status  string `json:"status"`
	Message work   `json:"message"`
}

type work struct {
	DOI            string   `json:"DOI"`
	URL            string   `json:"URL"`
	Title          []string `json:"title"`
	ContainerTitle []string `json:"container-title"`
	Author         []struct {
		Given  string `json:"given"`
		Family string `json:"family"`
		Name   string `json:"name"`
	} `json:"author"`
	Published      dateParts `json:"published"`
	PublishedPrint dateParts `json:"published-print"`
	Issued         dateParts `json:"issued"`
	Abstract       string    `json:"abstract"`
	Score          float64   `json:"score"`
}

type dateParts struct {
	DateParts [][]*int `json:"date-parts"`
}

func (d dateParts) year() int {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 || d.DateParts[0][0] == nil {
		return 0
	}
	return *d.DateParts[0][0]
}

func (w work) candidate() reference.Candidate {
	c := reference.Candidate{
		Source:   Name,
		DOI:      w.DOI,
		URL:      w.URL,
		Abstract: StripJATS(w.Abstract),
	}
	if len(w.Title) > 0 {
		c.Title = strings.TrimSpace(w.Title[0])
	}
	if len(w.ContainerTitle) > 0 {
		c.Venue = w.ContainerTitle[0]
	}
	for _, a := range w.Author {
		name := strings.TrimSpace(strings.Join([]string{a.Given, a.Family}, " "))
		if name == "" {
			name = a.Name
		}
		if name != "" {
			c.Authors = append(c.Authors, name)
		}
	}
	for _, d := range []dateParts{w.Published, w.PublishedPrint, w.Issued} {
		if y := d.year(); y != 0 {
			c.Year = y
			break
		}
	}
	return c
}

var (
	jatsTag    = regexp.MustCompile(`<[^>]+>`)
	whitespace = regexp.MustCompile(`\s+`)
)

// StripJATS removes the JATS XML markup CrossRef leaves in abstracts.
func StripJATS(s string) string {
	if s == "" {
		return ""
	}
	s = jatsTag.ReplaceAllString(s, " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
