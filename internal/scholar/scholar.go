// Package scholar scrapes Google Scholar result pages. It is the last
// resort: slow, heavily rate limited and disabled unless asked for.
package scholar

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/matsen/refcheck/internal/reference"
	"github.com/matsen/refcheck/internal/source"
)

const (
	// Name identifies Google Scholar in verdicts.
	Name = "google_scholar"

	// BaseURL is the Scholar web front end.
	BaseURL = "https://scholar.google.com"

	// Delay is the minimum gap between requests.
	Delay = 3 * time.Second

	// Results is how many hits are kept per page.
	Results = 3
)

// ErrBlocked is returned when Scholar answers with a CAPTCHA page. It
// wraps source.ErrUnavailable.
var ErrBlocked = fmt.Errorf("%w: google scholar served a captcha", source.ErrUnavailable)

// Client is a Google Scholar source.
type Client struct {
	http    *source.Client
	baseURL string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client elsewhere (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithDelay overrides the inter-request delay.
func WithDelay(d time.Duration) Option {
	return func(c *Client) { c.http.SetRate(source.Every(d)) }
}

// WithHTTPClient replaces the HTTP transport.
func WithHTTPClient(d source.Doer) Option {
	return func(c *Client) { c.http.HTTP = d }
}

// New creates a Google Scholar client.
func New(opts ...Option) *Client {
	c := &Client{
		http:    source.NewClient(Name, source.Every(Delay)),
		baseURL: BaseURL,
	}
	// Scholar rejects obvious bots outright.
	c.http.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) refcheck/0.1")
	c.http.Header.Set("Accept-Language", "en")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements source.Source.
func (c *Client) Name() string { return Name }

// Search implements source.Source. Only titled queries are sent.
func (c *Client) Search(ctx context.Context, q source.Query) ([]reference.Candidate, error) {
	if q.Title == "" {
		return nil, source.ErrNoMatch
	}
	params := url.Values{}
	params.Set("q", q.Title)
	params.Set("hl", "en")

	body, err := c.http.Get(ctx, c.baseURL+"/scholar?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("querying google scholar: %w", err)
	}
	cands, err := Parse(body)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, source.ErrNoMatch
	}
	return cands, nil
}

var (
	yearPattern = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	badge       = regexp.MustCompile(`^\[[A-Z]+\]\s*`)
)

// Parse extracts up to Results candidates from a result page.
func Parse(page []byte) ([]reference.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing scholar page: %v", source.ErrUnavailable, err)
	}
	if doc.Find("#gs_captcha_f, #gs_captcha_ccl, form#captcha-form").Length() > 0 ||
		strings.Contains(doc.Find("title").Text(), "Sorry") {
		return nil, ErrBlocked
	}

	var out []reference.Candidate
	doc.Find(".gs_ri").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		c := candidate(s)
		if c.Title != "" {
			out = append(out, c)
		}
		return len(out) < Results
	})
	return out, nil
}

func candidate(s *goquery.Selection) reference.Candidate {
	heading := s.Find(".gs_rt").First()
	link, _ := heading.Find("a").First().Attr("href")
	heading.Find(".gs_ctc, .gs_ctu, .gs_ctg, .gs_ggs").Remove()
	title := badge.ReplaceAllString(collapse(heading.Text()), "")

	c := reference.Candidate{
		Source:   Name,
		Title:    title,
		URL:      link,
		Abstract: collapse(s.Find(".gs_rs").First().Text()),
	}
	c.Authors, c.Venue, c.Year = byline(collapse(s.Find(".gs_a").First().Text()))
	return c
}

// byline splits a "authors - venue, year - host" line into its parts.
// Scholar truncates long fields with an ellipsis.
func byline(s string) (authors []string, venue string, year int) {
	parts := strings.Split(s, " - ")
	for _, a := range strings.Split(parts[0], ",") {
		a = strings.TrimSpace(strings.Trim(a, "\u2026. "))
		if a != "" {
			authors = append(authors, a)
		}
	}
	if len(parts) < 2 {
		return authors, "", 0
	}
	pub := parts[1]
	if loc := yearPattern.FindAllStringIndex(pub, -1); len(loc) > 0 {
		last := loc[len(loc)-1]
		year, _ = strconv.Atoi(pub[last[0]:last[1]])
		pub = pub[:last[0]]
	}
	venue = strings.TrimSpace(strings.Trim(pub, ", \u2026"))
	return authors, venue, year
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
