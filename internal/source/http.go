package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// UserAgent is sent with every request.
const UserAgent = "refcheck/0.1 (+https://github.com/matsen/refcheck)"

// maxBody bounds how much of a response is read.
const maxBody = 8 << 20

// Doer is the subset of *http.Client used by sources.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is rate-limited HTTP plumbing shared by the source packages. The
// limiter is the only state carried between calls.
type Client struct {
	Name    string
	HTTP    Doer
	Limiter *rate.Limiter
	Header  http.Header
}

// NewClient returns a client allowing perSecond requests per second.
func NewClient(name string, perSecond float64) *Client {
	return &Client{
		Name:    name,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
		Limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		Header:  http.Header{},
	}
}

// Every converts a fixed inter-request delay to a limit.
func Every(d time.Duration) float64 {
	return float64(rate.Every(d))
}

// SetRate changes the requests-per-second limit.
func (c *Client) SetRate(perSecond float64) {
	c.Limiter.SetLimit(rate.Limit(perSecond))
}

// Get fetches url and returns the body of a successful response.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := CheckResponse(c.Name, resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}
	return body, nil
}

// GetJSON fetches url and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", ErrUnavailable, c.Name, err)
	}
	return nil
}

// CheckResponse returns an *APIError for non-2xx responses.
func CheckResponse(name string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	msg := ""
	if b, err := io.ReadAll(io.LimitReader(resp.Body, 512)); err == nil {
		msg = strings.TrimSpace(string(b))
	}
	return &APIError{Source: name, StatusCode: resp.StatusCode, Message: msg}
}
