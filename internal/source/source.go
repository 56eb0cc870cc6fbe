// Package source defines the contract shared by external bibliographic
// lookup clients and the HTTP plumbing they have in common.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/matsen/refcheck/internal/reference"
)

// Source is one external metadata provider. Implementations are safe for
// concurrent use.
type Source interface {
	// Name identifies the source in verdicts and logs.
	Name() string

	// Search returns candidate matches for q. It fails with an error
	// wrapping ErrUnavailable or ErrNoMatch.
	Search(ctx context.Context, q Query) ([]reference.Candidate, error)
}

// Query is everything a source may learn about a reference. It never
// carries raw entry text or manuscript body text.
type Query struct {
	Title   string   `json:"title,omitempty"`
	Authors []string `json:"authors,omitempty"`
	Year    int      `json:"year,omitempty"`
	DOI     string   `json:"doi,omitempty"`
}

// QueryFor builds the query for an extracted reference.
func QueryFor(ref reference.Reference) Query {
	q := Query{
		Title: ref.Title,
		Year:  ref.Year,
		DOI:   reference.NormalizeDOI(ref.Identifier),
	}
	if len(ref.Authors) > 0 {
		q.Authors = append([]string(nil), ref.Authors...)
	}
	return q
}

// FirstAuthor returns the first author or "".
func (q Query) FirstAuthor() string {
	if len(q.Authors) == 0 {
		return ""
	}
	return q.Authors[0]
}

// Empty reports whether the query has nothing to search for.
func (q Query) Empty() bool {
	return q.Title == "" && len(q.Authors) == 0 && q.DOI == ""
}

// Errors returned by sources.
var (
	// ErrUnavailable covers network failures, timeouts, rate limiting and
	// server errors. The verifier moves on to the next source.
	ErrUnavailable = errors.New("source unavailable")

	// ErrNoMatch means the source answered but had nothing for the query.
	ErrNoMatch = errors.New("no match")
)

// APIError is a non-success HTTP response from a source.
type APIError struct {
	Source     string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s API error (status %d): %s", e.Source, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s API error (status %d)", e.Source, e.StatusCode)
}

// Unwrap classifies the response: a 404 is a miss, everything else means
// the source could not answer.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNoMatch
	}
	return ErrUnavailable
}

// IsUnavailable reports whether err means the source could not be queried.
// Expired deadlines count.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}

// IsNoMatch reports whether err means the source had no result.
func IsNoMatch(err error) bool {
	return errors.Is(err, ErrNoMatch)
}

// IsRateLimited reports whether err came from a 429 response.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// IsAuthError reports whether err came from a rejected API key.
func IsAuthError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden)
}
