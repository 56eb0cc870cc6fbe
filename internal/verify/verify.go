// Package verify checks extracted references against an ordered chain of
// bibliographic sources.
//
// Each reference walks the chain in order. A source is asked only while no
// earlier source has produced a verified match; the best candidate seen so
// far is kept, so a reference that is never verified still reports its
// closest match. Source calls time out on their own and an in-flight call
// is never interrupted by cancellation: cancellation only stops references
// that have not started.
package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matsen/refcheck/internal/logging"
	"github.com/matsen/refcheck/internal/match"
	"github.com/matsen/refcheck/internal/reference"
	"github.com/matsen/refcheck/internal/source"
)

// Defaults for Options.
const (
	DefaultConcurrency = 4
	DefaultTimeout     = 30 * time.Second
)

// Options configure a Verifier.
type Options struct {
	Thresholds  Thresholds
	Concurrency int
	Timeout     time.Duration
	Logger      *log.Logger
}

// DefaultOptions returns the standard options.
func DefaultOptions() Options {
	return Options{
		Thresholds:  DefaultThresholds(),
		Concurrency: DefaultConcurrency,
		Timeout:     DefaultTimeout,
	}
}

// Verifier runs the fallback chain. It holds no per-reference state and is
// safe for concurrent use.
type Verifier struct {
	sources []source.Source
	opts    Options
	logger  *log.Logger
}

// New creates a verifier querying sources in the given order.
func New(sources []source.Source, opts Options) *Verifier {
	if opts.Thresholds == (Thresholds{}) {
		opts.Thresholds = DefaultThresholds()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Verifier{sources: sources, opts: opts, logger: logger}
}

// Sources returns the names of the chain in order.
func (v *Verifier) Sources() []string {
	names := make([]string, len(v.sources))
	for i, s := range v.sources {
		names[i] = s.Name()
	}
	return names
}

// best is the running winner across the chain.
type best struct {
	found     bool
	score     float64
	source    string
	candidate reference.Candidate
}

// Verify runs the chain for one reference.
func (v *Verifier) Verify(ctx context.Context, ref reference.Reference) reference.Verdict {
	verdict := reference.Verdict{
		RefID:   ref.ID,
		Ordinal: ref.Ordinal,
		Title:   ref.Title,
	}
	if verdict.RefID == "" {
		verdict.RefID = reference.RefID(ref.Ordinal)
	}

	q := source.QueryFor(ref)
	if q.Empty() {
		verdict.Status = reference.StatusNotFound
		verdict.Notes = "nothing to query: no title, authors or identifier"
		return verdict
	}

	var win best
	for _, src := range v.sources {
		attempt, cand, score := v.try(ctx, src, ref, q)
		verdict.Attempts = append(verdict.Attempts, attempt)

		if cand != nil && (!win.found || score > win.score) {
			win = best{found: true, score: score, source: src.Name(), candidate: *cand}
		}
		if win.found && v.opts.Thresholds.Classify(win.score).Terminal() {
			break
		}
	}

	v.decide(&verdict, win)
	v.logger.Info("ref "+string(verdict.Status), "ordinal", ref.Ordinal, "source", verdict.Source,
		"confidence", verdict.Confidence)
	return verdict
}

// try asks one source and scores its answer. cand is nil when the source
// produced nothing worth keeping.
func (v *Verifier) try(ctx context.Context, src source.Source, ref reference.Reference, q source.Query) (reference.Attempt, *reference.Candidate, float64) {
	attempt := reference.Attempt{Source: src.Name()}

	// The call finishes or times out on its own; cancelling ctx must not
	// abandon it half sent.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), v.opts.Timeout)
	defer cancel()

	cands, err := src.Search(callCtx, q)
	switch {
	case err == nil && len(cands) == 0, source.IsNoMatch(err):
		attempt.State = NoMatch.String()
		return attempt, nil, 0
	case err != nil:
		// Anything other than a clean miss means the source could not answer.
		msg := err.Error()
		switch {
		case errors.Is(callCtx.Err(), context.DeadlineExceeded):
			msg = fmt.Sprintf("timed out after %s", v.opts.Timeout)
		case source.IsRateLimited(err):
			msg = "rate limited: " + msg
		case source.IsAuthError(err):
			msg = "API key rejected: " + msg
		}
		v.logger.Warn("source unavailable", "source", src.Name(), "ordinal", ref.Ordinal, "err", msg)
		attempt.State = Unavailable.String()
		attempt.Error = msg
		return attempt, nil, 0
	}

	i, b := match.Best(ref, cands)
	attempt.Score = b.Total
	if b.Total < v.opts.Thresholds.Discard {
		attempt.State = NoMatch.String()
		return attempt, nil, b.Total
	}
	attempt.State = v.opts.Thresholds.Classify(b.Total).String()
	cand := cands[i]
	if cand.Source == "" {
		cand.Source = src.Name()
	}
	return attempt, &cand, b.Total
}

// decide turns the chain's best candidate into a final status.
func (v *Verifier) decide(verdict *reference.Verdict, win best) {
	verdict.Confidence = win.score
	switch {
	case !win.found:
		verdict.Status = reference.StatusNotFound
	case win.score >= v.opts.Thresholds.Verified:
		verdict.Status = reference.StatusVerified
	case win.score >= v.opts.Thresholds.NoMatch:
		verdict.Status = reference.StatusAmbiguous
	default:
		verdict.Status = reference.StatusNotFound
	}

	if verdict.Status != reference.StatusNotFound {
		c := win.candidate
		verdict.Source = win.source
		verdict.Match = &c
	}
	verdict.Notes = notes(verdict)
}

func notes(verdict *reference.Verdict) string {
	var missed, down []string
	for _, a := range verdict.Attempts {
		switch a.State {
		case Unavailable.String():
			down = append(down, a.Source)
		case NoMatch.String(), Ambiguous.String():
			if verdict.Status == reference.StatusNotFound {
				missed = append(missed, a.Source)
			}
		}
	}
	var parts []string
	if verdict.Status == reference.StatusNotFound {
		if len(verdict.Attempts) == 0 {
			parts = append(parts, "no sources enabled")
		} else if len(missed) > 0 {
			parts = append(parts, "not found in "+strings.Join(missed, ", "))
		}
	}
	if len(down) > 0 {
		parts = append(parts, "unavailable: "+strings.Join(down, ", "))
	}
	return strings.Join(parts, "; ")
}

// Batch verifies refs with bounded concurrency and returns one verdict per
// reference in input order. When ctx is cancelled, references not yet
// started are reported as not found and ctx's error is returned alongside
// the partial result.
func (v *Verifier) Batch(ctx context.Context, refs []reference.Reference) ([]reference.Verdict, error) {
	verdicts := make([]reference.Verdict, len(refs))

	var g errgroup.Group
	g.SetLimit(v.opts.Concurrency)
	for i, ref := range refs {
		if ctx.Err() != nil {
			verdicts[i] = cancelled(ref)
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				verdicts[i] = cancelled(ref)
				return nil
			}
			verdicts[i] = v.Verify(ctx, ref)
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	if err := ctx.Err(); err != nil {
		return verdicts, fmt.Errorf("verification interrupted: %w", err)
	}
	return verdicts, nil
}

func cancelled(ref reference.Reference) reference.Verdict {
	id := ref.ID
	if id == "" {
		id = reference.RefID(ref.Ordinal)
	}
	return reference.Verdict{
		RefID:   id,
		Ordinal: ref.Ordinal,
		Title:   ref.Title,
		Status:  reference.StatusNotFound,
		Notes:   "cancelled before verification",
	}
}

// Run verifies an extraction result.
func (v *Verifier) Run(ctx context.Context, res reference.ExtractionResult) (reference.VerificationResult, error) {
	start := time.Now()
	verdicts, err := v.Batch(ctx, res.References)
	out := reference.NewVerificationResult(verdicts)
	out.Source = res.Source
	v.logger.Info("verification finished", "total", out.Stats.Total, "verified", out.Stats.Verified,
		"ambiguous", out.Stats.Ambiguous, "not_found", out.Stats.NotFound, "elapsed", time.Since(start).Round(time.Millisecond))
	return out, err
}
