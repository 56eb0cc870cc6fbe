package verify

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matsen/refcheck/internal/reference"
	"github.com/matsen/refcheck/internal/source"
)

// fakeSource answers from a fixed table keyed by query title.
type fakeSource struct {
	name    string
	results map[string][]reference.Candidate
	err     error
	delay   time.Duration

	mu    sync.Mutex
	calls int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Search(ctx context.Context, q source.Query) ([]reference.Candidate, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	cands, ok := f.results[q.Title]
	if !ok {
		return nil, source.ErrNoMatch
	}
	return cands, nil
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var attention = reference.Reference{
	ID:      "ref_01",
	Ordinal: 1,
	Title:   "Attention is all you need",
	Authors: []string{"A. Vaswani", "N. Shazeer"},
	Year:    2017,
}

var attentionPaper = reference.Candidate{
	Title:   "Attention Is All You Need",
	Authors: []string{"Ashish Vaswani", "Noam Shazeer"},
	Year:    2017,
	DOI:     "10.48550/arXiv.1706.03762",
}

// attentionNear scores as ambiguous against attention.
var attentionNear = reference.Candidate{
	Title: "Attention is all you need for translation",
	Year:  2017,
}

func hits(title string, c reference.Candidate) map[string][]reference.Candidate {
	return map[string][]reference.Candidate{title: {c}}
}

func TestThresholds_Classify(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		score float64
		want  State
	}{
		{1, Verified},
		{0.85, Verified},
		{0.849, Ambiguous},
		{0.5, Ambiguous},
		{0.49, NoMatch},
		{0, NoMatch},
	}
	for _, tt := range tests {
		if got := th.Classify(tt.score); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestState(t *testing.T) {
	for s, want := range map[State]string{
		NotTried: "not-tried", Unavailable: "unavailable", NoMatch: "no-match",
		Ambiguous: "ambiguous", Verified: "verified", State(99): "unknown",
	} {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", s, s.String(), want)
		}
		if s.Terminal() != (s == Verified) {
			t.Errorf("%v.Terminal() = %v", s, s.Terminal())
		}
	}
}

func TestVerify_FallbackOrdering(t *testing.T) {
	primary := &fakeSource{name: "crossref", err: source.ErrUnavailable}
	secondary := &fakeSource{name: "semantic_scholar", results: hits(attention.Title, attentionPaper)}
	web := &fakeSource{name: "google_scholar", results: hits(attention.Title, attentionPaper)}

	v := New([]source.Source{primary, secondary, web}, DefaultOptions())
	got := v.Verify(context.Background(), attention)

	if got.Status != reference.StatusVerified || got.Source != "semantic_scholar" {
		t.Errorf("verdict = %s from %q, want verified from semantic_scholar", got.Status, got.Source)
	}
	if web.Calls() != 0 {
		t.Errorf("web fallback queried %d times after a verified match", web.Calls())
	}
	if len(got.Attempts) != 2 || got.Attempts[0].State != "unavailable" || got.Attempts[1].State != "verified" {
		t.Errorf("Attempts = %+v", got.Attempts)
	}
	if got.Match == nil || got.Match.DOI != attentionPaper.DOI || got.Match.Source != "semantic_scholar" {
		t.Errorf("Match = %+v", got.Match)
	}
	if got.Notes != "unavailable: crossref" {
		t.Errorf("Notes = %q", got.Notes)
	}
	if got.Confidence < 0.85 {
		t.Errorf("Confidence = %v", got.Confidence)
	}
}

func TestVerify_BestSoFar(t *testing.T) {
	primary := &fakeSource{name: "crossref", results: hits(attention.Title, attentionNear)}
	secondary := &fakeSource{name: "semantic_scholar"}

	v := New([]source.Source{primary, secondary}, DefaultOptions())
	got := v.Verify(context.Background(), attention)

	if got.Status != reference.StatusAmbiguous || got.Source != "crossref" {
		t.Errorf("verdict = %s from %q (confidence %v), want ambiguous from crossref", got.Status, got.Source, got.Confidence)
	}
	if secondary.Calls() != 1 {
		t.Errorf("secondary queried %d times, want 1", secondary.Calls())
	}
	if got.Match == nil || got.Match.Title != attentionNear.Title {
		t.Errorf("Match = %+v", got.Match)
	}
}

func TestVerify_TieKeepsEarlierSource(t *testing.T) {
	a := &fakeSource{name: "a", results: hits(attention.Title, attentionNear)}
	b := &fakeSource{name: "b", results: hits(attention.Title, attentionNear)}

	got := New([]source.Source{a, b}, DefaultOptions()).Verify(context.Background(), attention)
	if got.Source != "a" {
		t.Errorf("Source = %q, want the earlier source on a tie", got.Source)
	}
}

func TestVerify_NotFound(t *testing.T) {
	a := &fakeSource{name: "crossref"}
	b := &fakeSource{name: "semantic_scholar"}

	got := New([]source.Source{a, b}, DefaultOptions()).Verify(context.Background(), attention)
	if got.Status != reference.StatusNotFound || got.Match != nil || got.Source != "" {
		t.Errorf("verdict = %+v, want not-found without a match", got)
	}
	if got.Notes != "not found in crossref, semantic_scholar" {
		t.Errorf("Notes = %q", got.Notes)
	}
}

func TestVerify_DiscardsWeakCandidates(t *testing.T) {
	unrelated := reference.Candidate{Title: "Protein folding with language models", Year: 1990}
	a := &fakeSource{name: "crossref", results: hits(attention.Title, unrelated)}

	got := New([]source.Source{a}, DefaultOptions()).Verify(context.Background(), attention)
	if got.Status != reference.StatusNotFound || got.Match != nil {
		t.Errorf("verdict = %+v, want not-found", got)
	}
	if got.Attempts[0].State != "no-match" || got.Attempts[0].Score >= 0.3 {
		t.Errorf("Attempt = %+v", got.Attempts[0])
	}
}

func TestVerify_Timeout(t *testing.T) {
	slow := &fakeSource{name: "crossref", delay: time.Minute, results: hits(attention.Title, attentionPaper)}
	fast := &fakeSource{name: "semantic_scholar", results: hits(attention.Title, attentionPaper)}

	opts := DefaultOptions()
	opts.Timeout = 20 * time.Millisecond
	start := time.Now()
	got := New([]source.Source{slow, fast}, opts).Verify(context.Background(), attention)

	if time.Since(start) > 5*time.Second {
		t.Fatal("slow source blocked the chain")
	}
	if got.Status != reference.StatusVerified || got.Source != "semantic_scholar" {
		t.Errorf("verdict = %s from %q", got.Status, got.Source)
	}
	if got.Attempts[0].State != "unavailable" || !strings.Contains(got.Attempts[0].Error, "timed out") {
		t.Errorf("timed-out attempt = %+v", got.Attempts[0])
	}
}

func TestVerify_UnavailableReasons(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
	}{
		{"rate limited", 429, "rate limited: "},
		{"rejected key", 403, "API key rejected: "},
		{"server error", 503, "semantic_scholar API error (status 503)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s2 := &fakeSource{name: "semantic_scholar", err: &source.APIError{Source: "semantic_scholar", StatusCode: tt.status}}
			got := New([]source.Source{s2}, DefaultOptions()).Verify(context.Background(), attention)

			if got.Status != reference.StatusNotFound {
				t.Errorf("Status = %s, want not-found", got.Status)
			}
			a := got.Attempts[0]
			if a.State != "unavailable" || !strings.HasPrefix(a.Error, tt.want) {
				t.Errorf("attempt = %+v, want error starting with %q", a, tt.want)
			}
		})
	}
}

func TestVerify_EmptyQuery(t *testing.T) {
	a := &fakeSource{name: "crossref"}
	got := New([]source.Source{a}, DefaultOptions()).Verify(context.Background(), reference.Reference{Ordinal: 3})
	if got.Status != reference.StatusNotFound || a.Calls() != 0 {
		t.Errorf("verdict = %+v after %d calls", got, a.Calls())
	}
	if got.RefID != "ref_03" {
		t.Errorf("RefID = %q, want ref_03", got.RefID)
	}
}

func TestVerify_NoSources(t *testing.T) {
	got := New(nil, DefaultOptions()).Verify(context.Background(), attention)
	if got.Status != reference.StatusNotFound || got.Notes != "no sources enabled" {
		t.Errorf("verdict = %+v", got)
	}
}

func manyRefs(n int) []reference.Reference {
	refs := make([]reference.Reference, n)
	for i := range refs {
		refs[i] = attention
		refs[i].Ordinal = i + 1
		refs[i].ID = reference.RefID(i + 1)
	}
	return refs
}

func TestBatch_PreservesOrder(t *testing.T) {
	src := &fakeSource{name: "crossref", delay: time.Millisecond, results: hits(attention.Title, attentionPaper)}
	v := New([]source.Source{src}, Options{Concurrency: 4})

	verdicts, err := v.Batch(context.Background(), manyRefs(12))
	if err != nil {
		t.Fatalf("Batch() error = %v", err)
	}
	for i, vd := range verdicts {
		if vd.Ordinal != i+1 || vd.RefID != reference.RefID(i+1) {
			t.Errorf("verdict %d has ordinal %d", i, vd.Ordinal)
		}
		if vd.Status != reference.StatusVerified {
			t.Errorf("verdict %d = %s", i, vd.Status)
		}
	}
	if src.Calls() != 12 {
		t.Errorf("source called %d times, want 12", src.Calls())
	}
}

func TestBatch_Idempotent(t *testing.T) {
	mk := func() *Verifier {
		return New([]source.Source{
			&fakeSource{name: "crossref", results: hits(attention.Title, attentionNear)},
			&fakeSource{name: "semantic_scholar", results: hits(attention.Title, attentionPaper)},
		}, DefaultOptions())
	}
	refs := append(manyRefs(3), reference.Reference{ID: "ref_04", Ordinal: 4, Title: "Unknown work"})

	a, _ := mk().Batch(context.Background(), refs)
	b, _ := mk().Batch(context.Background(), refs)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated verification differs:\n%+v\n%+v", a, b)
	}
}

func TestBatch_CancelledBeforeStart(t *testing.T) {
	src := &fakeSource{name: "crossref", results: hits(attention.Title, attentionPaper)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	verdicts, err := New([]source.Source{src}, DefaultOptions()).Batch(ctx, manyRefs(3))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Batch() error = %v, want context.Canceled", err)
	}
	if len(verdicts) != 3 || src.Calls() != 0 {
		t.Fatalf("%d verdicts after %d calls", len(verdicts), src.Calls())
	}
	for _, vd := range verdicts {
		if vd.Status != reference.StatusNotFound || vd.Notes != "cancelled before verification" {
			t.Errorf("verdict = %+v", vd)
		}
	}
}

// blockingSource signals when a call starts and finishes it after release.
type blockingSource struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingSource) Name() string { return "crossref" }

func (b *blockingSource) Search(ctx context.Context, q source.Query) ([]reference.Candidate, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []reference.Candidate{attentionPaper}, nil
}

func TestBatch_CancelBetweenReferences(t *testing.T) {
	src := &blockingSource{started: make(chan struct{}), release: make(chan struct{})}
	v := New([]source.Source{src}, Options{Concurrency: 1})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var verdicts []reference.Verdict
	var err error
	go func() {
		verdicts, err = v.Batch(ctx, manyRefs(2))
		close(done)
	}()

	<-src.started
	cancel()
	close(src.release)
	<-done

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Batch() error = %v, want context.Canceled", err)
	}
	if verdicts[0].Status != reference.StatusVerified {
		t.Errorf("in-flight reference = %+v, want it to finish", verdicts[0])
	}
	if verdicts[1].Notes != "cancelled before verification" {
		t.Errorf("second reference = %+v, want it skipped", verdicts[1])
	}
}

func TestRun_Stats(t *testing.T) {
	src := &fakeSource{name: "crossref", results: map[string][]reference.Candidate{
		attention.Title: {attentionPaper},
		"Near miss":     {{Title: "Near misses at sea", Year: 2001}},
	}}
	res := reference.ExtractionResult{
		Source: "paper.pdf",
		References: []reference.Reference{
			attention,
			{ID: "ref_02", Ordinal: 2, Title: "Near miss", Year: 2001},
			{ID: "ref_03", Ordinal: 3, Title: "Nothing at all"},
		},
	}

	out, err := New([]source.Source{src}, DefaultOptions()).Run(context.Background(), res)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.Source != "paper.pdf" {
		t.Errorf("Source = %q", out.Source)
	}
	want := reference.Stats{Total: 3, Verified: 1, Ambiguous: 1, NotFound: 1}
	if out.Stats != want {
		t.Errorf("Stats = %+v, want %+v", out.Stats, want)
	}
}
