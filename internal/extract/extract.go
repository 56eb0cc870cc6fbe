// Package extract turns document text into a structured reference list.
//
// The pipeline is: normalize the text, locate the reference section,
// classify its citation style (unless one is forced), split it into entries,
// parse each entry and aggregate the results.
package extract

import (
	"fmt"
	"math"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/matsen/refcheck/internal/logging"
	"github.com/matsen/refcheck/internal/reference"
	"github.com/matsen/refcheck/internal/section"
	"github.com/matsen/refcheck/internal/style"
	"github.com/matsen/refcheck/internal/textnorm"
)

// ErrSectionNotFound is returned when the document has no reference list.
var ErrSectionNotFound = section.ErrNotFound

// Field weights for an entry's completeness score.
const (
	weightTitle   = 0.4
	weightAuthors = 0.25
	weightYear    = 0.2
	weightVenue   = 0.15
)

// lowConfidenceBelow marks entries whose completeness falls under it.
const lowConfidenceBelow = 0.6

// Options control one extraction.
type Options struct {
	// Style forces a citation style by name or convention alias.
	Style string

	// Bounds overrides section location with offsets into the raw text.
	Bounds *section.Bounds

	// Source labels the result, typically with the input path.
	Source string

	Logger *log.Logger
}

// Extract runs the full extraction pipeline on raw document text.
func Extract(text string, opts Options) (reference.ExtractionResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	if opts.Style != "" {
		if _, err := reference.ParseStyle(opts.Style); err != nil {
			return reference.ExtractionResult{}, err
		}
	}

	var (
		sec reference.RawSection
		err error
	)
	if opts.Bounds != nil {
		sec, err = section.FromBounds(text, *opts.Bounds)
	} else {
		sec, err = section.Locate(textnorm.Normalize(text))
	}
	if err != nil {
		return reference.ExtractionResult{}, fmt.Errorf("locating reference section: %w", err)
	}
	logger.Debug("located reference section", "start", sec.Start, "end", sec.End,
		"pages", fmt.Sprintf("%d-%d", sec.FirstPage, sec.LastPage))

	cls, err := style.Resolve(sec.Text, opts.Style)
	if err != nil {
		return reference.ExtractionResult{}, err
	}
	logger.Debug("resolved citation style", "style", cls.Style, "score", round(cls.Score), "forced", cls.Forced)

	parser, err := style.ParserFor(cls.Style)
	if err != nil {
		return reference.ExtractionResult{}, err
	}

	entries := parser.Split(sec.Text)
	refs := make([]reference.Reference, 0, len(entries))
	for _, e := range entries {
		refs = append(refs, parser.Parse(e))
	}

	res := Aggregate(refs, cls)
	res.Source = opts.Source
	res.Section = &sec
	logger.Info("extracted references", "count", len(res.References), "style", res.Style,
		"confidence", res.Confidence)
	return res, nil
}

// Aggregate orders parsed references by ordinal, scores each one's
// completeness and derives the overall confidence as their mean.
func Aggregate(refs []reference.Reference, cls style.Classification) reference.ExtractionResult {
	out := make([]reference.Reference, len(refs))
	copy(out, refs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })

	total := 0.0
	for i := range out {
		Assess(&out[i])
		total += out[i].Completeness
	}
	confidence := 0.0
	if len(out) > 0 {
		confidence = round(total / float64(len(out)))
	}

	return reference.ExtractionResult{
		Style:       cls.Style,
		StyleForced: cls.Forced,
		StyleScore:  round(cls.Score),
		Extractor:   "rules/" + cls.Style.Convention(),
		Confidence:  confidence,
		References:  out,
	}
}

// Assess sets a reference's completeness and low-confidence flag. An entry
// with neither title nor authors is always low confidence.
func Assess(ref *reference.Reference) {
	score := 0.0
	if ref.Title != "" {
		score += weightTitle
	}
	if len(ref.Authors) > 0 {
		score += weightAuthors
	}
	if ref.Year != 0 {
		score += weightYear
	}
	if ref.Venue != "" {
		score += weightVenue
	}
	ref.Completeness = round(score)
	ref.LowConfidence = ref.Title == "" || ref.Completeness < lowConfidenceBelow
}

func round(f float64) float64 {
	return math.Round(f*1000) / 1000
}
