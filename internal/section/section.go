// Package section locates the reference list inside normalized document text.
package section

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/matsen/refcheck/internal/reference"
	"github.com/matsen/refcheck/internal/textnorm"
)

var (
	// ErrNotFound means no reference-list heading was found.
	ErrNotFound = errors.New("reference section not found")

	// ErrInvalidBounds means a manual override does not fit the document.
	ErrInvalidBounds = errors.New("invalid section bounds")
)

// numbering matches an optional heading number such as "7.", "VI.", "A)".
const numbering = `(?:(?:\d+(?:\.\d+)*|[ivxlc]+|[a-z])[.)]?\s+)?`

var headingPattern = regexp.MustCompile(`(?i)^[\s\p{P}]*` + numbering +
	`(references|references cited|references and notes|reference list|bibliography|works cited|literature cited|cited literature|citations|sources)[\s\p{P}]*$`)

var endHeadingPattern = regexp.MustCompile(`(?i)^` + numbering +
	`(appendix|appendices|supplementary (?:material|materials|information|data)|supporting information|acknowledge?ments?|author contributions|funding|conflicts? of interest|competing interests|declarations?|data availability|abbreviations|figure legends|tables?|figures?)\b`)

var (
	markerLine = regexp.MustCompile(`^(?:\[\d{1,3}\]|\d{1,3}[.)]?\s)`)
	yearToken  = regexp.MustCompile(`\b(?:1[6-9]|20)\d{2}[a-z]?\b`)
)

// Number of lines after a heading that are inspected for reference density.
const densityWindow = 8

// maxEndHeadingLen bounds how long a line can be and still count as a
// heading that terminates the section.
const maxEndHeadingLen = 60

// Bounds is a manual section override, as byte offsets into the raw document.
type Bounds struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type line struct {
	text       string
	start, end int // end excludes the newline
}

func splitLines(text string) []line {
	var lines []line
	start := 0
	for start <= len(text) {
		idx := strings.IndexByte(text[start:], '\n')
		if idx < 0 {
			lines = append(lines, line{text: text[start:], start: start, end: len(text)})
			break
		}
		lines = append(lines, line{text: text[start : start+idx], start: start, end: start + idx})
		start += idx + 1
	}
	return lines
}

// Locate finds the reference section in normalized text.
//
// Every line that is a reference-list heading is a candidate. The first
// candidate followed by a dense run of reference-like lines wins; if none
// is dense, the first candidate wins. The section runs from the line after
// the heading to the next terminating or reference heading, or the end of
// the text.
func Locate(text string) (reference.RawSection, error) {
	lines := splitLines(text)

	var candidates []int
	for i, l := range lines {
		if headingPattern.MatchString(strings.TrimSpace(l.text)) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return reference.RawSection{}, ErrNotFound
	}

	chosen := candidates[0]
	for _, c := range candidates {
		if dense(lines[c+1:]) {
			chosen = c
			break
		}
	}

	heading := lines[chosen]
	start := heading.end + 1
	if start > len(text) {
		start = len(text)
	}
	end := len(text)
	for _, l := range lines[chosen+1:] {
		if isEndHeading(l.text) || headingPattern.MatchString(strings.TrimSpace(l.text)) {
			end = l.start
			break
		}
	}

	sec := build(text, start, end)
	if strings.TrimSpace(sec.Text) == "" {
		return reference.RawSection{}, fmt.Errorf("%w: heading %q is not followed by any entries",
			ErrNotFound, strings.TrimSpace(heading.text))
	}
	return sec, nil
}

// FromBounds builds a section from a manual override. The offsets refer to
// the raw document; the returned section text is normalized.
func FromBounds(raw string, b Bounds) (reference.RawSection, error) {
	if b.Start < 0 || b.End > len(raw) || b.Start >= b.End {
		return reference.RawSection{}, fmt.Errorf("%w: [%d, %d) in a document of %d bytes",
			ErrInvalidBounds, b.Start, b.End, len(raw))
	}
	sec := build(raw, b.Start, b.End)
	sec.Text = textnorm.Normalize(sec.Text)
	return sec, nil
}

func build(text string, start, end int) reference.RawSection {
	return reference.RawSection{
		Text:      text[start:end],
		Start:     start,
		End:       end,
		FirstPage: 1 + strings.Count(text[:start], textnorm.PageBreak),
		LastPage:  1 + strings.Count(strings.TrimRight(text[:end], "\n\f "), textnorm.PageBreak),
	}
}

// dense reports whether the lines following a heading look like a
// reference list.
func dense(lines []line) bool {
	examined, refLike := 0, 0
	for _, l := range lines {
		t := strings.TrimSpace(l.text)
		if t == "" {
			continue
		}
		if isEndHeading(t) || headingPattern.MatchString(t) {
			break
		}
		examined++
		if markerLine.MatchString(t) || yearToken.MatchString(t) ||
			strings.Contains(t, "et al") || strings.Contains(strings.ToLower(t), "doi") {
			refLike++
		}
		if examined == densityWindow {
			break
		}
	}
	return refLike >= 2 && refLike*2 >= examined
}

func isEndHeading(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxEndHeadingLen {
		return false
	}
	if strings.HasPrefix(s, "[") || yearToken.MatchString(s) || strings.HasSuffix(s, ",") {
		return false
	}
	return endHeadingPattern.MatchString(s)
}
