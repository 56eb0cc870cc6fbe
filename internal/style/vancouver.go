package style

import (
	"regexp"
	"strings"

	"github.com/matsen/refcheck/internal/reference"
)

var (
	vancouverMarker = regexp.MustCompile(`^\s*\d{1,3}[.)]?\s+`)
	vancouverEntry  = regexp.MustCompile(`^(.+?)\.\s+(.+?)[.?]\s+(.+?)\.\s+((?:1[6-9]|20)\d{2})(?:\s+[A-Z][a-z]{2}(?:\s+\d{1,2})?)?\s*;\s*(\d+)?(?:\s*\(([^)]+)\))?(?:\s*:\s*([\w-]+))?`)
	vancouverTail   = regexp.MustCompile(`;\s*(\d+)?(?:\s*\(([^)]+)\))?(?:\s*:\s*([\w-]+))?`)
	yearSemicolon   = regexp.MustCompile(`(?:1[6-9]|20)\d{2}[^;]{0,12};\s*\d+`)
)

// vancouverParser handles numbered lists in the Vancouver/AMA manner:
//
//	1. Halpern SD, Ubel PA. Title. N Engl J Med. 2002 Jul 25;347(4):284-7.
//
// Unnumbered lists in the same format are also accepted.
type vancouverParser struct{}

func (vancouverParser) Style() reference.Style { return reference.StyleNumberedSuperscript }

func (vancouverParser) Score(sample string) float64 {
	s := strings.TrimSpace(sample)
	score := 0.0
	if _, ok := numberedStart(s); ok {
		score += 0.2
	}
	body := vancouverMarker.ReplaceAllString(s, "")
	if surnameInitials.MatchString(body) {
		score += 0.3
	}
	if yearSemicolon.MatchString(body) {
		score += 0.3
	}
	if !strings.Contains(body, `"`) {
		score += 0.1
	}
	if !parenYear.MatchString(body) {
		score += 0.1
	}
	return clamp(score)
}

func (vancouverParser) Split(section string) []reference.RawEntry {
	if entries := splitNumbered(section); len(entries) > 0 {
		return entries
	}
	if entries := splitHanging(section, vancouverStart); len(entries) > 1 {
		return entries
	}
	return genericSplit(section)
}

func (vancouverParser) Parse(entry reference.RawEntry) reference.Reference {
	ref := newReference(entry)
	text := vancouverMarker.ReplaceAllString(entry.Text, "")
	ref.Identifier, text = extractDOI(text)
	text = stripURLs(text)

	if m := vancouverEntry.FindStringSubmatch(text); m != nil {
		ref.Authors = splitAuthorList(m[1])
		ref.Title = trimField(m[2])
		ref.Venue = trimVenue(m[3])
		ref.Year = atoi(m[4])
		ref.Volume = m[5]
		ref.Pages = m[7]
		return ref
	}

	// Loose form: period-separated authors, title and source, then
	// whatever publication details are present.
	parts := strings.SplitN(text, ". ", 3)
	switch len(parts) {
	case 1:
		ref.Title = trimField(parts[0])
		ref.Year = firstYear(parts[0])
		return ref
	case 2:
		ref.Authors = splitAuthorList(parts[0])
		ref.Title = trimField(parts[1])
		ref.Year = firstYear(parts[1])
		return ref
	}
	ref.Authors = splitAuthorList(parts[0])
	ref.Title = trimField(parts[1])
	rest := parts[2]
	if loc := yearValue.FindStringSubmatchIndex(rest); loc != nil {
		ref.Year = atoi(rest[loc[2]:loc[3]])
		ref.Venue = trimVenue(rest[:loc[0]])
	} else {
		ref.Venue = trimVenue(rest)
	}
	if m := vancouverTail.FindStringSubmatch(rest); m != nil {
		ref.Volume = m[1]
		ref.Pages = m[3]
	}
	return ref
}
