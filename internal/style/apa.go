package style

import (
	"regexp"
	"strings"

	"github.com/matsen/refcheck/internal/reference"
)

var (
	apaYear     = regexp.MustCompile(`\(((?:1[6-9]|20)\d{2})[a-z]?(?:,[^)]{0,30})?\)\.?|\(n\.d\.\)\.?`)
	apaSource   = regexp.MustCompile(`^(.+?),\s*(\d+)(?:\s*\(([^)]*)\))?(?:,\s*([A-Za-z]?\d+(?:-[A-Za-z]?\d+)?|[Aa]rticle\s+\S+))?`)
	apaLeadYear = regexp.MustCompile(`^[^()]{2,250}?\((?:1[6-9]|20)\d{2}[a-z]?(?:,[^)]{0,30})?\)\.`)
	surnameInit = regexp.MustCompile(`^` + particles + `\p{Lu}[\p{L}'\-]+,\s+\p{Lu}\.`)
	doiURL      = regexp.MustCompile(`(?i)https?://(?:dx\.)?doi\.org/`)
	quotedSolo  = regexp.MustCompile(`(?:^|\s)'\p{Lu}.{6,}?'(?:[,.;:]|\s|$)`)
)

// apaParser handles author-year lists with the year in parentheses after
// the names:
//
//	Smith, J., & Doe, A. (2020). Title. Journal, 26(3), 309-316. https://doi.org/...
type apaParser struct{}

func (apaParser) Style() reference.Style { return reference.StyleAuthorYear }

func (apaParser) Score(sample string) float64 {
	s := strings.TrimSpace(sample)
	score := 0.0
	if apaLeadYear.MatchString(s) {
		score += 0.35
	}
	if surnameInit.MatchString(s) {
		score += 0.2
	}
	if !strings.Contains(s, `"`) && !quotedSolo.MatchString(s) {
		score += 0.15
	}
	if doiURL.MatchString(s) {
		score += 0.1
	}
	if !numbered(s) {
		score += 0.1
	}
	if !ppLabel.MatchString(s) {
		score += 0.1
	}
	return clamp(score)
}

func (apaParser) Split(section string) []reference.RawEntry {
	return splitAuthorDate(section)
}

func (apaParser) Parse(entry reference.RawEntry) reference.Reference {
	ref := newReference(entry)
	var text string
	ref.Identifier, text = extractDOI(entry.Text)
	text = stripURLs(text)

	loc := apaYear.FindStringSubmatchIndex(text)
	if loc == nil {
		return parseUndated(ref, text)
	}
	ref.Authors = splitAuthorList(strings.TrimRight(text[:loc[0]], " ,;:"))
	if loc[2] >= 0 {
		ref.Year = atoi(text[loc[2]:loc[3]])
	}

	rest := strings.TrimSpace(text[loc[1]:])
	title, tail, _ := splitSentence(rest)
	ref.Title = trimField(title)

	tail = strings.TrimSpace(tail)
	if m := apaSource.FindStringSubmatch(tail); m != nil {
		ref.Venue = trimVenue(m[1])
		ref.Volume = m[2]
		ref.Pages = m[4]
	} else {
		ref.Venue = trimField(tail)
	}
	return ref
}

// splitAuthorDate is the splitter shared by the two author-date styles.
func splitAuthorDate(section string) []reference.RawEntry {
	if entries := splitHanging(section, authorDateStart); len(entries) > 1 {
		return entries
	}
	if entries := splitParagraphs(section); len(entries) > 1 {
		return entries
	}
	return genericSplit(section)
}

// parseUndated handles an author-date entry with no parenthesized year:
// the first sentence is taken as the authors and the second as the title.
func parseUndated(ref reference.Reference, text string) reference.Reference {
	head, tail, ok := splitSentence(text)
	if !ok {
		ref.Title = trimField(text)
		ref.Year = firstYear(text)
		return ref
	}
	ref.Authors = splitAuthorList(head)
	title, rest, _ := splitSentence(tail)
	ref.Title = trimField(title)
	ref.Year = firstYear(rest)
	ref.Venue = trimField(strings.SplitN(rest, ",", 2)[0])
	return ref
}

// numbered reports whether s opens with a bracket or list number.
func numbered(s string) bool {
	if ieeeMarker.MatchString(s) {
		return true
	}
	_, ok := numberedStart(s)
	return ok
}
