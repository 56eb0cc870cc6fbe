package style

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matsen/refcheck/internal/reference"
)

var (
	harvardYear     = regexp.MustCompile(`\(((?:1[6-9]|20)\d{2})[a-z]?\)[,.]?`)
	harvardLeadYear = regexp.MustCompile(`^[^()]{2,250}?\((?:1[6-9]|20)\d{2}[a-z]?\)(?:,|\s|$)`)
	harvardPages    = regexp.MustCompile(`\bpp?(?:\.\s*|\s+)(\d+[a-z]?(?:\s*-\s*\d+[a-z]?)?)`)
	harvardVolume   = regexp.MustCompile(`,\s*(?:vol\.\s*)?(\d+)(?:\s*\(([^)]*)\))?\s*(?:,|\.|$)`)
)

// harvardParser handles narrative author-date lists with quoted titles and
// "pp." page ranges:
//
//	Black, J. and Barnes, J.L. (2015) 'Title', Journal, 9(4), pp. 423-429.
type harvardParser struct{}

func (harvardParser) Style() reference.Style { return reference.StyleAuthorDate }

// Score needs two agreeing signals for most of its weight: an unpunctuated
// year after the names together with a single-quoted title or "pp.".
func (harvardParser) Score(sample string) float64 {
	s := strings.TrimSpace(sample)
	lead := harvardLeadYear.MatchString(s)
	single := quotedSolo.MatchString(s)
	pages := ppLabel.MatchString(s)

	score := 0.0
	if lead {
		score += 0.3
	}
	switch {
	case single && lead:
		score += 0.3
	case single:
		score += 0.1
	}
	if pages {
		score += 0.15
	}
	if surnameInit.MatchString(s) || surnameInitials.MatchString(s) {
		score += 0.1
	}
	if !numbered(s) {
		score += 0.05
	}
	if lead && (single || pages) {
		score += 0.1
	}
	if apaLeadYear.MatchString(s) {
		score -= 0.1
	}
	return clamp(score)
}

func (harvardParser) Split(section string) []reference.RawEntry {
	return splitAuthorDate(section)
}

func (harvardParser) Parse(entry reference.RawEntry) reference.Reference {
	ref := newReference(entry)
	var text string
	ref.Identifier, text = extractDOI(entry.Text)
	text = stripURLs(text)

	loc := harvardYear.FindStringSubmatchIndex(text)
	if loc == nil {
		return parseUndated(ref, text)
	}
	ref.Authors = splitAuthorList(strings.TrimRight(text[:loc[0]], " ,;:"))
	ref.Year = atoi(text[loc[2]:loc[3]])

	rest := strings.TrimLeft(text[loc[1]:], " ,.")
	title := ""
	if strings.HasPrefix(rest, "'") {
		if end := closingQuote(rest); end > 0 {
			title = rest[1:end]
			rest = rest[end+1:]
		}
	}
	if title == "" {
		head, tail, ok := splitSentence(rest)
		if !ok {
			head, tail, _ = strings.Cut(rest, ", ")
		}
		title, rest = head, tail
	}
	ref.Title = trimField(title)
	rest = strings.TrimLeft(rest, " ,.")

	cut := len(rest)
	if m := harvardPages.FindStringSubmatchIndex(rest); m != nil {
		ref.Pages = strings.ReplaceAll(rest[m[2]:m[3]], " ", "")
		cut = m[0]
	}
	if m := harvardVolume.FindStringSubmatchIndex(rest[:cut]); m != nil {
		ref.Volume = rest[m[2]:m[3]]
		cut = m[0]
	}
	ref.Venue = trimField(strings.TrimPrefix(rest[:cut], "in "))
	return ref
}

// closingQuote returns the index of the quote that closes a single-quoted
// title starting at s[0], skipping apostrophes inside words.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		if s[i] != '\'' {
			continue
		}
		if i+1 == len(s) || strings.IndexByte(",.;:", s[i+1]) >= 0 {
			return i
		}
		if s[i+1] == ' ' {
			prev, _ := utf8.DecodeLastRuneInString(s[:i])
			if !unicode.IsLetter(prev) {
				return i
			}
		}
	}
	return -1
}
