package style

import (
	"regexp"
	"strings"

	"github.com/matsen/refcheck/internal/reference"
)

var (
	ieeeMarker    = regexp.MustCompile(`^\s*\[\d{1,3}\]\s*`)
	quotedTitle   = regexp.MustCompile(`"([^"]+)"`)
	ieeeVolume    = regexp.MustCompile(`\bvol\.\s*([^,\s]+)`)
	ieeeIssue     = regexp.MustCompile(`\bno\.\s*([^,\s]+)`)
	ieeePages     = regexp.MustCompile(`\bpp?\.\s*(\d+[a-z]?(?:\s*-\s*\d+[a-z]?)?)`)
	ppLabel       = regexp.MustCompile(`\bpp?(?:\.\s*|\s+)\d`)
	initialsFirst = regexp.MustCompile(`^\p{Lu}\.(?:\s?\p{Lu}\.)*\s+\p{Lu}[\p{L}'\-]+`)
)

// ieeeParser handles numbered-bracket lists:
//
//	[1] G. Liu and K. Y. Lee, "Title," IEEE Trans. Comp., vol. 46, no. 6, pp. 695-701, Jun. 1997.
type ieeeParser struct{}

func (ieeeParser) Style() reference.Style { return reference.StyleNumberedBracket }

func (ieeeParser) Score(sample string) float64 {
	s := strings.TrimSpace(sample)
	score := 0.0
	if ieeeMarker.MatchString(s) {
		score += 0.35
	}
	body := ieeeMarker.ReplaceAllString(s, "")
	if quotedTitle.MatchString(body) {
		score += 0.2
	}
	if ieeeVolume.MatchString(body) {
		score += 0.2
	}
	if ppLabel.MatchString(body) {
		score += 0.1
	}
	if initialsFirst.MatchString(body) {
		score += 0.15
	}
	return clamp(score)
}

func (ieeeParser) Split(section string) []reference.RawEntry {
	if entries := splitBracketed(section); len(entries) > 0 {
		return entries
	}
	return genericSplit(section)
}

func (ieeeParser) Parse(entry reference.RawEntry) reference.Reference {
	ref := newReference(entry)
	text := ieeeMarker.ReplaceAllString(entry.Text, "")
	ref.Identifier, text = extractDOI(text)
	text = stripURLs(text)

	var rest string
	if loc := quotedTitle.FindStringSubmatchIndex(text); loc != nil {
		ref.Authors = splitAuthorList(strings.TrimRight(text[:loc[0]], " ,;:"))
		ref.Title = trimField(text[loc[2]:loc[3]])
		rest = strings.TrimLeft(text[loc[1]:], " ,")
	} else {
		// Books and reports carry an unquoted title after the names.
		parts := strings.Split(text, ", ")
		i := 0
		for i < len(parts) && isNameList(parts[i]) {
			i++
		}
		ref.Authors = splitAuthorList(strings.Join(parts[:i], ", "))
		remaining := strings.Join(parts[i:], ", ")
		title, tail, ok := splitSentence(remaining)
		if !ok {
			title, tail, _ = strings.Cut(remaining, ", ")
		}
		ref.Title = trimField(title)
		rest = tail
	}

	cut := len(rest)
	if m := ieeeVolume.FindStringSubmatchIndex(rest); m != nil {
		ref.Volume = rest[m[2]:m[3]]
		cut = min(cut, m[0])
	}
	if m := ieeeIssue.FindStringIndex(rest); m != nil {
		cut = min(cut, m[0])
	}
	yearFrom := 0
	if m := ieeePages.FindStringSubmatchIndex(rest); m != nil {
		ref.Pages = strings.ReplaceAll(rest[m[2]:m[3]], " ", "")
		cut = min(cut, m[0])
		yearFrom = m[1]
	}
	if y := firstYear(rest[yearFrom:]); y != 0 {
		ref.Year = y
	} else {
		ref.Year = lastYear(rest)
	}
	if m := yearValue.FindStringIndex(rest); m != nil && cut == len(rest) {
		cut = m[0]
	}
	ref.Venue = trimVenue(rest[:cut])
	return ref
}

// isNameList reports whether a comma-separated piece of an IEEE entry is a
// list of names with initials ("G. Liu", "and H. F. Jordan").
func isNameList(s string) bool {
	s = strings.TrimPrefix(strings.TrimSpace(s), "and ")
	if s == "" {
		return false
	}
	for _, name := range andSeparator.Split(s, -1) {
		words := strings.Fields(name)
		if len(words) == 0 || len(words) > 5 || !hasInitials(name) {
			return false
		}
	}
	return true
}
