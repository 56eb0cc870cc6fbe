package style

import (
	"regexp"
	"strings"

	"github.com/matsen/refcheck/internal/reference"
)

var (
	chicagoJournal   = regexp.MustCompile(`^(.+?)\s+(\d+)(?:,\s*no\.\s*(\w+))?\s*\(([^)]*?((?:1[6-9]|20)\d{2})[^)]*)\)(?::\s*(\d+(?:-\d+)?))?`)
	chicagoPublisher = regexp.MustCompile(`^(?:(.+?):\s*)?(.+?),\s*((?:1[6-9]|20)\d{2})`)
	chicagoYearColon = regexp.MustCompile(`\((?:[^)]*\s)?(?:1[6-9]|20)\d{2}\):`)
	chicagoIssue     = regexp.MustCompile(`\bno\.\s*\d+`)
	chicagoBookTail  = regexp.MustCompile(`\.\s+\p{Lu}[\p{L} .]+:\s*[^,]+,\s*(?:1[6-9]|20)\d{2}\.?$`)
	surnameGiven     = regexp.MustCompile(`^` + particles + `\p{Lu}[\p{L}'\-]+,\s+\p{Lu}\p{Ll}+`)
)

// chicagoParser handles notes-bibliography lists:
//
//	Kwon, Hyeyoung. "Title." American Journal of Sociology 127, no. 6 (2022): 1818-59.
//	Smith, John, and Jane Doe. Book Title. New York: Penguin Press, 2015.
type chicagoParser struct{}

func (chicagoParser) Style() reference.Style { return reference.StyleNotesBibliography }

func (chicagoParser) Score(sample string) float64 {
	s := strings.TrimSpace(sample)
	score := 0.0
	if quotedTitle.MatchString(s) {
		score += 0.2
	}
	if chicagoYearColon.MatchString(s) {
		score += 0.3
	}
	if chicagoIssue.MatchString(s) {
		score += 0.15
	}
	if surnameGiven.MatchString(s) {
		score += 0.2
	}
	if !numbered(s) {
		score += 0.05
	}
	if !ppLabel.MatchString(s) {
		score += 0.05
	}
	if chicagoBookTail.MatchString(s) {
		score += 0.25
	}
	return clamp(score)
}

func (chicagoParser) Split(section string) []reference.RawEntry {
	if entries := splitHanging(section, chicagoStart); len(entries) > 1 {
		return entries
	}
	if entries := splitParagraphs(section); len(entries) > 1 {
		return entries
	}
	return genericSplit(section)
}

func (chicagoParser) Parse(entry reference.RawEntry) reference.Reference {
	ref := newReference(entry)
	var text string
	ref.Identifier, text = extractDOI(entry.Text)
	text = stripURLs(text)

	if loc := quotedTitle.FindStringSubmatchIndex(text); loc != nil {
		ref.Authors = chicagoAuthors(text[:loc[0]])
		ref.Title = trimField(text[loc[2]:loc[3]])
		rest := strings.TrimLeft(text[loc[1]:], " ,.")
		if m := chicagoJournal.FindStringSubmatch(rest); m != nil {
			ref.Venue = trimVenue(m[1])
			ref.Volume = m[2]
			ref.Year = atoi(m[5])
			ref.Pages = m[6]
			return ref
		}
		ref.Year = lastYear(rest)
		venue, _, _ := strings.Cut(rest, ", ")
		ref.Venue = trimVenue(venue)
		return ref
	}

	authors, rest, ok := splitSentence(text)
	if !ok {
		ref.Title = trimField(text)
		ref.Year = lastYear(text)
		return ref
	}
	ref.Authors = chicagoAuthors(authors)
	title, tail, ok := splitSentence(rest)
	if !ok {
		title, tail = rest, ""
	}
	ref.Title = trimField(title)
	if m := chicagoPublisher.FindStringSubmatch(tail); m != nil {
		ref.Venue = trimField(m[2])
		ref.Year = atoi(m[3])
	} else {
		ref.Year = lastYear(tail)
	}
	return ref
}

// chicagoAuthors splits "Surname, Given, Given Surname, and Given Surname".
// Only the first author is inverted.
func chicagoAuthors(s string) []string {
	s = etAl.ReplaceAllString(strings.TrimSpace(s), "")
	chunks := andSeparator.Split(s, -1)

	authors := []string{}
	first := strings.Split(chunks[0], ", ")
	if len(first) >= 2 {
		authors = append(authors, cleanAuthor(first[0]+", "+first[1]))
		first = first[2:]
	}
	for _, name := range append(first, chunks[1:]...) {
		if name = cleanAuthor(name); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}
