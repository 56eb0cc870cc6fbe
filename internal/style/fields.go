package style

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matsen/refcheck/internal/reference"
)

var (
	initialToken = regexp.MustCompile(`^(?:\p{Lu}\.)+(?:-\p{Lu}\.)*$|^\p{Lu}{1,3}$`)
	andSeparator = regexp.MustCompile(`(?i),?\s+(?:and|&)\s+|\s*&\s*`)
	etAl         = regexp.MustCompile(`(?i),?\s*et\s+al\b\.?`)
	doiPrefix    = regexp.MustCompile(`(?i)(?:https?://(?:dx\.)?doi\.org/|doi:\s*|doi\s+)$`)
	urlPattern   = regexp.MustCompile(`(?i)(?:\[online\]\.?\s*)?(?:available (?:at|from):?\s*)?https?://\S+|\(accessed[^)]*\)|accessed:?\s+\d{1,2} \w+ \d{4}`)
	yearValue    = regexp.MustCompile(`\b((?:1[6-9]|20)\d{2})[a-z]?\b`)
)

// abbreviations never end a sentence when followed by a period.
var abbreviations = map[string]bool{
	"al": true, "co": true, "dr": true, "ed": true, "eds": true, "edn": true,
	"eq": true, "fig": true, "inc": true, "jr": true, "ltd": true, "mr": true,
	"mrs": true, "ms": true, "no": true, "pp": true, "rev": true, "sr": true,
	"st": true, "trans": true, "vol": true, "vs": true,
}

// extractDOI removes the first DOI, with any doi:/URL prefix, from s.
func extractDOI(s string) (string, string) {
	doi, span := reference.FindDOI(s)
	if doi == "" {
		return "", s
	}
	start := span[0]
	if loc := doiPrefix.FindStringIndex(s[:start]); loc != nil {
		start = loc[0]
	}
	rest := strings.TrimRight(strings.TrimSpace(s[:start]), ",;:")
	if tail := strings.Trim(s[span[1]:], " .,;"); tail != "" {
		rest += " " + tail
	}
	return doi, rest
}

// stripURLs removes web links and access notes.
func stripURLs(s string) string {
	return strings.TrimSpace(urlPattern.ReplaceAllString(s, ""))
}

// trimField removes surrounding whitespace and separator punctuation.
func trimField(s string) string {
	return strings.Trim(s, " ,.;:")
}

// trimVenue is trimField that keeps a trailing period, which usually closes
// an abbreviation such as "Comp.".
func trimVenue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "in ")
	s = strings.TrimPrefix(s, "In ")
	s = strings.TrimPrefix(s, "In: ")
	return strings.Trim(s, " ,;:")
}

func firstYear(s string) int {
	m := yearValue.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	y, _ := strconv.Atoi(m[1])
	return y
}

func lastYear(s string) int {
	all := yearValue.FindAllStringSubmatch(s, -1)
	if len(all) == 0 {
		return 0
	}
	y, _ := strconv.Atoi(all[len(all)-1][1])
	return y
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// isInitials reports whether every word in s is an initial ("J.", "K. Y.",
// "SD").
func isInitials(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !initialToken.MatchString(w) {
			return false
		}
	}
	return true
}

// hasInitials reports whether any word in s is an initial.
func hasInitials(s string) bool {
	for _, w := range strings.Fields(s) {
		if initialToken.MatchString(w) {
			return true
		}
	}
	return false
}

// cleanAuthor trims one author name. A trailing period is kept when it
// belongs to an initial.
func cleanAuthor(s string) string {
	s = strings.Trim(s, " ,;:")
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	if last := words[len(words)-1]; strings.HasSuffix(last, ".") && !initialToken.MatchString(last) {
		s = strings.TrimSuffix(s, ".")
	}
	return strings.TrimSpace(s)
}

// splitAuthorList splits a comma-separated author list. It copes with both
// "Given Surname" and "Surname, Given" orders: an initials-only piece is
// attached to the preceding surname when that surname has no initials yet.
func splitAuthorList(s string) []string {
	s = etAl.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "...", ",")
	s = andSeparator.ReplaceAllString(s, ", ")

	authors := []string{}
	for _, part := range strings.Split(s, ",") {
		part = cleanAuthor(part)
		if part == "" {
			continue
		}
		if n := len(authors); n > 0 && isInitials(part) && !hasInitials(authors[n-1]) {
			authors[n-1] += ", " + part
			continue
		}
		authors = append(authors, part)
	}
	return authors
}

// splitSentence splits s at the first sentence end: a period, question mark
// or exclamation mark followed by a space and a capital letter or digit.
// Periods after initials and common abbreviations are skipped. Question and
// exclamation marks stay with the head.
func splitSentence(s string) (head, tail string, ok bool) {
	for i := 0; i+2 < len(s); i++ {
		c := s[i]
		if (c != '.' && c != '?' && c != '!') || s[i+1] != ' ' {
			continue
		}
		next, _ := utf8.DecodeRuneInString(s[i+2:])
		if !unicode.IsUpper(next) && !unicode.IsDigit(next) && next != '"' {
			continue
		}
		if c == '.' && isAbbreviation(s[:i]) {
			continue
		}
		if c == '.' {
			return s[:i], s[i+2:], true
		}
		return s[:i+1], s[i+2:], true
	}
	return s, "", false
}

// isAbbreviation reports whether the word that ends prefix is an initial or
// an abbreviation, so a period after it does not end a sentence.
func isAbbreviation(prefix string) bool {
	word := prefix
	if idx := strings.LastIndexAny(prefix, " ("); idx >= 0 {
		word = prefix[idx+1:]
	}
	if word == "" {
		return false
	}
	if strings.Contains(word, ".") {
		return true
	}
	if r, size := utf8.DecodeRuneInString(word); size == len(word) && unicode.IsUpper(r) {
		return true
	}
	return abbreviations[strings.ToLower(word)]
}
