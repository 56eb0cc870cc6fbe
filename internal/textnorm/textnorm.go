// Package textnorm canonicalizes text extracted from documents.
//
// Normalize is applied once to a whole document before the reference section
// is located; all section offsets refer to its output. Fold produces a
// comparison key for fuzzy matching and is never shown to users.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// PageBreak separates pages in normalized text. It always sits on a line of
// its own.
const PageBreak = "\f"

// punctuation maps typographic variants onto their ASCII forms. NFKC has
// already handled ligatures and compatibility spaces by the time it runs.
var punctuation = strings.NewReplacer(
	"\u2010", "-", // hyphen
	"\u2011", "-", // non-breaking hyphen
	"\u2012", "-", // figure dash
	"\u2013", "-", // en dash
	"\u2014", "-", // em dash
	"\u2015", "-", // horizontal bar
	"\u2212", "-", // minus sign
	"\u2018", "'",
	"\u2019", "'",
	"\u201a", "'",
	"\u2032", "'",
	"\u201c", `"`,
	"\u201d", `"`,
	"\u201e", `"`,
	"\u2033", `"`,
	"\u00ab", `"`,
	"\u00bb", `"`,
	"\u00ad", "", // soft hyphen
	"\u200b", "", // zero-width space
	"\u200c", "",
	"\u200d", "",
	"\ufeff", "",
)

// Normalize expands ligatures, maps dash, quote and space variants to ASCII,
// collapses runs of horizontal whitespace and trims each line. Line breaks are
// kept, runs of blank lines shrink to one, and page breaks are preserved on
// their own line. Normalize is idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	s = punctuation.Replace(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	pages := strings.Split(s, PageBreak)
	out := make([]string, 0, len(pages))
	for _, page := range pages {
		out = append(out, normalizeLines(page))
	}
	return strings.Trim(strings.Join(out, "\n"+PageBreak+"\n"), "\n")
}

func normalizeLines(page string) string {
	lines := strings.Split(page, "\n")
	kept := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = collapseSpace(line)
		if line == "" {
			if !blank && len(kept) > 0 {
				kept = append(kept, "")
			}
			blank = true
			continue
		}
		blank = false
		kept = append(kept, line)
	}
	for len(kept) > 0 && kept[len(kept)-1] == "" {
		kept = kept[:len(kept)-1]
	}
	return strings.Join(kept, "\n")
}

// collapseSpace replaces each run of whitespace with one space and trims.
func collapseSpace(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

// Fold returns a comparison key: lowercase, diacritics removed, punctuation
// turned into spaces and whitespace collapsed.
func Fold(s string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, folded)
	return collapseSpace(folded)
}

// Tokens returns the whitespace-separated words of Fold(s).
func Tokens(s string) []string {
	return strings.Fields(Fold(s))
}
