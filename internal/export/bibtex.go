// Package export writes verified references in formats other tools read.
package export

import (
	"fmt"
	"strings"

	"github.com/matsen/refcheck/internal/reference"
)

// BibTeX renders the canonical metadata of every matched verdict as a
// BibTeX entry keyed by its reference id. Not-found references become
// comments so the file still accounts for every entry.
func BibTeX(res reference.VerificationResult) string {
	var entries []string
	for _, v := range res.References {
		if v.Match == nil || v.Status == reference.StatusNotFound {
			entries = append(entries, fmt.Sprintf("%% %s: not found (%s)\n", v.RefID, oneLine(v.Title)))
			continue
		}
		entries = append(entries, Entry(v.RefID, *v.Match, v.Status))
	}
	return strings.Join(entries, "\n")
}

// Entry converts one candidate to a BibTeX entry.
func Entry(key string, c reference.Candidate, status reference.Status) string {
	entryType := determineEntryType(c.Venue)
	var b strings.Builder

	if status == reference.StatusAmbiguous {
		b.WriteString("% ambiguous match, check before citing\n")
	}
	fmt.Fprintf(&b, "@%s{%s,\n", entryType, key)

	if len(c.Authors) > 0 {
		fmt.Fprintf(&b, "  author = {%s},\n", escapeLatex(strings.Join(c.Authors, " and ")))
	}

	fmt.Fprintf(&b, "  title = {%s},\n", escapeLatex(oneLine(c.Title)))

	if c.Venue != "" {
		fieldName := "journal"
		if entryType == "inproceedings" {
			fieldName = "booktitle"
		}
		fmt.Fprintf(&b, "  %s = {%s},\n", fieldName, escapeLatex(c.Venue))
	}

	if c.Year > 0 {
		fmt.Fprintf(&b, "  year = {%d},\n", c.Year)
	}
	if c.DOI != "" {
		fmt.Fprintf(&b, "  doi = {%s},\n", c.DOI)
	}
	if c.URL != "" {
		fmt.Fprintf(&b, "  url = {%s},\n", c.URL)
	}
	b.WriteString("}\n")

	return b.String()
}

// determineEntryType returns the BibTeX entry type for a venue.
func determineEntryType(venue string) string {
	venue = strings.ToLower(venue)
	for _, kw := range []string{"proceedings", "conference", "workshop", "symposium"} {
		if strings.Contains(venue, kw) {
			return "inproceedings"
		}
	}
	return "article"
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\textbackslash{}`,
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
