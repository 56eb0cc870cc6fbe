package reference

import (
	"errors"
	"fmt"
	"strings"
)

// Style is a citation-style family.
type Style string

const (
	StyleNumberedBracket     Style = "numbered-bracket"
	StyleNumberedSuperscript Style = "numbered-superscript-like"
	StyleAuthorYear          Style = "author-year-parenthetical"
	StyleAuthorDate          Style = "author-date-narrative"
	StyleNotesBibliography   Style = "notes-bibliography"
)

// Styles lists every supported style in tie-break priority order.
var Styles = []Style{
	StyleNumberedBracket,
	StyleNumberedSuperscript,
	StyleAuthorYear,
	StyleAuthorDate,
	StyleNotesBibliography,
}

// ErrUnknownStyle is returned when a style name does not resolve to a
// supported style.
var ErrUnknownStyle = errors.New("unknown citation style")

// styleAliases maps convention names onto style families.
var styleAliases = map[string]Style{
	"ieee":      StyleNumberedBracket,
	"vancouver": StyleNumberedSuperscript,
	"ama":       StyleNumberedSuperscript,
	"apa":       StyleAuthorYear,
	"harvard":   StyleAuthorDate,
	"chicago":   StyleNotesBibliography,
}

// conventions is the representative convention for each style.
var conventions = map[Style]string{
	StyleNumberedBracket:     "ieee",
	StyleNumberedSuperscript: "vancouver",
	StyleAuthorYear:          "apa",
	StyleAuthorDate:          "harvard",
	StyleNotesBibliography:   "chicago",
}

// ParseStyle resolves a style name or convention alias, case-insensitively.
func ParseStyle(name string) (Style, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if s, ok := styleAliases[key]; ok {
		return s, nil
	}
	for _, s := range Styles {
		if string(s) == key {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStyle, name)
}

// Convention returns the representative convention name, e.g. "ieee".
func (s Style) Convention() string {
	return conventions[s]
}

// Aliases returns the convention names that resolve to s, sorted.
func (s Style) Aliases() []string {
	var out []string
	for _, name := range []string{"ama", "apa", "chicago", "harvard", "ieee", "vancouver"} {
		if styleAliases[name] == s {
			out = append(out, name)
		}
	}
	return out
}

// Valid reports whether s is one of the supported styles.
func (s Style) Valid() bool {
	_, ok := conventions[s]
	return ok
}
