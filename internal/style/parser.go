// Package style classifies reference sections by citation style and parses
// their entries.
//
// Each style family has one Parser. Parsers hold only precompiled patterns
// and are safe for concurrent use.
package style

import (
	"fmt"

	"github.com/matsen/refcheck/internal/reference"
)

// Parser splits and parses the entries of one citation-style family.
type Parser interface {
	// Style returns the family this parser handles.
	Style() reference.Style

	// Score rates how well one sample entry fits the style, in [0, 1].
	Score(sample string) float64

	// Split breaks a reference section into raw entries in order.
	Split(section string) []reference.RawEntry

	// Parse extracts structured fields from one entry. It never drops an
	// entry; fields it cannot find are left empty.
	Parse(entry reference.RawEntry) reference.Reference
}

var registry = map[reference.Style]Parser{
	reference.StyleNumberedBracket:     ieeeParser{},
	reference.StyleNumberedSuperscript: vancouverParser{},
	reference.StyleAuthorYear:          apaParser{},
	reference.StyleAuthorDate:          harvardParser{},
	reference.StyleNotesBibliography:   chicagoParser{},
}

// ParserFor returns the parser for a style.
func ParserFor(s reference.Style) (Parser, error) {
	p, ok := registry[s]
	if !ok {
		return nil, fmt.Errorf("%w: %q", reference.ErrUnknownStyle, s)
	}
	return p, nil
}

// Parsers returns every parser in tie-break priority order.
func Parsers() []Parser {
	out := make([]Parser, 0, len(reference.Styles))
	for _, s := range reference.Styles {
		out = append(out, registry[s])
	}
	return out
}

// newReference starts a Reference for an entry with identity fields set.
func newReference(entry reference.RawEntry) reference.Reference {
	return reference.Reference{
		ID:      reference.RefID(entry.Ordinal),
		Ordinal: entry.Ordinal,
		Authors: []string{},
		RawText: entry.Text,
	}
}

func clamp(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	}
	return score
}
