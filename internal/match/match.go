// Package match scores how well a source candidate matches an extracted
// reference.
package match

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/matsen/refcheck/internal/reference"
	"github.com/matsen/refcheck/internal/textnorm"
)

// Component weights. When a component cannot be computed because one side
// lacks the field, the remaining weights are rescaled.
const (
	WeightTitle   = 0.75
	WeightAuthors = 0.15
	WeightYear    = 0.10
)

// untitledCap bounds the score of a reference that has no title, so it can
// never be verified on authors and year alone.
const untitledCap = 0.6

// Breakdown is a scored comparison.
type Breakdown struct {
	Title    float64 `json:"title"`
	Authors  float64 `json:"authors"`
	Year     float64 `json:"year"`
	DOIMatch bool    `json:"doi_match,omitempty"`
	Total    float64 `json:"total"`
}

// Score compares a reference with a candidate. Matching DOIs score 1.
func Score(ref reference.Reference, c reference.Candidate) Breakdown {
	if ref.Identifier != "" && c.DOI != "" &&
		reference.NormalizeDOI(ref.Identifier) == reference.NormalizeDOI(c.DOI) {
		return Breakdown{Title: 1, Authors: 1, Year: 1, DOIMatch: true, Total: 1}
	}

	var b Breakdown
	sum, weight := 0.0, 0.0

	hasTitle := ref.Title != "" && c.Title != ""
	if hasTitle {
		b.Title = TitleSimilarity(ref.Title, c.Title)
		sum += WeightTitle * b.Title
		weight += WeightTitle
	}
	if overlap, ok := AuthorOverlap(ref.Authors, c.Authors); ok {
		b.Authors = overlap
		sum += WeightAuthors * overlap
		weight += WeightAuthors
	}
	if closeness, ok := YearCloseness(ref.Year, c.Year); ok {
		b.Year = closeness
		sum += WeightYear * closeness
		weight += WeightYear
	}

	if weight > 0 {
		b.Total = sum / weight
	}
	if !hasTitle {
		b.Total = math.Min(b.Total, untitledCap)
	}
	b.Total = round(b.Total)
	return b
}

// TitleSimilarity is the larger of the normalized edit-distance ratio and
// the token-sort ratio of the folded titles.
func TitleSimilarity(a, b string) float64 {
	fa, fb := textnorm.Fold(a), textnorm.Fold(b)
	if fa == "" || fb == "" {
		return 0
	}
	return math.Max(ratio(fa, fb), ratio(sortTokens(fa), sortTokens(fb)))
}

func ratio(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// AuthorOverlap is the share of surnames two author lists have in common,
// relative to the shorter list so that truncated "et al." lists are not
// penalized. ok is false when either list is empty.
func AuthorOverlap(a, b []string) (overlap float64, ok bool) {
	sa, sb := surnames(a), surnames(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0, false
	}
	common := 0
	for s := range sa {
		if sb[s] {
			common++
		}
	}
	return float64(common) / float64(min(len(sa), len(sb))), true
}

func surnames(authors []string) map[string]bool {
	out := make(map[string]bool, len(authors))
	for _, a := range authors {
		if s := Surname(a); s != "" {
			out[s] = true
		}
	}
	return out
}

// Surname extracts the folded family name from "Surname, Given",
// "Given Surname" or "Surname AB".
func Surname(author string) string {
	if before, _, found := strings.Cut(author, ","); found {
		return textnorm.Fold(before)
	}
	var kept []string
	for _, w := range strings.Fields(author) {
		if !looksLikeInitials(w) {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return textnorm.Fold(kept[len(kept)-1])
}

func looksLikeInitials(w string) bool {
	letters := strings.Trim(strings.ReplaceAll(w, ".", ""), "-")
	if letters == "" {
		return true
	}
	if strings.Contains(w, ".") && utf8.RuneCountInString(letters) <= 2 {
		return true
	}
	return utf8.RuneCountInString(letters) <= 3 && strings.ToUpper(letters) == letters
}

// YearCloseness is 1 for equal years, 0.5 one year apart (preprint versus
// print) and 0 otherwise. ok is false when either year is unknown.
func YearCloseness(a, b int) (closeness float64, ok bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	switch d := a - b; {
	case d == 0:
		return 1, true
	case d == 1 || d == -1:
		return 0.5, true
	}
	return 0, true
}

// Best returns the index and breakdown of the highest-scoring candidate, or
// -1 when there are none. Ties keep the earlier candidate.
func Best(ref reference.Reference, candidates []reference.Candidate) (int, Breakdown) {
	best, bestScore := -1, Breakdown{}
	for i, c := range candidates {
		b := Score(ref, c)
		if best < 0 || b.Total > bestScore.Total {
			best, bestScore = i, b
		}
	}
	return best, bestScore
}

func round(f float64) float64 {
	return math.Round(f*1000) / 1000
}
