package reference

import (
	"regexp"
	"strings"
)

// doiPattern matches a bare DOI: 10.XXXX/... where XXXX is 4+ digits.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// NormalizeDOI normalizes a DOI to a consistent format for comparison.
// It removes common URL prefixes (https://doi.org/, doi:) and converts to lowercase.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	lower := strings.ToLower(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi.org/", "doi:"} {
		if strings.HasPrefix(lower, prefix) {
			lower = strings.TrimSpace(lower[len(prefix):])
			break
		}
	}
	return strings.TrimRight(lower, ".,;")
}

// FindDOI returns the first valid DOI in text and its byte span, or "" and
// nil if there is none. Trailing punctuation is not part of the DOI.
func FindDOI(text string) (string, []int) {
	for _, loc := range doiPattern.FindAllStringIndex(text, -1) {
		match := strings.TrimRight(text[loc[0]:loc[1]], ".,;:)")
		if isValidDOI(match) {
			return match, []int{loc[0], loc[0] + len(match)}
		}
	}
	return "", nil
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 {
		return false
	}
	if !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}
