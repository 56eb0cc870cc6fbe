package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/refcheck/internal/config"
	"github.com/matsen/refcheck/internal/extract"
	"github.com/matsen/refcheck/internal/pdf"
	"github.com/matsen/refcheck/internal/reference"
	"github.com/matsen/refcheck/internal/section"
)

// Title truncation lengths by context
const (
	ListTitleMaxLen    = 60 // extract listing
	VerdictTitleMaxLen = 55 // verify listing
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitCode maps pipeline errors to exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, config.ErrInvalid):
		return ExitConfigError
	case errors.Is(err, extract.ErrSectionNotFound),
		errors.Is(err, reference.ErrUnknownStyle),
		errors.Is(err, section.ErrInvalidBounds),
		errors.Is(err, pdf.ErrUnsupported):
		return ExitDataError
	default:
		return ExitError
	}
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// printExtractionHuman prints an extraction result in human-readable format.
func printExtractionHuman(res reference.ExtractionResult) {
	forced := ""
	if res.StyleForced {
		forced = ", forced"
	}
	if res.Document != nil && res.Document.Title != "" {
		outputHuman("Document: %s\n", res.Document.Title)
	}
	outputHuman("Style: %s (%s%s)\n", res.Style, res.Style.Convention(), forced)
	outputHuman("References: %d, confidence %.2f\n\n", len(res.References), res.Confidence)

	for _, ref := range res.References {
		flag := " "
		if ref.LowConfidence {
			flag = "?"
		}
		title := ref.Title
		if title == "" {
			title = "(no title) " + ref.RawText
		}
		outputHuman("%s[%d] %s\n", flag, ref.Ordinal, truncateString(title, ListTitleMaxLen))
		outputHuman("     %s", formatAuthorsShort(ref.Authors, 3))
		if ref.Year > 0 {
			outputHuman(" (%d)", ref.Year)
		}
		outputHuman("\n")
	}
}

// printVerificationHuman prints verdicts and stats in human-readable format.
func printVerificationHuman(res reference.VerificationResult) {
	for _, v := range res.References {
		src := v.Source
		if src == "" {
			src = "-"
		}
		outputHuman("[%d] %-9s %.2f %-16s %s\n", v.Ordinal, v.Status, v.Confidence, src,
			truncateString(v.Title, VerdictTitleMaxLen))
		if v.Notes != "" {
			outputHuman("     %s\n", v.Notes)
		}
	}
	s := res.Stats
	outputHuman("\n%d references: %d verified, %d ambiguous, %d not found\n",
		s.Total, s.Verified, s.Ambiguous, s.NotFound)
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// formatAuthorsShort formats up to n authors, adding "et al." beyond that.
func formatAuthorsShort(authors []string, n int) string {
	if len(authors) == 0 {
		return "(no authors)"
	}
	if len(authors) <= n {
		return strings.Join(authors, ", ")
	}
	return strings.Join(authors[:n], ", ") + " et al."
}
