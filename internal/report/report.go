// Package report renders verification results for people: a Markdown
// summary, and the same summary as a standalone HTML page.
package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/matsen/refcheck/internal/reference"
)

// TitleMaxLen bounds titles in the reference table.
const TitleMaxLen = 80

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown writes res as a Markdown report.
func Markdown(w io.Writer, res reference.VerificationResult) error {
	var b strings.Builder

	b.WriteString("# Reference verification\n\n")
	if res.Source != "" {
		fmt.Fprintf(&b, "Source: `%s`\n\n", res.Source)
	}

	s := res.Stats
	b.WriteString("| Status | Count |\n|---|---:|\n")
	fmt.Fprintf(&b, "| verified | %d |\n", s.Verified)
	fmt.Fprintf(&b, "| ambiguous | %d |\n", s.Ambiguous)
	fmt.Fprintf(&b, "| not-found | %d |\n", s.NotFound)
	fmt.Fprintf(&b, "| **total** | **%d** |\n\n", s.Total)

	if len(res.References) == 0 {
		b.WriteString("No references.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString("## References\n\n")
	b.WriteString("| # | Status | Confidence | Source | Title | Notes |\n")
	b.WriteString("|---:|---|---:|---|---|---|\n")
	for _, v := range res.References {
		fmt.Fprintf(&b, "| %d | %s | %.2f | %s | %s | %s |\n",
			v.Ordinal, v.Status, v.Confidence, cell(v.Source),
			cell(truncate(v.Title, TitleMaxLen)), cell(v.Notes))
	}

	if flagged := needsReview(res.References); len(flagged) > 0 {
		b.WriteString("\n## Needs review\n\n")
		for _, v := range flagged {
			fmt.Fprintf(&b, "- **[%d] %s** (%s)", v.Ordinal, inline(orUntitled(v.Title)), v.Status)
			if v.Match != nil {
				fmt.Fprintf(&b, ": closest match %q", inline(v.Match.Title))
				if v.Match.Year > 0 {
					fmt.Fprintf(&b, " (%d)", v.Match.Year)
				}
				if v.Match.DOI != "" {
					fmt.Fprintf(&b, ", doi:%s", v.Match.DOI)
				}
			}
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// HTML writes res as a self-contained HTML page.
func HTML(w io.Writer, res reference.VerificationResult) error {
	var src bytes.Buffer
	if err := Markdown(&src, res); err != nil {
		return err
	}
	var body bytes.Buffer
	if err := md.Convert(src.Bytes(), &body); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	title := "Reference verification"
	if res.Source != "" {
		title += ": " + res.Source
	}
	_, err := fmt.Fprintf(w, htmlPage, html.EscapeString(title), body.String())
	return err
}

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 60em; margin: 2em auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.25em 0.5em; }
</style>
</head>
<body>
%s</body>
</html>
`

func needsReview(verdicts []reference.Verdict) []reference.Verdict {
	var out []reference.Verdict
	for _, v := range verdicts {
		if v.Status != reference.StatusVerified {
			out = append(out, v)
		}
	}
	return out
}

// cell makes s safe inside a table cell.
func cell(s string) string {
	s = strings.ReplaceAll(inline(s), "|", `\|`)
	if s == "" {
		return " "
	}
	return s
}

func inline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func orUntitled(s string) string {
	if s == "" {
		return "(untitled)"
	}
	return s
}

// truncate shortens s to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
