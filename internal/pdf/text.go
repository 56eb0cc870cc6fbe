// Package pdf turns documents into the plain text the extractor works on.
package pdf

import (
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/matsen/refcheck/internal/textnorm"
)

// pageSeparator sits between pages so later stages can recover page numbers.
const pageSeparator = "\n" + textnorm.PageBreak + "\n"

// ExtractTextReader extracts the text of the first maxPages pages of a PDF
// (all pages when maxPages <= 0).
func ExtractTextReader(r io.ReaderAt, size int64, maxPages int) (string, error) {
	pdfReader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", err
	}
	return pagesText(pdfReader, maxPages), nil
}

// pagesText joins page texts with form feeds. Unreadable pages stay in as
// empty pages so later page numbers do not shift.
func pagesText(r *pdf.Reader, maxPages int) string {
	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	pages := make([]string, 0, maxPages)
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.TrimRight(text, "\n"))
	}
	return strings.Join(pages, pageSeparator)
}
