package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/matsen/refcheck/internal/reference"
	"github.com/matsen/refcheck/internal/textnorm"
)

// ErrUnsupported is returned for inputs that are neither PDF nor text.
var ErrUnsupported = errors.New("unsupported input format")

var pdfMagic = []byte("%PDF-")

// LoadText reads a document as plain text. PDFs are recognized by
// extension or signature; anything else must be valid UTF-8 text.
func LoadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") || bytes.HasPrefix(data, pdfMagic) {
		text, err := ExtractTextReader(bytes.NewReader(data), int64(len(data)), 0)
		if err != nil {
			return "", fmt.Errorf("extracting text from %s: %w", path, err)
		}
		return text, nil
	}

	if !isText(data) {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
	return string(data), nil
}

func isText(data []byte) bool {
	if bytes.IndexByte(data, 0) >= 0 {
		return false
	}
	return utf8.Valid(data)
}

// Describe guesses the document title and DOI from its first page: the
// first substantial line that is not a running header, and the first DOI.
func Describe(text string) reference.Document {
	first, _, _ := strings.Cut(text, textnorm.PageBreak)

	var info reference.Document
	info.DOI, _ = reference.FindDOI(first)
	for _, line := range strings.Split(first, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !isHeaderLine(line) {
			info.Title = line
			break
		}
	}
	return info
}

// isHeaderLine checks if a line is likely a header/footer.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "journal") {
		return true
	}
	if strings.Contains(lower, "volume") && strings.Contains(lower, "issue") {
		return true
	}
	if strings.Contains(lower, "copyright") || strings.Contains(lower, "doi") {
		return true
	}
	return strings.Contains(lower, "article") && strings.Contains(lower, "published")
}
